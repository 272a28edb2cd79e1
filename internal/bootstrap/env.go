package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv reads .env into the process environment. It runs before the logger exists.
func Loadenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}
