package main

import (
	"CareerConnect/internal/bootstrap"
	pkg "CareerConnect/pkg/routes"

	"go.uber.org/fx"
)

func main() {
	bootstrap.Loadenv()
	app := fx.New(
		pkg.Options(),
	)

	app.Run()
}
