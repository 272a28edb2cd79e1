package auth

import (
	"errors"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"` // Role is needed for RBAC in protected endpoints
	jwt.RegisteredClaims
}

// Identity converts verified claims into the caller identity used by the services.
func (c *JWTClaims) Identity() (access.Identity, error) {
	id, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return access.Identity{}, errors.New("invalid subject")
	}
	role := access.Role(c.Role)
	if !role.Valid() {
		return access.Identity{}, errors.New("invalid role")
	}
	return access.Identity{ID: id, Role: role}, nil
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	key []byte
	ttl time.Duration
}

func NewTokens(cfg *config.AuthConfig) *Tokens {
	return &Tokens{key: cfg.JWTKey, ttl: cfg.TokenTTL}
}

func (t *Tokens) Generate(user *User) (string, error) {
	claims := &JWTClaims{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.key)
}

func (t *Tokens) Validate(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
