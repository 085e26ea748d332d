package model

import "github.com/golang-jwt/jwt"

// AdminClaims are carried by bearer tokens on the admin and monitoring routes.
type AdminClaims struct {
	Role string `json:"role,omitempty"`
	jwt.StandardClaims
}
