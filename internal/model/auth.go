package model

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are JWT claims for admin/grader authentication
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}
