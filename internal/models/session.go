package models

import "github.com/golang-jwt/jwt/v5"

// Session is the minimal authenticated-identity record: a deliberate
// projection of User that excludes email, subjects and password. It never
// expires on its own; only logout removes it.
type Session struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	Name string `json:"name"`
}

// SessionClaims is the signed payload embedded in session tokens. It carries
// no expiry: a token stays valid for as long as its server-side session
// record exists.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
