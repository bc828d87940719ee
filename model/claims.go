package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the typed claim set carried by access tokens. The subject holds the username.
type AppClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller resolved from a token.
type Identity struct {
	Username string
	Roles    []string
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}
