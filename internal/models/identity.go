package models

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	UserID      string   `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type Claims struct {
	jwt.RegisteredClaims
	Id          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (c *Claims) Identity() *Identity {
	userID := c.Id
	if userID == "" {
		userID = c.Subject
	}
	return &Identity{
		UserID:      userID,
		Email:       c.Email,
		Username:    c.Username,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}
