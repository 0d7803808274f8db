package dto

import "time"

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
	Portal    string    `json:"portal"`
	Name      string    `json:"name"`
	Redirect  string    `json:"redirect"`
}
