package auth

import (
	"github.com/lsalmeida/ecoeletronico-backend/internal/accounts"
)

// LoginRequest captures the credentials sent to the login endpoints.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token pair and account produced by a successful login.
type LoginResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Account      *accounts.AccountDTO `json:"account"`
}
