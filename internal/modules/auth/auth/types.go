package auth

import (
	"errors"

	"github.com/rianAnugrah/xyz-portal-backend/internal/models"
)

type LoginDTO struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.UserModel `json:"user"`
}

type forgotPasswordResponse struct {
	Token string `json:"token"`
}

var (
	errUserNotFound  = errors.New("auth user not found")
	errWrongPassword = errors.New("auth wrong password")
	errEmailTaken    = errors.New("email already registered")
)
