package user

import "errors"

type CreateUserDTO struct {
	Username  string `json:"username"   binding:"required"`
	Password  string `json:"password"   binding:"required,min=6"`
	Email     string `json:"email"      binding:"required,email"`
	Status    string `json:"status"`
	Fullname  string `json:"fullname"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
}

// UpdateUserDTO is a partial update; nil and empty fields are left untouched.
type UpdateUserDTO struct {
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Email     *string `json:"email"      binding:"omitempty,email"`
	Status    *string `json:"status"`
	Fullname  *string `json:"fullname"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Avatar    *string `json:"avatar"`
}

var errEmailTaken = errors.New("email already registered")
