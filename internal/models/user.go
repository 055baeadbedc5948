package models

// UserModel is a CMS account. Passwords are stored as bcrypt hashes.
type UserModel struct {
	UserID       uint   `json:"user_id"    gorm:"column:user_id;primaryKey"`
	Username     string `json:"username"   gorm:"index"`
	Email        string `json:"email"      gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-"`
	Fullname     string `json:"fullname"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"       gorm:"default:user"`
	Avatar       string `json:"avatar"`
	Status       string `json:"status"     gorm:"default:active"`
	Timestamps
}

func (UserModel) TableName() string { return "users" }

// PasswordResetModel stores issued reset tokens (hashed).
type PasswordResetModel struct {
	Base
	Email     string `json:"email" gorm:"index;not null"`
	TokenHash string `json:"-"     gorm:"column:token;not null"`
}

func (PasswordResetModel) TableName() string { return "password_resets" }
