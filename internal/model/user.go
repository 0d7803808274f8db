package model

import "time"

type User struct {
	BaseModel
	Email        string `db:"email" json:"email"`
	Name         string `db:"name" json:"name"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role"`
}

type Admin struct {
	UserID      string    `db:"user_id" json:"user_id"`
	AccessLevel string    `db:"access_level" json:"access_level"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
