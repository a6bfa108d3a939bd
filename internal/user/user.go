package user

import "time"

// User is a shopper account as stored under the users key.
type User struct {
	ID        int64     `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Email     string    `json:"email" validate:"required"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionUser is the signed-in shopper without credentials.
type SessionUser struct {
	ID    int64  `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Session() SessionUser {
	return SessionUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}
