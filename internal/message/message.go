package message

import "time"

const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Message is a contact-form submission.
type Message struct {
	ID        string    `json:"id" validate:"required"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status" validate:"omitempty,oneof=unread read"`
}

// Form is the public contact form.
type Form struct {
	FullName string `json:"fullName" validate:"required,alphaspace,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Message  string `json:"message" validate:"required,min=10"`
}
