package models

import "time"

// Contact is a message sent through the storefront contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateContactRequest marks a contact read or attaches internal notes.
type UpdateContactRequest struct {
	Read  *bool   `json:"read,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Subscription is a newsletter signup.
type Subscription struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
