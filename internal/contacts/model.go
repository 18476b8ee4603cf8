package contacts

import "time"

// Contact is a person alerted by an SOS.
type Contact struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input carries the create fields.
type Input struct {
	Name        string
	PhoneNumber string
}

// Patch carries the fields of a partial update; nil means unchanged.
type Patch struct {
	Name        *string
	PhoneNumber *string
}
