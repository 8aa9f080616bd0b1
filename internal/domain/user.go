package domain

import "time"

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNo      string    `json:"phone_no"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate is a typed partial update of profile fields: nil fields are left
// untouched. Password carries plaintext at the API boundary; the service
// replaces it with the bcrypt hash before it reaches storage.
type UserUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	PhoneNo   *string `json:"phone_no,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.PhoneNo == nil && u.Password == nil
}

// ContactSnapshot is the slice of user identity captured on a booking at
// creation time. It is not live-linked to the user record.
type ContactSnapshot struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	PhoneNo   string
}
