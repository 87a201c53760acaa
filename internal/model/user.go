package model

import "time"

// Roles stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can own bookings.  The password field holds
// a bcrypt hash and is never serialized.
type User struct {
	ID        uint64     `json:"userId"`    // users.user_id
	FirstName string     `json:"firstName"` // users.first_name
	LastName  string     `json:"lastName"`  // users.last_name
	Email     string     `json:"email"`     // users.email
	Password  string     `json:"-"`         // users.password (bcrypt hash)
	Role      string     `json:"role"`      // users.role
	CreatedAt time.Time  `json:"-"`         // users.created_at
	UpdatedAt time.Time  `json:"-"`         // users.updated_at
	DeletedAt *time.Time `json:"-"`         // users.deleted_at (nullable)
}
