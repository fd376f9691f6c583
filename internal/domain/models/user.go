package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account on the platform.
//
// Email doubles as the login identifier and is stored lowercase; EmailCI is
// the folded form used for case/diacritic-insensitive matching. Section
// deletion requires the acting user to re-type this email as confirmation.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"`

	Email   string `bson:"email" json:"email"`
	EmailCI string `bson:"email_ci" json:"email_ci"`

	PasswordHash *string `bson:"password_hash,omitempty" json:"-"` // bcrypt hash, never in JSON

	Role   string `bson:"role" json:"role"`                         // user, admin, super
	Status string `bson:"status,omitempty" json:"status,omitempty"` // active, disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleSuper = "super"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{
		RoleUser,
		RoleAdmin,
		RoleSuper,
	}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// AdminRoles are the roles allowed to manage sections and purge articles.
func AdminRoles() []string {
	return []string{RoleAdmin, RoleSuper}
}

// User statuses
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
