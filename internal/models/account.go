package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the coarse account class carried in every token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is a team-board admin or user. Admins and users live in separate
// collections; AdminID is only set on users.
type Account struct {
	ID        primitive.ObjectID  `json:"id"                bson:"_id,omitempty"`
	AdminID   *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	FirstName string              `json:"firstName"         bson:"firstName"`
	LastName  string              `json:"lastName"          bson:"lastName"`
	Email     string              `json:"email"             bson:"email"`
	Password  string              `json:"-"                 bson:"password"` // never serialize
	Role      Role                `json:"role"              bson:"-"`
	CreatedAt time.Time           `json:"createdAt"         bson:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"         bson:"updatedAt"`
}

// SignupRequest is the JSON body for POST /user/signup and /user/add_user.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the JSON body for both login endpoints.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
