package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleDriver Role = "DRIVER"
)

const (
	DefaultRating = 5.0
	MinRating     = 1.0
	MaxRating     = 5.0
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID  primitive.ObjectID `bson:"company_id" json:"companyId"`
	PersonalID string             `bson:"personal_id" json:"personalId"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Role       Role               `bson:"role" json:"role"`
	Rating     float64            `bson:"rating" json:"rating"`
	IsActive   bool               `bson:"is_active" json:"isActive"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

// RatingBounds is the inclusive range a driver rating is kept in.
type RatingBounds struct {
	Floor   float64
	Ceiling float64
}

func DefaultRatingBounds() RatingBounds {
	return RatingBounds{Floor: MinRating, Ceiling: MaxRating}
}

func (b RatingBounds) Clamp(v float64) float64 {
	return math.Min(b.Ceiling, math.Max(b.Floor, v))
}

// ApplyPenalty returns the rating after subtracting penalty, rounded to two
// decimals and clamped to b.
func ApplyPenalty(rating, penalty float64, b RatingBounds) float64 {
	return b.Clamp(math.Round((rating-penalty)*100) / 100)
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    primitive.ObjectID `json:"userId"`
	CompanyID primitive.ObjectID `json:"companyId"`
	Role      Role               `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsDriver() bool {
	return a.Role == RoleDriver
}

type Company struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Timezone  string             `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Currency  string             `bson:"currency,omitempty" json:"currency,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
