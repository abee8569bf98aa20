package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SchedulingStyle describes how an athlete treats session dates.
type SchedulingStyle string

const (
	// StyleDisciplinarian: sessions are locked to fixed dates.
	StyleDisciplinarian SchedulingStyle = "disciplinarian"
	// StyleImproviser: sessions float freely within their week.
	StyleImproviser SchedulingStyle = "improviser"
	// StyleMinimalist: a reduced plan, sessions float within their week.
	StyleMinimalist SchedulingStyle = "minimalist"
)

// Athlete is a registered user of the coaching engine.
type Athlete struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // unique
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Style        SchedulingStyle    `bson:"style" json:"style"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SchedulesStrictly reports whether the athlete locks sessions to dates.
func (a *Athlete) SchedulesStrictly() bool {
	return a.Style == StyleDisciplinarian
}
