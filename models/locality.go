package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locality is a named area. Coordinates are optional; localities without them
// never win nearest-match resolution.
type Locality struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	City      string             `bson:"city,omitempty" json:"city,omitempty"`
	State     string             `bson:"state,omitempty" json:"state,omitempty"`
	Country   string             `bson:"country,omitempty" json:"country,omitempty"`
	Latitude  *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Locality) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
