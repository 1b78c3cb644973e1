package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "Reported"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// IssueStatuses lists every status in lifecycle order.
var IssueStatuses = []IssueStatus{Reported, InProgress, Resolved}

// Valid reports whether s is one of the enumerated statuses.
func (s IssueStatus) Valid() bool {
	switch s {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// Open reports whether the issue still needs attention.
func (s IssueStatus) Open() bool {
	return s == Reported || s == InProgress
}

// AutoDetectedLocation is stored when the client does not send a location.
const AutoDetectedLocation = "Auto-detected location"

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Location    string              `bson:"location" json:"location"`
	Category    string              `bson:"category,omitempty" json:"category,omitempty"`
	IssueType   *primitive.ObjectID `bson:"issueType,omitempty" json:"issueType,omitempty"`
	Locality    *primitive.ObjectID `bson:"locality,omitempty" json:"locality,omitempty"`
	ReportedBy  *primitive.ObjectID `bson:"reportedBy,omitempty" json:"reportedBy,omitempty"`
	Status      IssueStatus         `bson:"status" json:"status"`
	Upvotes     int64               `bson:"upvotes" json:"upvotes"`
	PhotoURL    string              `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IssueTypeRef is the expanded form of Issue.IssueType.
type IssueTypeRef struct {
	ID    primitive.ObjectID `json:"id"`
	Key   string             `json:"key"`
	Label string             `json:"label"`
}

// LocalityRef is the expanded form of Issue.Locality.
type LocalityRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	City  string             `json:"city,omitempty"`
	State string             `json:"state,omitempty"`
}

// UserRef is the expanded form of Issue.ReportedBy.
type UserRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// IssueView is an issue with its optional references resolved to display
// fields. A reference that no longer resolves is left nil.
type IssueView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location"`
	Category    string             `json:"category,omitempty"`
	IssueType   *IssueTypeRef      `json:"issueType"`
	Locality    *LocalityRef       `json:"locality"`
	ReportedBy  *UserRef           `json:"reportedBy"`
	Status      IssueStatus        `json:"status"`
	Upvotes     int64              `json:"upvotes"`
	PhotoURL    string             `json:"photoUrl,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
