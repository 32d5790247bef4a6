package models

import "time"

// ClaimRecord tracks one claimed header until it reaches a terminal status.
type ClaimRecord struct {
	HeaderID    string           `json:"headerId" bson:"_id"`
	HeaderRef   string           `json:"headerRef" bson:"headerRef"`
	Version     string           `json:"version" bson:"version"`
	MessageID   string           `json:"messageId" bson:"messageId"`
	Event       Event            `json:"event" bson:"event"`
	Patient     string           `json:"patient,omitempty" bson:"patient,omitempty"`
	ClaimedAt   time.Time        `json:"claimedAt" bson:"claimedAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Outcome     ProcessingStatus `json:"outcome,omitempty" bson:"outcome,omitempty"`
	Detail      string           `json:"detail,omitempty" bson:"detail,omitempty"`
}

func (r *ClaimRecord) Open() bool {
	return r.CompletedAt == nil
}

func (r *ClaimRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.ClaimedAt)
}
