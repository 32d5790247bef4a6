package requests

import (
	"koppeltaal-service/internal/app/models"
	"time"
)

// MessageHeaderParams describes the header of a bundle under construction.
// Patient and Focus may be left empty; the builder fills them in when a
// patient or the event's focus resource is added.
type MessageHeaderParams struct {
	MessageID string       `json:"messageId" validate:"required"`
	Event     models.Event `json:"event" validate:"required,event_code"`
	Patient   string       `json:"patient,omitempty" validate:"omitempty,reference"`
	Focus     string       `json:"focus,omitempty" validate:"omitempty,reference"`
	Timestamp time.Time    `json:"timestamp,omitempty"`
}
