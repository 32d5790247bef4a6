package models

type MessageFilter struct {
	Patient          string           `json:"patient,omitempty" validate:"omitempty,url"`
	Event            Event            `json:"event,omitempty" validate:"omitempty,event_code"`
	ProcessingStatus ProcessingStatus `json:"processingStatus,omitempty" validate:"omitempty,processing_status"`
	Count            int              `json:"count,omitempty" validate:"gte=0"`
}
