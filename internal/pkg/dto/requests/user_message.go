package requests

import "koppeltaal-service/internal/app/models"

// UserMessageParams is a free-text notification. Subject is needed once a
// Content body is given, and at least one of Content or Context must be set;
// the builder checks both when the bundle is finished.
type UserMessageParams struct {
	ResourceParams
	From    string             `json:"from" validate:"required,reference"`
	To      string             `json:"to" validate:"required,reference"`
	Kind    models.MessageKind `json:"kind" validate:"required,message_kind"`
	Subject string             `json:"subject,omitempty"`
	Content string             `json:"content,omitempty"`
	Context string             `json:"context,omitempty" validate:"omitempty,uri"`
}
