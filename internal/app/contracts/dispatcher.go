package contracts

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// Dispatcher hands claimed bundles to whatever processes them downstream.
type Dispatcher interface {
	Dispatch(ctx context.Context, header *models.MessageHeader, bundle *fhir_dto.Bundle) error
	DeadLetter(ctx context.Context, header *models.MessageHeader, bundle *fhir_dto.Bundle, reason string) error
}
