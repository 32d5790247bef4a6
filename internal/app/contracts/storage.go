package contracts

import (
	"context"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// BundleArchive keeps snapshots of bundles as they were sent or received.
type BundleArchive interface {
	// Save stores bundle under the message id and stage and returns the
	// object key.
	Save(ctx context.Context, messageID, stage string, bundle *fhir_dto.Bundle) (string, error)
}
