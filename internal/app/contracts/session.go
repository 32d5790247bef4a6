package contracts

import (
	"context"
	"koppeltaal-service/internal/app/models"
)

// LaunchUsecase runs the application side of a SMART launch.
type LaunchUsecase interface {
	// Begin checks the launch and returns the authorize url to send the
	// user agent to.
	Begin(ctx context.Context, issuer, launch string) (string, error)
	// Complete verifies state, exchanges code and stores the tokens.
	Complete(ctx context.Context, code, state string) (*models.LaunchSession, error)
	Get(ctx context.Context, sessionID string) (*models.LaunchSession, error)
	Refresh(ctx context.Context, sessionID string) (*models.LaunchSession, error)
	End(ctx context.Context, sessionID string) error
	// Healthy reports whether the koppeltaal server accepts the application
	// credential.
	Healthy(ctx context.Context) bool
}
