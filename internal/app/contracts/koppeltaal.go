package contracts

import (
	"context"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"net/url"
)

type MessageExchangeClient interface {
	Post(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error)
	Query(ctx context.Context, filter models.MessageFilter) ([]models.MessageHeader, error)
	// ClaimNext claims the oldest New header matching filter. It returns
	// nil, nil when there is nothing to claim.
	ClaimNext(ctx context.Context, filter models.MessageFilter) (*models.MessageHeader, error)
	TransitionStatus(ctx context.Context, header *models.MessageHeader, target models.ProcessingStatus) (*models.MessageHeader, error)
	MarkFailed(ctx context.Context, header *models.MessageHeader, reason string) (*models.MessageHeader, error)
	FetchBundle(ctx context.Context, header *models.MessageHeader) (*fhir_dto.Bundle, error)
}

type ResourceClient interface {
	GetMetadata(ctx context.Context) (*models.ServerMetadata, error)
	GetMetadataRaw(ctx context.Context) ([]byte, error)
	PostResource(ctx context.Context, res *fhir_dto.Resource, version string) (*fhir_dto.Resource, error)
	Read(ctx context.Context, ref string) (*fhir_dto.Resource, error)
	GetActivityDefinitionByID(ctx context.Context, id string) (*fhir_dto.Resource, error)
	GetActivityDefinitions(ctx context.Context) ([]fhir_dto.Resource, error)
	GetActivityDefinitionsRaw(ctx context.Context) ([]byte, error)
}

type AuthSession interface {
	TestAuthentication(ctx context.Context) bool
	Launch(ctx context.Context, activityID, patientRef, userRef string, extra url.Values) (string, error)
	MobileLaunch(ctx context.Context, activityID, patientRef, userRef string, extra url.Values) (*models.MobileLaunchCode, error)
	Metadata(ctx context.Context) (*models.ServerMetadata, error)
	CreateOAuthAuthorizeURL(clientID, redirectURI, launch, state string, md *models.ServerMetadata) (string, error)
	ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string, md *models.ServerMetadata) (*models.TokenDetails, error)
	ExchangeActivationCode(ctx context.Context, clientID, redirectURI, activationCode string) (*models.TokenDetails, error)
	Refresh(ctx context.Context, token *models.TokenDetails, clientID, clientSecret string) (*models.TokenDetails, error)
}
