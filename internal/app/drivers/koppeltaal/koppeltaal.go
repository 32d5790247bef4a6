package koppeltaal

import (
	"koppeltaal-service/internal/app/config"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/core/bundles"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/messages"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/resources"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/smart_auth"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"net/http"

	"go.uber.org/zap"
)

// Clients are the koppeltaal clients bound to the application credential.
type Clients struct {
	Messages  *messages.MessageFhirClient
	Resources *resources.ResourceFhirClient
	Auth      *smart_auth.SmartAuthClient
	Bundles   bundles.Config
}

func NewClients(internalConfig *config.InternalConfig, logger *zap.Logger) *Clients {
	kt := internalConfig.Koppeltaal
	httpClient := &http.Client{Timeout: kt.RequestTimeout()}
	cred := models.BasicCredential(kt.Username, kt.Password)
	ns := extensions.Namespace(kt.Namespace)

	return &Clients{
		Messages: messages.NewMessageFhirClient(messages.Config{
			ServerURL:     kt.ServerURL,
			Namespace:     ns,
			ClaimAttempts: internalConfig.Consumer.ClaimAttempts,
		}, httpClient, cred, logger),
		Resources: resources.NewResourceFhirClient(kt.ServerURL, httpClient, cred, logger),
		Auth:      smart_auth.NewSmartAuthClient(kt.ServerURL, httpClient, cred, logger),
		Bundles: bundles.Config{
			BaseURL:       kt.ServerURL + constvars.KoppeltaalFHIRPath,
			Namespace:     ns,
			ApplicationID: kt.ApplicationID,
			Domain:        kt.Domain,
			Source: fhir_dto.MessageSource{
				Name:     kt.SourceName,
				Software: kt.SourceSoftware,
				Version:  kt.SourceVersion,
				Endpoint: kt.SourceEndpoint,
			},
		},
	}
}
