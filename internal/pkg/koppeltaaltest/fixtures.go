package koppeltaaltest

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/core/bundles"
	"koppeltaal-service/internal/pkg/dto/requests"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"time"
)

const FixtureApplicationID = "game-app"

// BundleConfig is the builder configuration matching this server.
func (s *Server) BundleConfig() bundles.Config {
	return bundles.Config{
		BaseURL:       s.BaseURL(),
		Namespace:     s.namespace,
		ApplicationID: FixtureApplicationID,
		Domain:        s.opts.Domain,
	}
}

// CarePlanBundle builds a CreateOrUpdateCarePlan message for a new patient
// with one game activity.
func (s *Server) CarePlanBundle(messageID, patientID string) (*fhir_dto.Bundle, error) {
	b, err := bundles.NewBuilder(s.BundleConfig(), requests.MessageHeaderParams{
		MessageID: messageID,
		Event:     models.EventCreateOrUpdateCarePlan,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := b.AddPatient(requests.PatientParams{
		ResourceParams: requests.ResourceParams{ID: patientID},
		Name:           requests.NameParams{Given: "Klaas", Family: "de Vries"},
	}); err != nil {
		return nil, err
	}
	if err := b.AddCarePlan(requests.CarePlanParams{
		ResourceParams: requests.ResourceParams{ID: "careplan-" + messageID},
		Status:         models.CarePlanStatusActive,
		Patient:        patientID,
		Activities: []requests.ActivityParams{{
			Identifier: "act-0",
			Definition: "ad-1",
			Kind:       requests.CodingParams{Code: string(models.ActivityKindGame)},
			StartDate:  &start,
		}},
	}); err != nil {
		return nil, err
	}
	return b.Build()
}
