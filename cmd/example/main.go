package main

import (
	"context"
	"koppeltaal-service/internal/app/config"
	"koppeltaal-service/internal/app/drivers/koppeltaal"
	"koppeltaal-service/internal/app/drivers/logger"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/core/bundles"
	"koppeltaal-service/internal/pkg/dto/requests"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

// main walks one care plan message through the mailbox: post it, claim the
// next new message, read its bundle and acknowledge it.
func main() {
	internalConfig := config.NewInternalConfig()
	log := logger.NewLogrusLogger(internalConfig)
	log.WithFields(logrus.Fields{"version": Version, "tag": Tag}).Info("Starting koppeltaal example")

	clients := koppeltaal.NewClients(internalConfig, zap.NewNop())
	ctx := utils.WithRequestID(context.Background(), "")

	messageID := utils.GenerateMessageID()
	bundle, err := buildCarePlan(clients.Bundles, messageID)
	if err != nil {
		log.WithError(err).Fatal("Building care plan bundle failed")
	}

	if !clients.Auth.TestAuthentication(ctx) {
		log.WithField("server", internalConfig.Koppeltaal.ServerURL).Fatal("Server rejected the configured credentials")
	}

	if _, err := clients.Messages.Post(ctx, bundle); err != nil {
		log.WithError(err).Fatal("Posting care plan failed")
	}
	log.WithField("messageId", messageID).Info("Care plan posted")

	header, err := clients.Messages.ClaimNext(ctx, models.MessageFilter{Event: models.EventCreateOrUpdateCarePlan})
	if err != nil {
		log.WithError(err).Fatal("Claiming next message failed")
	}
	if header == nil {
		log.Warn("No new care plan message to claim")
		os.Exit(0)
	}
	entry := log.WithFields(logrus.Fields{
		"messageId": header.MessageID,
		"headerId":  header.ID,
		"patient":   header.PatientReference,
	})
	entry.Info("Message claimed")

	received, err := clients.Messages.FetchBundle(ctx, header)
	if err != nil {
		entry.WithError(err).Error("Fetching bundle failed")
		if _, err := clients.Messages.MarkFailed(ctx, header, err.Error()); err != nil {
			entry.WithError(err).Fatal("Marking message failed did not succeed")
		}
		os.Exit(1)
	}
	entry.WithField("entries", len(received.Entry)).Info("Bundle fetched")

	done, err := clients.Messages.TransitionStatus(ctx, header, models.ProcessingStatusSuccess)
	if err != nil {
		entry.WithError(err).Fatal("Acknowledging message failed")
	}
	entry.WithField("status", done.ProcessingStatus).Info("Message acknowledged")
}

func buildCarePlan(cfg bundles.Config, messageID string) (*fhir_dto.Bundle, error) {
	b, err := bundles.NewBuilder(cfg, requests.MessageHeaderParams{
		MessageID: messageID,
		Event:     models.EventCreateOrUpdateCarePlan,
	})
	if err != nil {
		return nil, err
	}

	patientID := "patient-" + messageID
	start := time.Now()
	if err := b.AddPatient(requests.PatientParams{
		ResourceParams: requests.ResourceParams{ID: patientID},
		Name:           requests.NameParams{Given: "Example", Family: "Patient"},
	}); err != nil {
		return nil, err
	}
	if err := b.AddCarePlan(requests.CarePlanParams{
		ResourceParams: requests.ResourceParams{ID: "careplan-" + messageID},
		Status:         models.CarePlanStatusActive,
		Patient:        patientID,
		Activities: []requests.ActivityParams{{
			Identifier: "activity-1",
			Definition: "example-game",
			Kind:       requests.CodingParams{Code: string(models.ActivityKindGame)},
			StartDate:  &start,
		}},
	}); err != nil {
		return nil, err
	}
	return b.Build()
}
