package models

import (
	"testing"
	"time"

	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testNamespace = extensions.Namespace("http://ggz.koppeltaal.nl/fhir/Koppeltaal")
	testBase      = "https://koppeltaal.example/FHIR/Koppeltaal"
)

func headerEntry(status ProcessingStatus) fhir_dto.BundleEntry {
	res := &fhir_dto.Resource{
		ResourceType: "MessageHeader",
		ID:           "h-1",
		Identifier:   []fhir_dto.Identifier{{Value: "msg-1"}},
		Timestamp:    "2024-05-01T10:00:00Z",
		Event:        &fhir_dto.Coding{Code: string(EventCreateOrUpdateCarePlan)},
		Data: []fhir_dto.Reference{
			{Reference: testBase + "/CarePlan/cp-1/_history/1"},
			{Reference: testBase + "/Patient/p-1/_history/1"},
		},
	}
	extensions.MessageHeaderPatient.Set(testNamespace, res, fhir_dto.Reference{Reference: testBase + "/Patient/p-1"})
	group := fhir_dto.Extension{}
	extensions.ProcessingStatusStatus.Set(testNamespace, &group, string(status))
	extensions.MessageHeaderProcessingStatus.Set(testNamespace, res, group)

	return fhir_dto.BundleEntry{
		FullURL:  testBase + "/MessageHeader/h-1",
		Link:     []fhir_dto.BundleLink{{Relation: "self", URL: testBase + "/MessageHeader/h-1/_history/4"}},
		Resource: res,
	}
}

func TestParseMessageHeader(t *testing.T) {
	header, err := ParseMessageHeader(testNamespace, headerEntry(ProcessingStatusNew))
	require.NoError(t, err)

	assert.Equal(t, "h-1", header.ID)
	assert.Equal(t, "4", header.Version)
	assert.Equal(t, "msg-1", header.MessageID)
	assert.Equal(t, EventCreateOrUpdateCarePlan, header.Event)
	assert.Equal(t, ProcessingStatusNew, header.ProcessingStatus)
	assert.Equal(t, testBase+"/Patient/p-1", header.PatientReference)
	assert.Equal(t, testBase+"/CarePlan/cp-1/_history/1", header.FocusReference)
	assert.Len(t, header.VersionedReferences, 2)

	ref, err := header.VersionedRef(testBase)
	require.NoError(t, err)
	assert.Equal(t, testBase+"/MessageHeader/h-1/_history/4", ref)
}

func TestParseMessageHeaderFocus(t *testing.T) {
	t.Run("Picks The Event Focus Kind Over Data Order", func(t *testing.T) {
		entry := headerEntry(ProcessingStatusNew)
		entry.Resource.Data = []fhir_dto.Reference{
			{Reference: testBase + "/Patient/p-1/_history/1"},
			{Reference: testBase + "/CarePlan/cp-1/_history/1"},
		}
		header, err := ParseMessageHeader(testNamespace, entry)
		require.NoError(t, err)
		assert.Equal(t, testBase+"/CarePlan/cp-1/_history/1", header.FocusReference)
	})

	t.Run("Other Kinds Keep The First Data Entry", func(t *testing.T) {
		entry := headerEntry(ProcessingStatusNew)
		entry.Resource.Event = &fhir_dto.Coding{Code: string(EventCreateOrUpdateUserMessage)}
		entry.Resource.Data = []fhir_dto.Reference{
			{Reference: testBase + "/Other/um-1/_history/1"},
			{Reference: testBase + "/Patient/p-1/_history/1"},
		}
		header, err := ParseMessageHeader(testNamespace, entry)
		require.NoError(t, err)
		assert.Equal(t, testBase+"/Other/um-1/_history/1", header.FocusReference)
	})
}

func TestParseMessageHeaderRejectsOtherResources(t *testing.T) {
	_, err := ParseMessageHeader(testNamespace, fhir_dto.BundleEntry{Resource: &fhir_dto.Resource{ResourceType: "Patient"}})
	assert.Error(t, err)
}

func TestWithProcessingStatusLeavesOriginalUntouched(t *testing.T) {
	header, err := ParseMessageHeader(testNamespace, headerEntry(ProcessingStatusClaimed))
	require.NoError(t, err)

	updated, err := header.WithProcessingStatus(testNamespace, ProcessingStatusFailed, "downstream rejected", time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	reparsed, err := ParseMessageHeader(testNamespace, fhir_dto.BundleEntry{Resource: updated})
	require.NoError(t, err)
	assert.Equal(t, ProcessingStatusFailed, reparsed.ProcessingStatus)
	assert.Equal(t, "downstream rejected", reparsed.Exception)
	assert.Equal(t, "2024-05-01T11:00:00Z", reparsed.StatusLastChanged)

	original, err := ParseMessageHeader(testNamespace, fhir_dto.BundleEntry{Resource: header.Resource})
	require.NoError(t, err)
	assert.Equal(t, ProcessingStatusClaimed, original.ProcessingStatus)
}

func TestProcessingStatusEdges(t *testing.T) {
	assert.True(t, ProcessingStatusNew.CanTransitionTo(ProcessingStatusClaimed))
	assert.True(t, ProcessingStatusClaimed.CanTransitionTo(ProcessingStatusSuccess))
	assert.True(t, ProcessingStatusClaimed.CanTransitionTo(ProcessingStatusFailed))
	assert.False(t, ProcessingStatusNew.CanTransitionTo(ProcessingStatusSuccess))
	assert.False(t, ProcessingStatusSuccess.CanTransitionTo(ProcessingStatusClaimed))
	assert.False(t, ProcessingStatusFailed.CanTransitionTo(ProcessingStatusFailed))
	assert.True(t, ProcessingStatusFailed.IsTerminal())
}

func TestBundleHelpers(t *testing.T) {
	bundle := &fhir_dto.Bundle{
		ResourceType: "Bundle",
		Type:         "searchset",
		Entry: []fhir_dto.BundleEntry{
			headerEntry(ProcessingStatusNew),
			{
				FullURL:  testBase + "/CareTeam/t-1",
				Link:     []fhir_dto.BundleLink{{Relation: "self", URL: testBase + "/CareTeam/t-1/_history/2"}},
				Resource: &fhir_dto.Resource{ResourceType: "Other", Code: &fhir_dto.CodeableConcept{Coding: []fhir_dto.Coding{{Code: "CareTeam"}}}},
			},
		},
	}

	header, ok := MessageHeaderByMessageID(testNamespace, bundle, "msg-1")
	require.True(t, ok)
	assert.Equal(t, "h-1", header.ID)

	_, ok = MessageHeaderByMessageID(testNamespace, bundle, "unknown")
	assert.False(t, ok)

	entry, ok := EntryByType(bundle, "CareTeam")
	require.True(t, ok)
	assert.Equal(t, "2", EntryVersion(*entry))

	_, ok = EntryByType(bundle, "Patient")
	assert.False(t, ok)
}
