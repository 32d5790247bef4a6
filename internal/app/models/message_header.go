package models

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
	"time"

	"github.com/goccy/go-json"
)

// MessageHeader is the decoded view of a MessageHeader entry. Resource keeps
// the wire form so status transitions can send it back unchanged apart from
// the processing status.
type MessageHeader struct {
	ID                  string                 `json:"id"`
	Version             string                 `json:"version"`
	SelfLink            string                 `json:"selfLink"`
	MessageID           string                 `json:"messageId"`
	Event               Event                  `json:"event"`
	Timestamp           string                 `json:"timestamp"`
	Source              fhir_dto.MessageSource `json:"source"`
	PatientReference    string                 `json:"patientReference,omitempty"`
	FocusReference      string                 `json:"focusReference,omitempty"`
	ProcessingStatus    ProcessingStatus       `json:"processingStatus"`
	StatusLastChanged   string                 `json:"statusLastChanged,omitempty"`
	Exception           string                 `json:"exception,omitempty"`
	VersionedReferences []string               `json:"versionedReferences,omitempty"`
	Resource            *fhir_dto.Resource     `json:"-"`
}

// ParseMessageHeader decodes a MessageHeader bundle entry. The id and
// version come from the self link when present, otherwise from the
// resource itself.
func ParseMessageHeader(ns extensions.Namespace, entry fhir_dto.BundleEntry) (*MessageHeader, error) {
	res := entry.Resource
	if res == nil || res.ResourceType != constvars.ResourceMessageHeader {
		return nil, exceptions.ErrProtocolViolation(nil, "entry is not a MessageHeader")
	}

	header := &MessageHeader{
		ID:        res.ID,
		Version:   res.VersionID(),
		SelfLink:  entry.SelfLink(),
		MessageID: res.FirstIdentifier(),
		Timestamp: res.Timestamp,
		Resource:  res,
	}

	for _, candidate := range []string{header.SelfLink, entry.FullURL} {
		if candidate == "" {
			continue
		}
		u, err := resourceurl.Parse(candidate)
		if err != nil {
			continue
		}
		if header.ID == "" {
			header.ID = u.ID
		}
		if header.Version == "" {
			header.Version = u.Version
		}
	}
	if header.ID == "" {
		return nil, exceptions.ErrProtocolViolation(nil, "MessageHeader without id")
	}

	if res.Event != nil {
		header.Event = Event(res.Event.Code)
	}
	if res.Source != nil {
		header.Source = *res.Source
	}
	header.FocusReference = focusReference(header.Event, res.Data)
	for _, ref := range res.Data {
		if _, ok := resourceurl.VersionOf(ref.Reference); ok {
			header.VersionedReferences = append(header.VersionedReferences, ref.Reference)
		}
	}
	if patient, ok := extensions.MessageHeaderPatient.Get(ns, res); ok {
		header.PatientReference = patient.Reference
	}
	if group, ok := extensions.MessageHeaderProcessingStatus.Get(ns, res); ok {
		if status, ok := extensions.ProcessingStatusStatus.Get(ns, group); ok {
			header.ProcessingStatus = ProcessingStatus(status)
		}
		header.StatusLastChanged, _ = extensions.ProcessingStatusStatusLastChanged.Get(ns, group)
		header.Exception, _ = extensions.ProcessingStatusException.Get(ns, group)
	}
	return header, nil
}

// focusReference picks the first data reference of the event's focus kind.
// Once accepted, data lists every entry of the bundle, so data[0] is only a
// fallback. Other kinds share the Other resource type and cannot be told
// apart by reference, so they keep data[0].
func focusReference(event Event, data []fhir_dto.Reference) string {
	if len(data) == 0 {
		return ""
	}
	if kind := event.FocusKind(); kind != "" {
		for _, ref := range data {
			u, err := resourceurl.Parse(ref.Reference)
			if err == nil && u.ResourceType == kind {
				return ref.Reference
			}
		}
	}
	return data[0].Reference
}

// VersionedRef is the header reference used for conditional updates.
func (h *MessageHeader) VersionedRef(base string) (string, error) {
	return resourceurl.Build(base, constvars.ResourceMessageHeader, h.ID, h.Version)
}

// WithProcessingStatus returns a copy of the wire resource with the
// processing status group replaced. The receiver is left untouched.
func (h *MessageHeader) WithProcessingStatus(ns extensions.Namespace, target ProcessingStatus, exception string, changedAt time.Time) (*fhir_dto.Resource, error) {
	if h.Resource == nil {
		return nil, exceptions.ErrProtocolViolation(nil, "MessageHeader has no wire resource")
	}
	res, err := cloneResource(h.Resource)
	if err != nil {
		return nil, err
	}

	group := fhir_dto.Extension{}
	extensions.ProcessingStatusStatus.Set(ns, &group, string(target))
	extensions.ProcessingStatusStatusLastChanged.Set(ns, &group, changedAt.UTC().Format(time.RFC3339))
	if exception != "" {
		extensions.ProcessingStatusException.Set(ns, &group, exception)
	}
	extensions.MessageHeaderProcessingStatus.Set(ns, res, group)
	return res, nil
}

func cloneResource(res *fhir_dto.Resource) (*fhir_dto.Resource, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}
	clone := new(fhir_dto.Resource)
	if err := json.Unmarshal(raw, clone); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return clone, nil
}
