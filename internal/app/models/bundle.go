package models

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
)

// MessageHeaders decodes every MessageHeader entry of a searchset or message
// bundle, in entry order.
func MessageHeaders(ns extensions.Namespace, bundle *fhir_dto.Bundle) ([]MessageHeader, error) {
	if bundle == nil {
		return nil, nil
	}
	var headers []MessageHeader
	for _, entry := range bundle.Entry {
		if entry.Resource == nil || entry.Resource.ResourceType != constvars.ResourceMessageHeader {
			continue
		}
		header, err := ParseMessageHeader(ns, entry)
		if err != nil {
			return nil, err
		}
		headers = append(headers, *header)
	}
	return headers, nil
}

func MessageHeaderByMessageID(ns extensions.Namespace, bundle *fhir_dto.Bundle, messageID string) (*MessageHeader, bool) {
	headers, err := MessageHeaders(ns, bundle)
	if err != nil {
		return nil, false
	}
	for i := range headers {
		if headers[i].MessageID == messageID {
			return &headers[i], true
		}
	}
	return nil, false
}

// EntryByType returns the first entry whose resource kind matches. Other
// resources match on their code, e.g. CareTeam.
func EntryByType(bundle *fhir_dto.Bundle, kind string) (*fhir_dto.BundleEntry, bool) {
	if bundle == nil {
		return nil, false
	}
	for i := range bundle.Entry {
		if bundle.Entry[i].Resource != nil && bundle.Entry[i].Resource.KindName() == kind {
			return &bundle.Entry[i], true
		}
	}
	return nil, false
}

// EntryVersion is the version the server assigned to an entry.
func EntryVersion(entry fhir_dto.BundleEntry) string {
	if v, ok := resourceurl.VersionOf(entry.SelfLink()); ok {
		return v
	}
	if entry.Resource != nil {
		return entry.Resource.VersionID()
	}
	return ""
}
