package fhir_dto

import "koppeltaal-service/internal/pkg/constvars"

type Bundle struct {
	ResourceType string        `json:"resourceType"`
	ID           string        `json:"id,omitempty"`
	Type         string        `json:"type"`
	Total        int           `json:"total,omitempty"`
	Link         []BundleLink  `json:"link,omitempty"`
	Entry        []BundleEntry `json:"entry"`
}

type BundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

type BundleEntry struct {
	FullURL  string       `json:"fullUrl,omitempty"`
	Link     []BundleLink `json:"link,omitempty"`
	Resource *Resource    `json:"resource"`
}

// SelfLink returns the entry's self link, versioned once the server has
// accepted the resource.
func (e BundleEntry) SelfLink() string {
	for _, l := range e.Link {
		if l.Relation == constvars.BundleLinkSelf {
			return l.URL
		}
	}
	return ""
}
