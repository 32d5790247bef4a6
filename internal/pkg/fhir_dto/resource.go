package fhir_dto

import "koppeltaal-service/internal/pkg/constvars"

// Resource is the generic wire shape of every koppeltaal resource. Fields a
// given resourceType does not use stay empty and are omitted on the wire.
type Resource struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Identifier   []Identifier     `json:"identifier,omitempty"`
	Code         *CodeableConcept `json:"code,omitempty"`
	Status       string           `json:"status,omitempty"`

	Name         []HumanName      `json:"name,omitempty"`
	Telecom      []ContactPoint   `json:"telecom,omitempty"`
	Gender       *CodeableConcept `json:"gender,omitempty"`
	BirthDate    string           `json:"birthDate,omitempty"`
	Patient      *Reference       `json:"patient,omitempty"`
	Relationship *CodeableConcept `json:"relationship,omitempty"`

	Timestamp string         `json:"timestamp,omitempty"`
	Event     *Coding        `json:"event,omitempty"`
	Source    *MessageSource `json:"source,omitempty"`
	Data      []Reference    `json:"data,omitempty"`

	Extension Extensions `json:"extension,omitempty"`
}

func (r *Resource) ExtensionList() *Extensions {
	return &r.Extension
}

// OtherKind returns the code of an Other resource, e.g. ActivityDefinition.
func (r *Resource) OtherKind() string {
	return r.Code.FirstCode()
}

// KindName is the resourceType, or the Other code for Other resources.
func (r *Resource) KindName() string {
	if r.ResourceType == constvars.ResourceOther {
		if kind := r.OtherKind(); kind != "" {
			return kind
		}
	}
	return r.ResourceType
}

func (r *Resource) VersionID() string {
	if r.Meta == nil {
		return ""
	}
	return r.Meta.VersionId
}

func (r *Resource) FirstIdentifier() string {
	if len(r.Identifier) == 0 {
		return ""
	}
	return r.Identifier[0].Value
}
