package fhir_dto

import "time"

type Reference struct {
	Reference string `json:"reference,omitempty" bson:"reference,omitempty"`
	Display   string `json:"display,omitempty" bson:"display,omitempty"`
}

type Identifier struct {
	Use    string  `json:"use,omitempty" bson:"use,omitempty"`
	System string  `json:"system,omitempty" bson:"system,omitempty"`
	Value  string  `json:"value,omitempty" bson:"value,omitempty"`
	Period *Period `json:"period,omitempty" bson:"period,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty" bson:"coding,omitempty"`
	Text   string   `json:"text,omitempty" bson:"text,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty" bson:"system,omitempty"`
	Version string `json:"version,omitempty" bson:"version,omitempty"`
	Code    string `json:"code,omitempty" bson:"code,omitempty"`
	Display string `json:"display,omitempty" bson:"display,omitempty"`
}

type Period struct {
	Start string `json:"start,omitempty" bson:"start,omitempty"`
	End   string `json:"end,omitempty" bson:"end,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty" bson:"use,omitempty"`
	Text   string   `json:"text,omitempty" bson:"text,omitempty"`
	Family []string `json:"family,omitempty" bson:"family,omitempty"`
	Given  []string `json:"given,omitempty" bson:"given,omitempty"`
}

type Meta struct {
	VersionId   string     `json:"versionId,omitempty" bson:"versionId,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty" bson:"lastUpdated,omitempty"`
}

type ContactPoint struct {
	System string  `json:"system,omitempty" bson:"system,omitempty"`
	Value  string  `json:"value,omitempty" bson:"value,omitempty"`
	Use    string  `json:"use,omitempty" bson:"use,omitempty"`
	Period *Period `json:"period,omitempty" bson:"period,omitempty"`
}

type MessageSource struct {
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Software string `json:"software,omitempty" bson:"software,omitempty"`
	Version  string `json:"version,omitempty" bson:"version,omitempty"`
	Endpoint string `json:"endpoint,omitempty" bson:"endpoint,omitempty"`
}

// FirstCode returns the first coding's code, or "" when the concept is empty.
func (c *CodeableConcept) FirstCode() string {
	if c == nil || len(c.Coding) == 0 {
		return ""
	}
	return c.Coding[0].Code
}
