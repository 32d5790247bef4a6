package requests

import "time"

// ResourceParams identifies a resource inside a bundle. ID is the logical id
// other parameters refer to; a non-empty Version turns the entry into a
// conditional update of that version.
type ResourceParams struct {
	ID      string `json:"id" validate:"required,resource_id"`
	Version string `json:"version,omitempty" validate:"omitempty,resource_id"`
}

type NameParams struct {
	Given  string `json:"given" validate:"required_without=Family"`
	Family string `json:"family" validate:"required_without=Given"`
}

type ContactParams struct {
	System string     `json:"system" validate:"required,oneof=phone fax email url"`
	Use    string     `json:"use,omitempty" validate:"omitempty,oneof=home work temp old mobile"`
	Value  string     `json:"value" validate:"required"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

type CodingParams struct {
	System  string `json:"system,omitempty" validate:"omitempty,uri"`
	Code    string `json:"code" validate:"required"`
	Display string `json:"display,omitempty"`
}

type PeriodParams struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}
