package requests

import "koppeltaal-service/internal/app/models"

type CareTeamParams struct {
	ResourceParams
	Identifier           string                `json:"identifier,omitempty"`
	Status               models.CareTeamStatus `json:"status" validate:"required,care_team_status"`
	Name                 string                `json:"name,omitempty"`
	Period               *PeriodParams         `json:"period,omitempty"`
	Subject              string                `json:"subject,omitempty" validate:"omitempty,reference"`
	ManagingOrganization string                `json:"managingOrganization,omitempty" validate:"omitempty,reference"`
}
