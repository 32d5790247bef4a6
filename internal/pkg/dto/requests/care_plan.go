package requests

import (
	"koppeltaal-service/internal/app/models"
	"time"
)

type CarePlanParams struct {
	ResourceParams
	Status       models.CarePlanStatus `json:"status" validate:"required,care_plan_status"`
	Patient      string                `json:"patient,omitempty" validate:"omitempty,reference"`
	CareTeam     string                `json:"careTeam,omitempty" validate:"omitempty,reference"`
	Goals        []GoalParams          `json:"goals,omitempty" validate:"dive"`
	Activities   []ActivityParams      `json:"activities,omitempty" validate:"dive"`
	Participants []ParticipantParams   `json:"participants,omitempty" validate:"dive"`
}

type ActivityParams struct {
	Identifier    string              `json:"identifier" validate:"required"`
	Definition    string              `json:"definition" validate:"required"`
	Kind          CodingParams        `json:"kind"`
	Description   string              `json:"description,omitempty"`
	Status        string              `json:"status,omitempty"`
	StartDate     *time.Time          `json:"startDate,omitempty"`
	EndDate       *time.Time          `json:"endDate,omitempty"`
	Participants  []ParticipantParams `json:"participants,omitempty" validate:"dive"`
	SubActivities []SubActivityParams `json:"subActivities,omitempty" validate:"dive"`
}

type ParticipantParams struct {
	Member   string                         `json:"member" validate:"required,reference"`
	Role     models.CarePlanParticipantRole `json:"role" validate:"required,participant_role"`
	CareTeam string                         `json:"careTeam,omitempty" validate:"omitempty,reference"`
}

type GoalParams struct {
	Identifier  string `json:"identifier" validate:"required"`
	Description string `json:"description" validate:"required"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=InProgress Achieved Sustaining Cancelled"`
	Notes       string `json:"notes,omitempty"`
}

type SubActivityParams struct {
	Identifier string                        `json:"identifier" validate:"required"`
	Status     models.CarePlanActivityStatus `json:"status,omitempty" validate:"omitempty,activity_status"`
}
