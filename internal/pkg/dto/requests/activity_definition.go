package requests

import "koppeltaal-service/internal/app/models"

type ActivityDefinitionParams struct {
	ResourceParams
	Identifier       string                        `json:"identifier" validate:"required"`
	Name             string                        `json:"name" validate:"required"`
	Description      string                        `json:"description,omitempty"`
	Kind             models.ActivityKind           `json:"kind" validate:"required,activity_kind"`
	DefaultPerformer models.ActivityPerformer      `json:"defaultPerformer,omitempty" validate:"omitempty,activity_performer"`
	IsActive         bool                          `json:"isActive"`
	IsDomainSpecific bool                          `json:"isDomainSpecific"`
	IsArchived       bool                          `json:"isArchived"`
	SubActivities    []SubActivityDefinitionParams `json:"subActivities,omitempty" validate:"dive"`
}

type SubActivityDefinitionParams struct {
	Identifier  string `json:"identifier" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

type ActivityStatusParams struct {
	ResourceParams
	Activity            string                        `json:"activity" validate:"required"`
	Status              models.CarePlanActivityStatus `json:"status" validate:"required,activity_status"`
	PercentageCompleted *int                          `json:"percentageCompleted,omitempty" validate:"omitempty,gte=0,lte=100"`
	SubActivities       []SubActivityParams           `json:"subActivities,omitempty" validate:"dive"`
}
