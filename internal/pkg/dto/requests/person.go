package requests

import (
	"koppeltaal-service/internal/app/models"
	"time"
)

type PatientParams struct {
	ResourceParams
	Name      NameParams      `json:"name"`
	Telecom   []ContactParams `json:"telecom,omitempty" validate:"dive"`
	Gender    models.Gender   `json:"gender,omitempty" validate:"omitempty,oneof=M F UN UNK"`
	BirthDate *time.Time      `json:"birthDate,omitempty"`
	Age       *int            `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
}

type PractitionerParams struct {
	ResourceParams
	Name    NameParams      `json:"name"`
	Telecom []ContactParams `json:"telecom,omitempty" validate:"dive"`
}

type RelatedPersonParams struct {
	ResourceParams
	Patient      string          `json:"patient,omitempty" validate:"omitempty,reference"`
	Name         NameParams      `json:"name"`
	Telecom      []ContactParams `json:"telecom,omitempty" validate:"dive"`
	Relationship string          `json:"relationship,omitempty" validate:"omitempty,oneof=emergency family guardian friend partner work caregiver agent guarantor owner parent"`
	Gender       models.Gender   `json:"gender,omitempty" validate:"omitempty,oneof=M F UN UNK"`
	Age          *int            `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
}
