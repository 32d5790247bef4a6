package utils

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/resourceurl"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("resource_type", validateResourceType)
	validate.RegisterValidation("resource_id", validateResourceID)
	validate.RegisterValidation("event_code", validateEventCode)
	validate.RegisterValidation("processing_status", validateProcessingStatus)
	validate.RegisterValidation("activity_kind", validateActivityKind)
	validate.RegisterValidation("activity_performer", validateActivityPerformer)
	validate.RegisterValidation("activity_status", validateActivityStatus)
	validate.RegisterValidation("message_kind", validateMessageKind)
	validate.RegisterValidation("participant_role", validateParticipantRole)
	validate.RegisterValidation("care_team_status", validateCareTeamStatus)
	validate.RegisterValidation("care_plan_status", validateCarePlanStatus)
	validate.RegisterValidation("reference", validateReference)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateResourceType(fl validator.FieldLevel) bool {
	return resourceurl.IsResourceType(fl.Field().String())
}

func validateResourceID(fl validator.FieldLevel) bool {
	return resourceurl.IsResourceID(fl.Field().String())
}

func validateEventCode(fl validator.FieldLevel) bool {
	return models.Event(fl.Field().String()).IsValid()
}

func validateProcessingStatus(fl validator.FieldLevel) bool {
	return models.ProcessingStatus(fl.Field().String()).IsValid()
}

func validateActivityKind(fl validator.FieldLevel) bool {
	return models.ActivityKind(fl.Field().String()).IsValid()
}

func validateActivityPerformer(fl validator.FieldLevel) bool {
	return models.ActivityPerformer(fl.Field().String()).IsValid()
}

func validateActivityStatus(fl validator.FieldLevel) bool {
	return models.CarePlanActivityStatus(fl.Field().String()).IsValid()
}

func validateMessageKind(fl validator.FieldLevel) bool {
	return models.MessageKind(fl.Field().String()).IsValid()
}

func validateParticipantRole(fl validator.FieldLevel) bool {
	return models.CarePlanParticipantRole(fl.Field().String()).IsValid()
}

func validateCareTeamStatus(fl validator.FieldLevel) bool {
	return models.CareTeamStatus(fl.Field().String()).IsValid()
}

func validateCarePlanStatus(fl validator.FieldLevel) bool {
	return models.CarePlanStatus(fl.Field().String()).IsValid()
}

// a reference is either a bundle-local logical id or an absolute resource url
func validateReference(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if resourceurl.IsAbsolute(value) {
		_, err := resourceurl.Parse(value)
		return err == nil
	}
	return resourceurl.IsResourceID(value)
}
