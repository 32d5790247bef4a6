package exceptions

import (
	"errors"
	"koppeltaal-service/internal/pkg/constvars"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatAllValidationErrors describes every failed field, comma separated.
func FormatAllValidationErrors(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return constvars.ErrClientCannotProcessRequest
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describeField(fe))
	}
	return strings.Join(messages, ", ")
}

func FormatFirstValidationError(err error) string {
	if err == nil {
		return constvars.ErrClientCannotProcessRequest
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return constvars.ErrDevInvalidInput
	}
	return describeField(fieldErrors[0])
}

func describeField(fe validator.FieldError) string {
	tag := fe.Tag()
	message, ok := constvars.CustomValidationErrorMessages[tag]
	if !ok {
		message = "is invalid"
	}
	if constvars.TagsWithParams[tag] {
		param := fe.Param()
		if tag == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		message = strings.Replace(message, "%s", param, 1)
	}
	return fieldPath(fe) + " " + message
}

// fieldPath drops the struct name so nested fields read as
// activities[0].kind.
func fieldPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		path = fe.Field()
	}
	return strings.ToLower(path)
}
