package bundles

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// Config is everything a builder needs to know about the sending
// application. It is passed explicitly to every builder.
type Config struct {
	// BaseURL is the FHIR base entry urls are minted under, e.g.
	// https://edgekoppeltaal.vhscloud.nl/FHIR/Koppeltaal.
	BaseURL       string                 `validate:"required,url"`
	Namespace     extensions.Namespace   `validate:"required"`
	ApplicationID string                 `validate:"required"`
	Domain        string                 `validate:"required"`
	Source        fhir_dto.MessageSource `validate:"-"`
}

// ApplicationReference points at the Device that represents the sending
// application on the server.
func (c Config) ApplicationReference() fhir_dto.Reference {
	return fhir_dto.Reference{
		Reference: c.BaseURL + "/" + constvars.ResourceDevice + "/" + c.ApplicationID,
		Display:   c.ApplicationID,
	}
}
