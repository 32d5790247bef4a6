package bundles

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

type requirement struct {
	name string
	met  func(ns extensions.Namespace, res *fhir_dto.Resource) bool
}

// Events whose header has to name the patient the message is about.
var patientScopedEvents = map[models.Event]bool{
	models.EventCreateOrUpdateCarePlan:       true,
	models.EventUpdateCarePlanActivityStatus: true,
	models.EventCreateOrUpdateUserMessage:    true,
	models.EventCreateOrUpdateCareTeam:       true,
}

var resourceRequirements = map[string][]requirement{
	constvars.ResourceCarePlan: {
		{"CarePlan patient", func(_ extensions.Namespace, r *fhir_dto.Resource) bool {
			return r.Patient != nil && r.Patient.Reference != ""
		}},
		{"activity identifier", eachActivity(extensions.CarePlanActivityIdentifier.Field)},
		{"activity definition", eachActivity(extensions.CarePlanActivityDefinition.Field)},
		{"activity kind", eachActivity(extensions.CarePlanActivityKind.Field)},
		{"activity start date", eachActivity(extensions.CarePlanActivityStartDate.Field)},
		{"participant member", eachParticipant(extensions.CarePlanParticipantMember.Field)},
		{"participant role", eachParticipant(extensions.CarePlanParticipantRole.Field)},
	},
	constvars.OtherCarePlanActivityStatus: {
		{"activity identifier", has(extensions.ActivityStatusActivity.Field)},
		{"activity status", has(extensions.ActivityStatusStatus.Field)},
	},
	constvars.ResourcePatient: {
		{"name", hasName},
	},
	constvars.ResourcePractitioner: {
		{"name", hasName},
	},
	constvars.ResourceRelatedPerson: {
		{"name", hasName},
		{"RelatedPerson patient", func(_ extensions.Namespace, r *fhir_dto.Resource) bool {
			return r.Patient != nil && r.Patient.Reference != ""
		}},
	},
	constvars.OtherUserMessage: {
		{"message kind", has(extensions.UserMessageMessageKind.Field)},
		{"from", has(extensions.UserMessageFrom.Field)},
		{"to", has(extensions.UserMessageTo.Field)},
		{"subject", func(ns extensions.Namespace, r *fhir_dto.Resource) bool {
			return !extensions.UserMessageContent.Has(ns, r) || extensions.UserMessageSubject.Has(ns, r)
		}},
		{"content or context", func(ns extensions.Namespace, r *fhir_dto.Resource) bool {
			return extensions.UserMessageContent.Has(ns, r) || extensions.UserMessageContext.Has(ns, r)
		}},
	},
	constvars.OtherActivityDefinition: {
		{"identifier", has(extensions.ActivityDefinitionIdentifier.Field)},
		{"name", has(extensions.ActivityDefinitionName.Field)},
		{"kind", has(extensions.ActivityDefinitionKind.Field)},
		{"application", has(extensions.ActivityDefinitionApplication.Field)},
	},
	constvars.OtherCareTeam: {
		{"status", has(extensions.CareTeamStatus.Field)},
	},
}

// checkMessage fails with the first requirement of the event the bundle
// does not meet.
func (b *Builder) checkMessage(header *fhir_dto.Resource) error {
	event := b.header.Event
	name := string(event)

	focusKind := event.FocusKind()
	focus := b.focusEntry(focusKind)
	if focus == nil || len(header.Data) == 0 {
		return exceptions.ErrBuilderMissingRequirement(name, "focus "+focusKind)
	}
	if patientScopedEvents[event] && !extensions.MessageHeaderPatient.Has(b.cfg.Namespace, header) {
		return exceptions.ErrBuilderMissingRequirement(name, "patient reference")
	}
	return b.checkKind(name, focus.kind, focus.resource)
}

func (b *Builder) checkResource(kind string, res *fhir_dto.Resource) error {
	return b.checkKind(kind, kind, res)
}

func (b *Builder) checkKind(name, kind string, res *fhir_dto.Resource) error {
	for _, req := range resourceRequirements[kind] {
		if !req.met(b.cfg.Namespace, res) {
			return exceptions.ErrBuilderMissingRequirement(name, req.name)
		}
	}
	return nil
}

// focusEntry is the entry the header's focus resolved to, provided it is of
// the event's focus kind.
func (b *Builder) focusEntry(kind string) *entry {
	if b.header.Focus == "" {
		return nil
	}
	focus, err := b.resolve(b.header.Focus, constvars.ResourceMessageHeader)
	if err != nil {
		return nil
	}
	for _, e := range b.entries {
		if e.self == focus && e.kind == kind {
			return e
		}
	}
	return nil
}

func has(f extensions.Field) func(extensions.Namespace, *fhir_dto.Resource) bool {
	return func(ns extensions.Namespace, r *fhir_dto.Resource) bool {
		return f.Has(ns, r)
	}
}

func hasName(_ extensions.Namespace, r *fhir_dto.Resource) bool {
	return len(r.Name) > 0 && (len(r.Name[0].Given) > 0 || len(r.Name[0].Family) > 0)
}

func eachActivity(f extensions.Field) func(extensions.Namespace, *fhir_dto.Resource) bool {
	return func(ns extensions.Namespace, r *fhir_dto.Resource) bool {
		for _, activity := range extensions.CarePlanActivity.Items(ns, r) {
			if !f.Has(ns, activity) {
				return false
			}
		}
		return true
	}
}

// eachParticipant covers plan level participants as well as the ones nested
// in activities.
func eachParticipant(f extensions.Field) func(extensions.Namespace, *fhir_dto.Resource) bool {
	return func(ns extensions.Namespace, r *fhir_dto.Resource) bool {
		containers := []fhir_dto.Extendable{r}
		for _, activity := range extensions.CarePlanActivity.Items(ns, r) {
			containers = append(containers, activity)
		}
		for _, c := range containers {
			for _, participant := range extensions.CarePlanParticipant.Items(ns, c) {
				if !f.Has(ns, participant) {
					return false
				}
			}
		}
		return true
	}
}
