package models

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// Event is the kind of interaction a message bundle represents.
type Event string

const (
	EventCreateOrUpdateCarePlan           Event = "CreateOrUpdateCarePlan"
	EventUpdateCarePlanActivityStatus     Event = "UpdateCarePlanActivityStatus"
	EventCreateOrUpdatePatient            Event = "CreateOrUpdatePatient"
	EventCreateOrUpdatePractitioner       Event = "CreateOrUpdatePractitioner"
	EventCreateOrUpdateRelatedPerson      Event = "CreateOrUpdateRelatedPerson"
	EventCreateOrUpdateUserMessage        Event = "CreateOrUpdateUserMessage"
	EventCreateOrUpdateActivityDefinition Event = "CreateOrUpdateActivityDefinition"
	EventCreateOrUpdateCareTeam           Event = "CreateOrUpdateCareTeam"
)

var eventFocusKinds = map[Event]string{
	EventCreateOrUpdateCarePlan:           constvars.ResourceCarePlan,
	EventUpdateCarePlanActivityStatus:     constvars.OtherCarePlanActivityStatus,
	EventCreateOrUpdatePatient:            constvars.ResourcePatient,
	EventCreateOrUpdatePractitioner:       constvars.ResourcePractitioner,
	EventCreateOrUpdateRelatedPerson:      constvars.ResourceRelatedPerson,
	EventCreateOrUpdateUserMessage:        constvars.OtherUserMessage,
	EventCreateOrUpdateActivityDefinition: constvars.OtherActivityDefinition,
	EventCreateOrUpdateCareTeam:           constvars.OtherCareTeam,
}

func Events() []Event {
	return []Event{
		EventCreateOrUpdateCarePlan,
		EventUpdateCarePlanActivityStatus,
		EventCreateOrUpdatePatient,
		EventCreateOrUpdatePractitioner,
		EventCreateOrUpdateRelatedPerson,
		EventCreateOrUpdateUserMessage,
		EventCreateOrUpdateActivityDefinition,
		EventCreateOrUpdateCareTeam,
	}
}

func (e Event) IsValid() bool {
	_, ok := eventFocusKinds[e]
	return ok
}

// FocusKind is the resource kind that becomes the header's focus.
func (e Event) FocusKind() string {
	return eventFocusKinds[e]
}

func (e Event) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemMessageEvents, Code: string(e), Display: string(e)}
}

// ProcessingStatus is the server-owned lifecycle state of a message header.
type ProcessingStatus string

const (
	ProcessingStatusNew     ProcessingStatus = "New"
	ProcessingStatusClaimed ProcessingStatus = "Claimed"
	ProcessingStatusSuccess ProcessingStatus = "Success"
	ProcessingStatusFailed  ProcessingStatus = "Failed"
)

var processingStatusEdges = map[ProcessingStatus][]ProcessingStatus{
	ProcessingStatusNew:     {ProcessingStatusClaimed},
	ProcessingStatusClaimed: {ProcessingStatusSuccess, ProcessingStatusFailed},
}

func (s ProcessingStatus) IsValid() bool {
	switch s {
	case ProcessingStatusNew, ProcessingStatusClaimed, ProcessingStatusSuccess, ProcessingStatusFailed:
		return true
	}
	return false
}

func (s ProcessingStatus) IsTerminal() bool {
	return s == ProcessingStatusSuccess || s == ProcessingStatusFailed
}

// CanTransitionTo reports whether s -> target is an edge of the claim state
// machine.
func (s ProcessingStatus) CanTransitionTo(target ProcessingStatus) bool {
	for _, next := range processingStatusEdges[s] {
		if next == target {
			return true
		}
	}
	return false
}

type ActivityKind string

const (
	ActivityKindGame                     ActivityKind = "Game"
	ActivityKindELearning                ActivityKind = "ELearning"
	ActivityKindQuestionnaire            ActivityKind = "Questionnaire"
	ActivityKindMeeting                  ActivityKind = "Meeting"
	ActivityKindSupportSession           ActivityKind = "SupportSession"
	ActivityKindMultipleActivityTemplate ActivityKind = "MultipleActivityTemplate"
)

var activityKindDisplays = map[ActivityKind]string{
	ActivityKindGame:                     "Game",
	ActivityKindELearning:                "E-Learning",
	ActivityKindQuestionnaire:            "Questionnaire",
	ActivityKindMeeting:                  "Meeting",
	ActivityKindSupportSession:           "Support session",
	ActivityKindMultipleActivityTemplate: "Multiple activity template",
}

func (k ActivityKind) IsValid() bool {
	_, ok := activityKindDisplays[k]
	return ok
}

func (k ActivityKind) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemActivityKind, Code: string(k), Display: activityKindDisplays[k]}
}

type ActivityPerformer string

const (
	ActivityPerformerPatient       ActivityPerformer = "Patient"
	ActivityPerformerPractitioner  ActivityPerformer = "Practitioner"
	ActivityPerformerRelatedPerson ActivityPerformer = "RelatedPerson"
)

func (p ActivityPerformer) IsValid() bool {
	switch p {
	case ActivityPerformerPatient, ActivityPerformerPractitioner, ActivityPerformerRelatedPerson:
		return true
	}
	return false
}

func (p ActivityPerformer) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemActivityPerformer, Code: string(p), Display: string(p)}
}

type CarePlanActivityStatus string

const (
	ActivityStatusWaiting               CarePlanActivityStatus = "Waiting"
	ActivityStatusAvailable             CarePlanActivityStatus = "Available"
	ActivityStatusInProgress            CarePlanActivityStatus = "InProgress"
	ActivityStatusCompleted             CarePlanActivityStatus = "Completed"
	ActivityStatusCancelled             CarePlanActivityStatus = "Cancelled"
	ActivityStatusExpired               CarePlanActivityStatus = "Expired"
	ActivityStatusSkippedByPractitioner CarePlanActivityStatus = "SkippedByPractitioner"
)

func (s CarePlanActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusWaiting, ActivityStatusAvailable, ActivityStatusInProgress, ActivityStatusCompleted,
		ActivityStatusCancelled, ActivityStatusExpired, ActivityStatusSkippedByPractitioner:
		return true
	}
	return false
}

func (s CarePlanActivityStatus) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemActivityStatus, Code: string(s), Display: string(s)}
}

type CarePlanParticipantRole string

const (
	ParticipantRoleCaregiver  CarePlanParticipantRole = "Caregiver"
	ParticipantRoleRequester  CarePlanParticipantRole = "Requester"
	ParticipantRoleSupervisor CarePlanParticipantRole = "Supervisor"
	ParticipantRoleThirdparty CarePlanParticipantRole = "Thirdparty"
	ParticipantRoleClient     CarePlanParticipantRole = "Client"
	ParticipantRoleAssigner   CarePlanParticipantRole = "Assigner"
)

func (r CarePlanParticipantRole) IsValid() bool {
	switch r {
	case ParticipantRoleCaregiver, ParticipantRoleRequester, ParticipantRoleSupervisor,
		ParticipantRoleThirdparty, ParticipantRoleClient, ParticipantRoleAssigner:
		return true
	}
	return false
}

func (r CarePlanParticipantRole) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemParticipantRole, Code: string(r), Display: string(r)}
}

type CareTeamStatus string

const (
	CareTeamStatusProposed       CareTeamStatus = "proposed"
	CareTeamStatusActive         CareTeamStatus = "active"
	CareTeamStatusSuspended      CareTeamStatus = "suspended"
	CareTeamStatusInactive       CareTeamStatus = "inactive"
	CareTeamStatusEnteredInError CareTeamStatus = "entered-in-error"
)

func (s CareTeamStatus) IsValid() bool {
	switch s {
	case CareTeamStatusProposed, CareTeamStatusActive, CareTeamStatusSuspended,
		CareTeamStatusInactive, CareTeamStatusEnteredInError:
		return true
	}
	return false
}

func (s CareTeamStatus) Coding() fhir_dto.Coding {
	return fhir_dto.Coding{System: constvars.SystemCareTeamStatus, Code: string(s), Display: string(s)}
}

type MessageKind string

const (
	MessageKindNotification MessageKind = "Notification"
	MessageKindReminder     MessageKind = "Reminder"
)

func (k MessageKind) IsValid() bool {
	return k == MessageKindNotification || k == MessageKindReminder
}

func (k MessageKind) Concept() fhir_dto.CodeableConcept {
	return fhir_dto.CodeableConcept{
		Coding: []fhir_dto.Coding{{System: constvars.SystemMessageKind, Code: string(k), Display: string(k)}},
	}
}

type CarePlanStatus string

const (
	CarePlanStatusPlanned   CarePlanStatus = "planned"
	CarePlanStatusActive    CarePlanStatus = "active"
	CarePlanStatusCompleted CarePlanStatus = "completed"
)

func (s CarePlanStatus) IsValid() bool {
	return s == CarePlanStatusPlanned || s == CarePlanStatusActive || s == CarePlanStatusCompleted
}

type Gender string

const (
	GenderMale             Gender = "M"
	GenderFemale           Gender = "F"
	GenderUndifferentiated Gender = "UN"
	GenderUnknown          Gender = "UNK"
)

var genderDisplays = map[Gender]string{
	GenderMale:             "Male",
	GenderFemale:           "Female",
	GenderUndifferentiated: "Undifferentiated",
	GenderUnknown:          "Unknown",
}

func (g Gender) Concept() fhir_dto.CodeableConcept {
	return fhir_dto.CodeableConcept{
		Coding: []fhir_dto.Coding{{System: constvars.SystemAdministrativeGender, Code: string(g), Display: genderDisplays[g]}},
	}
}
