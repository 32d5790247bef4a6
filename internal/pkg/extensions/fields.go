package extensions

import "strconv"

const (
	ownerCarePlan               = "CarePlan"
	ownerActivityDefinition     = "ActivityDefinition"
	ownerCarePlanActivityStatus = "CarePlanActivityStatus"
	ownerUserMessage            = "UserMessage"
	ownerCareTeam               = "CareTeam"
	ownerPatient                = "Patient"
	ownerRelatedPerson          = "RelatedPerson"
	ownerMessageHeader          = "MessageHeader"
)

// CarePlan
var (
	CarePlanActivity              = GroupField{Field{ownerCarePlan, "Activity"}}
	CarePlanActivityIdentifier    = StringField{Field{ownerCarePlan, "ActivityIdentifier"}}
	CarePlanActivityDefinition    = StringField{Field{ownerCarePlan, "ActivityDefinition"}}
	CarePlanActivityKind          = CodingField{Field{ownerCarePlan, "ActivityKind"}}
	CarePlanActivityDescription   = StringField{Field{ownerCarePlan, "Description"}}
	CarePlanActivityStartDate     = DateTimeField{Field{ownerCarePlan, "StartDate"}}
	CarePlanActivityEndDate       = DateTimeField{Field{ownerCarePlan, "EndDate"}}
	CarePlanActivityStatus        = CodingField{Field{ownerCarePlan, "ActivityStatus"}}
	CarePlanParticipant           = GroupField{Field{ownerCarePlan, "Participant"}}
	CarePlanParticipantMember     = ReferenceField{Field{ownerCarePlan, "ParticipantMember"}}
	CarePlanParticipantRole       = CodingField{Field{ownerCarePlan, "ParticipantRole"}}
	CarePlanParticipantCareTeam   = ReferenceField{Field{ownerCarePlan, "ParticipantCareTeam"}}
	CarePlanSubActivity           = GroupField{Field{ownerCarePlan, "SubActivity"}}
	CarePlanSubActivityIdentifier = StringField{Field{ownerCarePlan, "SubActivityIdentifier"}}
	CarePlanSubActivityStatus     = CodingField{Field{ownerCarePlan, "SubActivityStatus"}}
	CarePlanGoal                  = GroupField{Field{ownerCarePlan, "Goal"}}
	CarePlanGoalIdentifier        = StringField{Field{ownerCarePlan, "GoalIdentifier"}}
	CarePlanGoalDescription       = StringField{Field{ownerCarePlan, "GoalDescription"}}
	CarePlanGoalStatus            = CodingField{Field{ownerCarePlan, "GoalStatus"}}
	CarePlanGoalNotes             = StringField{Field{ownerCarePlan, "GoalNotes"}}
	CarePlanCareTeam              = ReferenceField{Field{ownerCarePlan, "CareTeam"}}
)

// ActivityDefinition
var (
	ActivityDefinitionIdentifier       = StringField{Field{ownerActivityDefinition, "ActivityDefinitionIdentifier"}}
	ActivityDefinitionName             = StringField{Field{ownerActivityDefinition, "ActivityName"}}
	ActivityDefinitionDescription      = StringField{Field{ownerActivityDefinition, "ActivityDescription"}}
	ActivityDefinitionKind             = CodingField{Field{ownerActivityDefinition, "ActivityKind"}}
	ActivityDefinitionApplication      = ReferenceField{Field{ownerActivityDefinition, "Application"}}
	ActivityDefinitionDefaultPerformer = CodingField{Field{ownerActivityDefinition, "DefaultPerformer"}}
	ActivityDefinitionIsActive         = BoolField{Field{ownerActivityDefinition, "IsActive"}}
	ActivityDefinitionIsDomainSpecific = BoolField{Field{ownerActivityDefinition, "IsDomainSpecific"}}
	ActivityDefinitionIsArchived       = BoolField{Field{ownerActivityDefinition, "IsArchived"}}
	ActivityDefinitionSubActivity      = GroupField{Field{ownerActivityDefinition, "SubActivity"}}
	SubActivityDefinitionName          = StringField{Field{ownerActivityDefinition, "SubActivityName"}}
	SubActivityDefinitionIdentifier    = StringField{Field{ownerActivityDefinition, "SubActivityIdentifier"}}
	SubActivityDefinitionDescription   = StringField{Field{ownerActivityDefinition, "SubActivityDescription"}}
	SubActivityDefinitionIsActive      = BoolField{Field{ownerActivityDefinition, "SubActivityIsActive"}}
)

// CarePlanActivityStatus
var (
	ActivityStatusActivity            = StringField{Field{ownerCarePlanActivityStatus, "Activity"}}
	ActivityStatusStatus              = CodingField{Field{ownerCarePlanActivityStatus, "ActivityStatus"}}
	ActivityStatusPercentageCompleted = IntField{Field{ownerCarePlanActivityStatus, "PercentageCompleted"}}
	ActivityStatusSubActivity         = GroupField{Field{ownerCarePlanActivityStatus, "SubActivity"}}
	ActivityStatusSubActivityID       = StringField{Field{ownerCarePlanActivityStatus, "SubActivityIdentifier"}}
	ActivityStatusSubActivityStatus   = CodingField{Field{ownerCarePlanActivityStatus, "SubActivityStatus"}}
)

// UserMessage
var (
	UserMessageFrom        = ReferenceField{Field{ownerUserMessage, "From"}}
	UserMessageTo          = ReferenceField{Field{ownerUserMessage, "To"}}
	UserMessageMessageKind = ConceptField{Field{ownerUserMessage, "MessageKind"}}
	UserMessageSubject     = StringField{Field{ownerUserMessage, "SubjectString"}}
	UserMessageContent     = StringField{Field{ownerUserMessage, "Content"}}
	UserMessageContext     = URIField{Field{ownerUserMessage, "Context"}}
)

// CareTeam
var (
	CareTeamStatus               = CodingField{Field{ownerCareTeam, "Status"}}
	CareTeamName                 = StringField{Field{ownerCareTeam, "Name"}}
	CareTeamPeriod               = PeriodField{Field{ownerCareTeam, "Period"}}
	CareTeamSubject              = ReferenceField{Field{ownerCareTeam, "Subject"}}
	CareTeamManagingOrganization = ReferenceField{Field{ownerCareTeam, "ManagingOrganization"}}
)

// Patient, RelatedPerson
var (
	PatientAge       = IntField{Field{ownerPatient, "Age"}}
	RelatedPersonAge = IntField{Field{ownerRelatedPerson, "Age"}}
)

// MessageHeader
var (
	MessageHeaderPatient              = ReferenceField{Field{ownerMessageHeader, "Patient"}}
	MessageHeaderProcessingStatus     = GroupField{Field{ownerMessageHeader, "ProcessingStatus"}}
	ProcessingStatusStatus            = CodeField{Field{ownerMessageHeader, "ProcessingStatusStatus"}}
	ProcessingStatusStatusLastChanged = DateTimeField{Field{ownerMessageHeader, "ProcessingStatusStatusLastChanged"}}
	ProcessingStatusException         = StringField{Field{ownerMessageHeader, "ProcessingStatusException"}}
)

// All lists every registered field.
func All() []Field {
	return []Field{
		CarePlanActivity.Field, CarePlanActivityIdentifier.Field, CarePlanActivityDefinition.Field,
		CarePlanActivityKind.Field, CarePlanActivityDescription.Field, CarePlanActivityStartDate.Field,
		CarePlanActivityEndDate.Field, CarePlanActivityStatus.Field, CarePlanParticipant.Field,
		CarePlanParticipantMember.Field, CarePlanParticipantRole.Field, CarePlanParticipantCareTeam.Field,
		CarePlanSubActivity.Field, CarePlanSubActivityIdentifier.Field, CarePlanSubActivityStatus.Field,
		CarePlanGoal.Field, CarePlanGoalIdentifier.Field, CarePlanGoalDescription.Field,
		CarePlanGoalStatus.Field, CarePlanGoalNotes.Field, CarePlanCareTeam.Field,

		ActivityDefinitionIdentifier.Field, ActivityDefinitionName.Field, ActivityDefinitionDescription.Field,
		ActivityDefinitionKind.Field, ActivityDefinitionApplication.Field, ActivityDefinitionDefaultPerformer.Field,
		ActivityDefinitionIsActive.Field, ActivityDefinitionIsDomainSpecific.Field, ActivityDefinitionIsArchived.Field,
		ActivityDefinitionSubActivity.Field, SubActivityDefinitionName.Field, SubActivityDefinitionIdentifier.Field,
		SubActivityDefinitionDescription.Field, SubActivityDefinitionIsActive.Field,

		ActivityStatusActivity.Field, ActivityStatusStatus.Field, ActivityStatusPercentageCompleted.Field,
		ActivityStatusSubActivity.Field, ActivityStatusSubActivityID.Field, ActivityStatusSubActivityStatus.Field,

		UserMessageFrom.Field, UserMessageTo.Field, UserMessageMessageKind.Field,
		UserMessageSubject.Field, UserMessageContent.Field, UserMessageContext.Field,

		CareTeamStatus.Field, CareTeamName.Field, CareTeamPeriod.Field,
		CareTeamSubject.Field, CareTeamManagingOrganization.Field,

		PatientAge.Field, RelatedPersonAge.Field,

		MessageHeaderPatient.Field, MessageHeaderProcessingStatus.Field, ProcessingStatusStatus.Field,
		ProcessingStatusStatusLastChanged.Field, ProcessingStatusException.Field,
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
