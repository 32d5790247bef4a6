package constvars

const (
	KoppeltaalNamespace        = "http://ggz.koppeltaal.nl/fhir/Koppeltaal"
	KoppeltaalFHIRPath         = "/FHIR/Koppeltaal"
	KoppeltaalMailboxPath      = "/Mailbox"
	KoppeltaalMetadataPath     = "/metadata"
	KoppeltaalLaunchPath       = "/OAuth2/Koppeltaal/Launch"
	KoppeltaalMobileLaunchPath = "/OAuth2/Koppeltaal/MobileLaunch"
	KoppeltaalTokenPath        = "/OAuth2/Koppeltaal/Token"
	KoppeltaalAuthorizePath    = "/OAuth2/Koppeltaal/Authorize"
	KoppeltaalHistorySegment   = "_history"
)

const (
	SystemMessageEvents        = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/MessageEvents"
	SystemOtherResourceUsage   = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/OtherResourceUsage"
	SystemProcessingStatus     = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/ProcessingStatus"
	SystemActivityKind         = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/ActivityKind"
	SystemActivityPerformer    = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/ActivityPerformer"
	SystemActivityStatus       = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/CarePlanActivityStatus"
	SystemParticipantRole      = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/CarePlanParticipantRole"
	SystemCareTeamStatus       = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/CareTeamStatus"
	SystemGoalStatus           = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/GoalStatus"
	SystemMessageKind          = "http://ggz.koppeltaal.nl/fhir/Koppeltaal/UserMessageKind"
	SystemAdministrativeGender = "http://hl7.org/fhir/v3/AdministrativeGender"
	SystemPatientRelationship  = "http://hl7.org/fhir/patient-contact-relationship"
	SystemSMARTOAuthURIs       = "http://fhir-registry.smarthealthit.org/Profile/oauth-uris"
)

const (
	ResourceMessageHeader = "MessageHeader"
	ResourceBundle        = "Bundle"
	ResourceOther         = "Other"
	ResourcePatient       = "Patient"
	ResourcePractitioner  = "Practitioner"
	ResourceRelatedPerson = "RelatedPerson"
	ResourceCarePlan      = "CarePlan"
	ResourceDevice        = "Device"
	ResourceOrganization  = "Organization"

	OtherActivityDefinition     = "ActivityDefinition"
	OtherCarePlanActivityStatus = "CarePlanActivityStatus"
	OtherUserMessage            = "UserMessage"
	OtherCareTeam               = "CareTeam"
)

const (
	BundleTypeMessage   = "message"
	BundleTypeSearchset = "searchset"
	BundleLinkSelf      = "self"
)

const (
	QueryParamSummary          = "_summary"
	QueryParamCount            = "_count"
	QueryParamID               = "_id"
	QueryParamInclude          = "_include"
	QueryParamCode             = "code"
	QueryParamPatient          = "Patient"
	QueryParamEvent            = "event"
	QueryParamProcessingStatus = "ProcessingStatus"
	IncludeMessageHeaderData   = "MessageHeader.data"
)

const (
	OAuthParamClientID     = "client_id"
	OAuthParamRedirectURI  = "redirect_uri"
	OAuthParamLaunch       = "launch"
	OAuthParamState        = "state"
	OAuthParamIss          = "iss"
	OAuthParamCode         = "code"
	OAuthParamGrantType    = "grant_type"
	OAuthParamRefreshToken = "refresh_token"
	OAuthParamError        = "error"

	LaunchParamResource = "resource"
	LaunchParamPatient  = "patient"
	LaunchParamUser     = "user"

	GrantTypeAuthorizationCode = "authorization_code"
	GrantTypeActivationCode    = "activation_code"
	GrantTypeRefreshToken      = "refresh_token"
)

const (
	DefaultClaimAttempts = 3
)
