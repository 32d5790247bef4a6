package bundles

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/requests"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

func validate(params interface{}) error {
	if err := utils.ValidateStruct(params); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	return nil
}

func (b *Builder) AddCarePlan(p requests.CarePlanParams) error {
	if err := validate(p); err != nil {
		return err
	}

	res := &fhir_dto.Resource{ResourceType: constvars.ResourceCarePlan, Status: string(p.Status)}
	if p.Patient != "" {
		res.Patient = &fhir_dto.Reference{Reference: p.Patient}
	}
	if p.CareTeam != "" {
		extensions.CarePlanCareTeam.Set(b.cfg.Namespace, res, fhir_dto.Reference{Reference: p.CareTeam})
	}

	index, err := b.add(constvars.ResourceCarePlan, constvars.ResourceCarePlan, p.ResourceParams, res)
	if err != nil {
		return err
	}
	for _, goal := range p.Goals {
		b.addNode(node{kind: nodeGoal, entry: index, parent: -1, goal: goal})
	}
	for _, activity := range p.Activities {
		b.attachActivity(index, activity)
	}
	for _, participant := range p.Participants {
		b.addNode(node{kind: nodeParticipant, entry: index, parent: -1, participant: participant})
	}
	return nil
}

func (b *Builder) AddGoal(carePlanID string, p requests.GoalParams) error {
	if err := validate(p); err != nil {
		return err
	}
	index, err := b.parent(constvars.ResourceCarePlan, carePlanID)
	if err != nil {
		return err
	}
	b.addNode(node{kind: nodeGoal, entry: index, parent: -1, goal: p})
	return nil
}

func (b *Builder) AddActivity(carePlanID string, p requests.ActivityParams) error {
	if err := validate(p); err != nil {
		return err
	}
	index, err := b.parent(constvars.ResourceCarePlan, carePlanID)
	if err != nil {
		return err
	}
	b.attachActivity(index, p)
	return nil
}

// AddParticipant adds a participant to the care plan itself rather than to
// one of its activities.
func (b *Builder) AddParticipant(carePlanID string, p requests.ParticipantParams) error {
	if err := validate(p); err != nil {
		return err
	}
	index, err := b.parent(constvars.ResourceCarePlan, carePlanID)
	if err != nil {
		return err
	}
	b.addNode(node{kind: nodeParticipant, entry: index, parent: -1, participant: p})
	return nil
}

func (b *Builder) attachActivity(entryIndex int, p requests.ActivityParams) {
	b.addNode(node{kind: nodeActivity, entry: entryIndex, parent: -1, activity: p})
	parent := len(b.nodes) - 1
	for _, participant := range p.Participants {
		b.addNode(node{kind: nodeParticipant, entry: entryIndex, parent: parent, participant: participant})
	}
	for _, sub := range p.SubActivities {
		b.addNode(node{kind: nodeSubActivity, entry: entryIndex, parent: parent, subActivity: sub})
	}
}

func (b *Builder) AddPatient(p requests.PatientParams) error {
	if err := validate(p); err != nil {
		return err
	}

	res := &fhir_dto.Resource{
		ResourceType: constvars.ResourcePatient,
		Name:         humanName(p.Name),
		Telecom:      contactPoints(p.Telecom),
	}
	if p.Gender != "" {
		gender := p.Gender.Concept()
		res.Gender = &gender
	}
	if p.BirthDate != nil {
		res.BirthDate = p.BirthDate.Format(dateFormat)
	}
	if p.Age != nil {
		extensions.PatientAge.Set(b.cfg.Namespace, res, *p.Age)
	}
	_, err := b.add(constvars.ResourcePatient, constvars.ResourcePatient, p.ResourceParams, res)
	return err
}

func (b *Builder) AddPractitioner(p requests.PractitionerParams) error {
	if err := validate(p); err != nil {
		return err
	}

	res := &fhir_dto.Resource{
		ResourceType: constvars.ResourcePractitioner,
		Name:         humanName(p.Name),
		Telecom:      contactPoints(p.Telecom),
	}
	_, err := b.add(constvars.ResourcePractitioner, constvars.ResourcePractitioner, p.ResourceParams, res)
	return err
}

func (b *Builder) AddRelatedPerson(p requests.RelatedPersonParams) error {
	if err := validate(p); err != nil {
		return err
	}

	res := &fhir_dto.Resource{
		ResourceType: constvars.ResourceRelatedPerson,
		Name:         humanName(p.Name),
		Telecom:      contactPoints(p.Telecom),
	}
	if p.Patient != "" {
		res.Patient = &fhir_dto.Reference{Reference: p.Patient}
	}
	if p.Relationship != "" {
		res.Relationship = &fhir_dto.CodeableConcept{
			Coding: []fhir_dto.Coding{{System: constvars.SystemPatientRelationship, Code: p.Relationship, Display: p.Relationship}},
		}
	}
	if p.Gender != "" {
		gender := p.Gender.Concept()
		res.Gender = &gender
	}
	if p.Age != nil {
		extensions.RelatedPersonAge.Set(b.cfg.Namespace, res, *p.Age)
	}
	_, err := b.add(constvars.ResourceRelatedPerson, constvars.ResourceRelatedPerson, p.ResourceParams, res)
	return err
}

func (b *Builder) AddCareTeam(p requests.CareTeamParams) error {
	if err := validate(p); err != nil {
		return err
	}

	ns := b.cfg.Namespace
	res := &fhir_dto.Resource{}
	if p.Identifier != "" {
		res.Identifier = []fhir_dto.Identifier{{Value: p.Identifier}}
	}
	extensions.CareTeamStatus.Set(ns, res, p.Status.Coding())
	if p.Name != "" {
		extensions.CareTeamName.Set(ns, res, p.Name)
	}
	if p.Period != nil {
		extensions.CareTeamPeriod.Set(ns, res, period(p.Period.Start, p.Period.End))
	}
	if p.Subject != "" {
		extensions.CareTeamSubject.Set(ns, res, fhir_dto.Reference{Reference: p.Subject})
	}
	if p.ManagingOrganization != "" {
		extensions.CareTeamManagingOrganization.Set(ns, res, fhir_dto.Reference{Reference: p.ManagingOrganization})
	}
	_, err := b.addOther(constvars.OtherCareTeam, p.ResourceParams, res)
	return err
}

// AddActivityDefinition registers an activity definition owned by the
// configured application.
func (b *Builder) AddActivityDefinition(p requests.ActivityDefinitionParams) error {
	if err := validate(p); err != nil {
		return err
	}

	ns := b.cfg.Namespace
	res := &fhir_dto.Resource{}
	extensions.ActivityDefinitionIdentifier.Set(ns, res, p.Identifier)
	extensions.ActivityDefinitionName.Set(ns, res, p.Name)
	if p.Description != "" {
		extensions.ActivityDefinitionDescription.Set(ns, res, p.Description)
	}
	extensions.ActivityDefinitionKind.Set(ns, res, p.Kind.Coding())
	extensions.ActivityDefinitionApplication.Set(ns, res, b.cfg.ApplicationReference())
	if p.DefaultPerformer != "" {
		extensions.ActivityDefinitionDefaultPerformer.Set(ns, res, p.DefaultPerformer.Coding())
	}
	extensions.ActivityDefinitionIsActive.Set(ns, res, p.IsActive)
	extensions.ActivityDefinitionIsDomainSpecific.Set(ns, res, p.IsDomainSpecific)
	extensions.ActivityDefinitionIsArchived.Set(ns, res, p.IsArchived)

	index, err := b.addOther(constvars.OtherActivityDefinition, p.ResourceParams, res)
	if err != nil {
		return err
	}
	for _, sub := range p.SubActivities {
		b.addNode(node{kind: nodeSubActivityDefinition, entry: index, parent: -1, subDefinition: sub})
	}
	return nil
}

func (b *Builder) AddSubActivityDefinition(activityDefinitionID string, p requests.SubActivityDefinitionParams) error {
	if err := validate(p); err != nil {
		return err
	}
	index, err := b.parent(constvars.OtherActivityDefinition, activityDefinitionID)
	if err != nil {
		return err
	}
	b.addNode(node{kind: nodeSubActivityDefinition, entry: index, parent: -1, subDefinition: p})
	return nil
}

func (b *Builder) AddActivityStatus(p requests.ActivityStatusParams) error {
	if err := validate(p); err != nil {
		return err
	}

	ns := b.cfg.Namespace
	res := &fhir_dto.Resource{}
	extensions.ActivityStatusActivity.Set(ns, res, p.Activity)
	extensions.ActivityStatusStatus.Set(ns, res, p.Status.Coding())
	if p.PercentageCompleted != nil {
		extensions.ActivityStatusPercentageCompleted.Set(ns, res, *p.PercentageCompleted)
	}

	index, err := b.addOther(constvars.OtherCarePlanActivityStatus, p.ResourceParams, res)
	if err != nil {
		return err
	}
	for _, sub := range p.SubActivities {
		b.addNode(node{kind: nodeSubActivityStatus, entry: index, parent: -1, subActivity: sub})
	}
	return nil
}

func (b *Builder) AddUserMessage(p requests.UserMessageParams) error {
	if err := validate(p); err != nil {
		return err
	}

	ns := b.cfg.Namespace
	res := &fhir_dto.Resource{}
	extensions.UserMessageFrom.Set(ns, res, fhir_dto.Reference{Reference: p.From})
	extensions.UserMessageTo.Set(ns, res, fhir_dto.Reference{Reference: p.To})
	extensions.UserMessageMessageKind.Set(ns, res, p.Kind.Concept())
	if p.Subject != "" {
		extensions.UserMessageSubject.Set(ns, res, p.Subject)
	}
	if p.Content != "" {
		extensions.UserMessageContent.Set(ns, res, p.Content)
	}
	if p.Context != "" {
		extensions.UserMessageContext.Set(ns, res, p.Context)
	}
	_, err := b.addOther(constvars.OtherUserMessage, p.ResourceParams, res)
	return err
}

func humanName(p requests.NameParams) []fhir_dto.HumanName {
	name := fhir_dto.HumanName{Text: strings.TrimSpace(p.Given + " " + p.Family)}
	if p.Given != "" {
		name.Given = []string{p.Given}
	}
	if p.Family != "" {
		name.Family = []string{p.Family}
	}
	return []fhir_dto.HumanName{name}
}

func contactPoints(params []requests.ContactParams) []fhir_dto.ContactPoint {
	if len(params) == 0 {
		return nil
	}
	points := make([]fhir_dto.ContactPoint, 0, len(params))
	for _, p := range params {
		point := fhir_dto.ContactPoint{System: p.System, Value: p.Value, Use: p.Use}
		if p.Start != nil || p.End != nil {
			pp := period(p.Start, p.End)
			point.Period = &pp
		}
		points = append(points, point)
	}
	return points
}

func period(start, end *time.Time) fhir_dto.Period {
	var p fhir_dto.Period
	if start != nil {
		p.Start = formatDateTime(*start)
	}
	if end != nil {
		p.End = formatDateTime(*end)
	}
	return p
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
