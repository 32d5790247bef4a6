package bundles

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// renderNodes writes the arena into the entries' extensions. Siblings keep
// insertion order, which is also their element id.
func (b *Builder) renderNodes() {
	for i := range b.nodes {
		if b.nodes[i].parent >= 0 {
			continue
		}
		b.renderNode(i, b.entries[b.nodes[i].entry].resource)
	}
}

func (b *Builder) renderNode(index int, container fhir_dto.Extendable) {
	ns := b.cfg.Namespace
	n := b.nodes[index]
	item := fhir_dto.Extension{}

	var group extensions.GroupField
	switch n.kind {
	case nodeGoal:
		group = extensions.CarePlanGoal
		extensions.CarePlanGoalIdentifier.Set(ns, &item, n.goal.Identifier)
		extensions.CarePlanGoalDescription.Set(ns, &item, n.goal.Description)
		if n.goal.Status != "" {
			extensions.CarePlanGoalStatus.Set(ns, &item, fhir_dto.Coding{System: constvars.SystemGoalStatus, Code: n.goal.Status, Display: n.goal.Status})
		}
		if n.goal.Notes != "" {
			extensions.CarePlanGoalNotes.Set(ns, &item, n.goal.Notes)
		}

	case nodeActivity:
		group = extensions.CarePlanActivity
		a := n.activity
		extensions.CarePlanActivityIdentifier.Set(ns, &item, a.Identifier)
		extensions.CarePlanActivityDefinition.Set(ns, &item, a.Definition)
		kind := fhir_dto.Coding{System: a.Kind.System, Code: a.Kind.Code, Display: a.Kind.Display}
		if kind.System == "" {
			kind.System = constvars.SystemActivityKind
		}
		extensions.CarePlanActivityKind.Set(ns, &item, kind)
		if a.Description != "" {
			extensions.CarePlanActivityDescription.Set(ns, &item, a.Description)
		}
		if a.StartDate != nil {
			extensions.CarePlanActivityStartDate.Set(ns, &item, formatDateTime(*a.StartDate))
		}
		if a.EndDate != nil {
			extensions.CarePlanActivityEndDate.Set(ns, &item, formatDateTime(*a.EndDate))
		}
		if a.Status != "" {
			extensions.CarePlanActivityStatus.Set(ns, &item, fhir_dto.Coding{System: constvars.SystemActivityStatus, Code: a.Status, Display: a.Status})
		}

	case nodeParticipant:
		group = extensions.CarePlanParticipant
		p := n.participant
		extensions.CarePlanParticipantMember.Set(ns, &item, fhir_dto.Reference{Reference: p.Member})
		extensions.CarePlanParticipantRole.Set(ns, &item, p.Role.Coding())
		if p.CareTeam != "" {
			extensions.CarePlanParticipantCareTeam.Set(ns, &item, fhir_dto.Reference{Reference: p.CareTeam})
		}

	case nodeSubActivity:
		group = extensions.CarePlanSubActivity
		extensions.CarePlanSubActivityIdentifier.Set(ns, &item, n.subActivity.Identifier)
		if n.subActivity.Status != "" {
			extensions.CarePlanSubActivityStatus.Set(ns, &item, n.subActivity.Status.Coding())
		}

	case nodeSubActivityStatus:
		group = extensions.ActivityStatusSubActivity
		extensions.ActivityStatusSubActivityID.Set(ns, &item, n.subActivity.Identifier)
		if n.subActivity.Status != "" {
			extensions.ActivityStatusSubActivityStatus.Set(ns, &item, n.subActivity.Status.Coding())
		}

	case nodeSubActivityDefinition:
		group = extensions.ActivityDefinitionSubActivity
		d := n.subDefinition
		extensions.SubActivityDefinitionIdentifier.Set(ns, &item, d.Identifier)
		extensions.SubActivityDefinitionName.Set(ns, &item, d.Name)
		if d.Description != "" {
			extensions.SubActivityDefinitionDescription.Set(ns, &item, d.Description)
		}
		extensions.SubActivityDefinitionIsActive.Set(ns, &item, d.IsActive)
	}

	for child := index + 1; child < len(b.nodes); child++ {
		if b.nodes[child].parent == index {
			b.renderNode(child, &item)
		}
	}
	group.Add(ns, container, item)
}
