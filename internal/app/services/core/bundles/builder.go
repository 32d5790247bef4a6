// Package bundles assembles koppeltaal message bundles: a MessageHeader
// followed by the cross-referenced resources of one event. Resources refer
// to each other by logical id while the bundle is being built; Build turns
// those ids into entry urls and checks the event is complete.
package bundles

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/requests"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
	"koppeltaal-service/internal/pkg/utils"
	"time"
)

type entry struct {
	kind      string
	logicalID string
	locator   resourceurl.ResourceURL
	url       string
	self      string
	resource  *fhir_dto.Resource
}

type nodeKind int

const (
	nodeGoal nodeKind = iota
	nodeActivity
	nodeParticipant
	nodeSubActivity
	nodeSubActivityDefinition
	nodeSubActivityStatus
)

// node is a sub-structure of an entry. parent is the index of the enclosing
// node, or -1 when the node hangs directly off the entry.
type node struct {
	kind   nodeKind
	entry  int
	parent int

	goal          requests.GoalParams
	activity      requests.ActivityParams
	participant   requests.ParticipantParams
	subActivity   requests.SubActivityParams
	subDefinition requests.SubActivityDefinitionParams
}

type Builder struct {
	cfg          Config
	header       requests.MessageHeaderParams
	resourceOnly bool
	entries      []*entry
	refs         map[string]int
	nodes        []node
	finished     bool
}

// NewBuilder starts a message bundle for the given header.
func NewBuilder(cfg Config, header requests.MessageHeaderParams) (*Builder, error) {
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if err := utils.ValidateStruct(header); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if header.Timestamp.IsZero() {
		header.Timestamp = time.Now()
	}
	return &Builder{cfg: cfg, header: header, refs: make(map[string]int)}, nil
}

// NewResourceBuilder starts a builder whose result is a single resource
// posted outside of a message, see BuildResource.
func NewResourceBuilder(cfg Config) (*Builder, error) {
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	return &Builder{cfg: cfg, resourceOnly: true, refs: make(map[string]int)}, nil
}

func (b *Builder) Event() models.Event {
	return b.header.Event
}

// Build resolves every reference, checks the event's requirements and
// returns the message bundle. A builder can be built once.
func (b *Builder) Build() (*fhir_dto.Bundle, error) {
	if b.finished {
		return nil, exceptions.ErrBuilderFinished()
	}
	b.finished = true
	if b.resourceOnly {
		return nil, exceptions.ErrProtocolViolation(nil, "resource builder has no message header")
	}

	b.renderNodes()
	header, err := b.renderHeader()
	if err != nil {
		return nil, err
	}
	all := append([]*entry{header}, b.entries...)
	for _, e := range all {
		if err := b.resolveResource(e); err != nil {
			return nil, err
		}
	}
	if err := b.checkMessage(header.resource); err != nil {
		return nil, err
	}

	bundle := &fhir_dto.Bundle{
		ResourceType: constvars.ResourceBundle,
		ID:           utils.GenerateLogicalID(),
		Type:         constvars.BundleTypeMessage,
		Entry:        make([]fhir_dto.BundleEntry, 0, len(all)),
	}
	for _, e := range all {
		bundle.Entry = append(bundle.Entry, fhir_dto.BundleEntry{
			FullURL:  e.url,
			Link:     []fhir_dto.BundleLink{{Relation: constvars.BundleLinkSelf, URL: e.self}},
			Resource: e.resource,
		})
	}
	return bundle, nil
}

// BuildResource returns the only resource added to the builder, with its
// references resolved, for posting outside of a message.
func (b *Builder) BuildResource() (*fhir_dto.Resource, error) {
	if b.finished {
		return nil, exceptions.ErrBuilderFinished()
	}
	b.finished = true
	if len(b.entries) != 1 {
		return nil, exceptions.ErrProtocolViolation(nil, "a resource build needs exactly one resource")
	}

	b.renderNodes()
	e := b.entries[0]
	if err := b.resolveResource(e); err != nil {
		return nil, err
	}
	if err := b.checkResource(e.kind, e.resource); err != nil {
		return nil, err
	}
	return e.resource, nil
}

func (b *Builder) add(kind, resourceType string, params requests.ResourceParams, res *fhir_dto.Resource) (int, error) {
	if b.finished {
		return 0, exceptions.ErrBuilderFinished()
	}
	if _, dup := b.refs[params.ID]; dup {
		return 0, exceptions.ErrBuilderDuplicateLogicalID(params.ID)
	}

	url, err := resourceurl.Build(b.cfg.BaseURL, resourceType, params.ID, "")
	if err != nil {
		return 0, err
	}
	self, err := resourceurl.Build(b.cfg.BaseURL, resourceType, params.ID, params.Version)
	if err != nil {
		return 0, err
	}

	res.ID = params.ID
	if params.Version != "" {
		res.Meta = &fhir_dto.Meta{VersionId: params.Version}
	}
	b.entries = append(b.entries, &entry{
		kind:      kind,
		logicalID: params.ID,
		locator:   resourceurl.ResourceURL{Base: b.cfg.BaseURL, ResourceType: resourceType, ID: params.ID},
		url:       url,
		self:      self,
		resource:  res,
	})
	index := len(b.entries) - 1
	b.refs[params.ID] = index

	if !b.resourceOnly {
		if b.header.Focus == "" && kind == b.header.Event.FocusKind() {
			b.header.Focus = params.ID
		}
		if b.header.Patient == "" && kind == constvars.ResourcePatient {
			b.header.Patient = params.ID
		}
	}
	return index, nil
}

func (b *Builder) addOther(kind string, params requests.ResourceParams, res *fhir_dto.Resource) (int, error) {
	res.ResourceType = constvars.ResourceOther
	res.Code = &fhir_dto.CodeableConcept{
		Coding: []fhir_dto.Coding{{System: constvars.SystemOtherResourceUsage, Code: kind, Display: kind}},
	}
	return b.add(kind, constvars.ResourceOther, params, res)
}

func (b *Builder) addNode(n node) {
	b.nodes = append(b.nodes, n)
}

// parent finds the entry a child operation attaches to.
func (b *Builder) parent(kind, logicalID string) (int, error) {
	if b.finished {
		return 0, exceptions.ErrBuilderFinished()
	}
	index, ok := b.refs[logicalID]
	if !ok || b.entries[index].kind != kind {
		return 0, exceptions.ErrBuilderUnknownParent(kind, logicalID)
	}
	return index, nil
}

func (b *Builder) renderHeader() (*entry, error) {
	id := utils.GenerateLogicalID()
	url, err := resourceurl.Build(b.cfg.BaseURL, constvars.ResourceMessageHeader, id, "")
	if err != nil {
		return nil, err
	}

	event := b.header.Event.Coding()
	source := b.cfg.Source
	if source.Name == "" {
		source.Name = b.cfg.Domain
	}
	res := &fhir_dto.Resource{
		ResourceType: constvars.ResourceMessageHeader,
		ID:           id,
		Identifier:   []fhir_dto.Identifier{{Value: b.header.MessageID}},
		Timestamp:    b.header.Timestamp.UTC().Format(time.RFC3339),
		Event:        &event,
		Source:       &source,
	}
	if b.header.Focus != "" {
		res.Data = []fhir_dto.Reference{{Reference: b.header.Focus}}
	}
	if b.header.Patient != "" {
		extensions.MessageHeaderPatient.Set(b.cfg.Namespace, res, fhir_dto.Reference{Reference: b.header.Patient})
	}
	return &entry{
		kind:      constvars.ResourceMessageHeader,
		logicalID: id,
		url:       url,
		self:      url,
		resource:  res,
	}, nil
}
