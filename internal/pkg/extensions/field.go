// Package extensions maps the closed set of koppeltaal extension fields onto
// typed accessors. Every field knows its owning resource kind and name, so
// urls are derived rather than spelled out at call sites.
package extensions

import (
	"koppeltaal-service/internal/pkg/fhir_dto"
)

// Namespace is the base url extension urls are minted under.
type Namespace string

type Field struct {
	owner string
	name  string
}

func (f Field) Owner() string { return f.owner }
func (f Field) Name() string  { return f.name }

// URL returns {namespace}/{Owner}#{Name}.
func (f Field) URL(ns Namespace) string {
	return string(ns) + "/" + f.owner + "#" + f.name
}

func (f Field) Has(ns Namespace, e fhir_dto.Extendable) bool {
	_, ok := e.ExtensionList().Find(f.URL(ns), "")
	return ok
}

func (f Field) Clear(ns Namespace, e fhir_dto.Extendable) {
	e.ExtensionList().Remove(f.URL(ns), "")
}

func (f Field) find(ns Namespace, e fhir_dto.Extendable) (*fhir_dto.Extension, bool) {
	return e.ExtensionList().Find(f.URL(ns), "")
}

func (f Field) set(ns Namespace, e fhir_dto.Extendable, ext fhir_dto.Extension) {
	ext.URL = f.URL(ns)
	e.ExtensionList().Set(ext)
}

type StringField struct{ Field }

func (f StringField) Get(ns Namespace, e fhir_dto.Extendable) (string, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueString == nil {
		return "", false
	}
	return *ext.ValueString, true
}

func (f StringField) Set(ns Namespace, e fhir_dto.Extendable, v string) {
	f.set(ns, e, fhir_dto.Extension{ValueString: &v})
}

type CodeField struct{ Field }

func (f CodeField) Get(ns Namespace, e fhir_dto.Extendable) (string, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueCode == nil {
		return "", false
	}
	return *ext.ValueCode, true
}

func (f CodeField) Set(ns Namespace, e fhir_dto.Extendable, v string) {
	f.set(ns, e, fhir_dto.Extension{ValueCode: &v})
}

type URIField struct{ Field }

func (f URIField) Get(ns Namespace, e fhir_dto.Extendable) (string, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueURI == nil {
		return "", false
	}
	return *ext.ValueURI, true
}

func (f URIField) Set(ns Namespace, e fhir_dto.Extendable, v string) {
	f.set(ns, e, fhir_dto.Extension{ValueURI: &v})
}

type BoolField struct{ Field }

func (f BoolField) Get(ns Namespace, e fhir_dto.Extendable) (bool, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueBoolean == nil {
		return false, false
	}
	return *ext.ValueBoolean, true
}

func (f BoolField) Set(ns Namespace, e fhir_dto.Extendable, v bool) {
	f.set(ns, e, fhir_dto.Extension{ValueBoolean: &v})
}

type IntField struct{ Field }

func (f IntField) Get(ns Namespace, e fhir_dto.Extendable) (int, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueInteger == nil {
		return 0, false
	}
	return *ext.ValueInteger, true
}

func (f IntField) Set(ns Namespace, e fhir_dto.Extendable, v int) {
	f.set(ns, e, fhir_dto.Extension{ValueInteger: &v})
}

type DateTimeField struct{ Field }

func (f DateTimeField) Get(ns Namespace, e fhir_dto.Extendable) (string, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueDateTime == nil {
		return "", false
	}
	return *ext.ValueDateTime, true
}

func (f DateTimeField) Set(ns Namespace, e fhir_dto.Extendable, v string) {
	f.set(ns, e, fhir_dto.Extension{ValueDateTime: &v})
}

type CodingField struct{ Field }

func (f CodingField) Get(ns Namespace, e fhir_dto.Extendable) (fhir_dto.Coding, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueCoding == nil {
		return fhir_dto.Coding{}, false
	}
	return *ext.ValueCoding, true
}

func (f CodingField) Set(ns Namespace, e fhir_dto.Extendable, v fhir_dto.Coding) {
	f.set(ns, e, fhir_dto.Extension{ValueCoding: &v})
}

type ConceptField struct{ Field }

func (f ConceptField) Get(ns Namespace, e fhir_dto.Extendable) (fhir_dto.CodeableConcept, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueCodeableConcept == nil {
		return fhir_dto.CodeableConcept{}, false
	}
	return *ext.ValueCodeableConcept, true
}

func (f ConceptField) Set(ns Namespace, e fhir_dto.Extendable, v fhir_dto.CodeableConcept) {
	f.set(ns, e, fhir_dto.Extension{ValueCodeableConcept: &v})
}

type ReferenceField struct{ Field }

func (f ReferenceField) Get(ns Namespace, e fhir_dto.Extendable) (fhir_dto.Reference, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValueReference == nil {
		return fhir_dto.Reference{}, false
	}
	return *ext.ValueReference, true
}

func (f ReferenceField) Set(ns Namespace, e fhir_dto.Extendable, v fhir_dto.Reference) {
	f.set(ns, e, fhir_dto.Extension{ValueReference: &v})
}

type PeriodField struct{ Field }

func (f PeriodField) Get(ns Namespace, e fhir_dto.Extendable) (fhir_dto.Period, bool) {
	ext, ok := f.find(ns, e)
	if !ok || ext.ValuePeriod == nil {
		return fhir_dto.Period{}, false
	}
	return *ext.ValuePeriod, true
}

func (f PeriodField) Set(ns Namespace, e fhir_dto.Extendable, v fhir_dto.Period) {
	f.set(ns, e, fhir_dto.Extension{ValuePeriod: &v})
}

// GroupField is an extension that only nests other extensions. A group is
// either a single container (Get/Set) or a list whose items carry their
// zero-based sibling index as element id (Add/Items).
type GroupField struct{ Field }

func (f GroupField) Get(ns Namespace, e fhir_dto.Extendable) (*fhir_dto.Extension, bool) {
	return f.find(ns, e)
}

func (f GroupField) Set(ns Namespace, e fhir_dto.Extendable, group fhir_dto.Extension) {
	group.ID = ""
	f.set(ns, e, group)
}

// Add appends item as the next list element and returns its index.
func (f GroupField) Add(ns Namespace, e fhir_dto.Extendable, item fhir_dto.Extension) int {
	index := e.ExtensionList().Count(f.URL(ns))
	item.URL = f.URL(ns)
	item.ID = itoa(index)
	e.ExtensionList().Set(item)
	return index
}

func (f GroupField) Items(ns Namespace, e fhir_dto.Extendable) []*fhir_dto.Extension {
	return e.ExtensionList().Indexed(f.URL(ns))
}
