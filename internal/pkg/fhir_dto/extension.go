package fhir_dto

import (
	"sort"
	"strconv"
)

// Extension carries one url/value pair. Exactly one value[x] is set, or
// none when the extension only groups nested extensions.
type Extension struct {
	URL                  string           `json:"url"`
	ID                   string           `json:"id,omitempty"`
	ValueString          *string          `json:"valueString,omitempty"`
	ValueCode            *string          `json:"valueCode,omitempty"`
	ValueURI             *string          `json:"valueUri,omitempty"`
	ValueBoolean         *bool            `json:"valueBoolean,omitempty"`
	ValueInteger         *int             `json:"valueInteger,omitempty"`
	ValueDateTime        *string          `json:"valueDateTime,omitempty"`
	ValueCoding          *Coding          `json:"valueCoding,omitempty"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty"`
	ValueReference       *Reference       `json:"valueResource,omitempty"`
	ValuePeriod          *Period          `json:"valuePeriod,omitempty"`
	Extension            Extensions       `json:"extension,omitempty"`
}

func (e *Extension) ExtensionList() *Extensions {
	return &e.Extension
}

// Extendable is anything that owns an extension list: resources and
// grouping extensions alike.
type Extendable interface {
	ExtensionList() *Extensions
}

type Extensions []Extension

// Find returns the extension with the given url and element id.
func (x Extensions) Find(url, id string) (*Extension, bool) {
	for i := range x {
		if x[i].URL == url && x[i].ID == id {
			return &x[i], true
		}
	}
	return nil, false
}

// Set replaces the extension sharing url and id with ext, or appends it.
func (x *Extensions) Set(ext Extension) {
	for i := range *x {
		if (*x)[i].URL == ext.URL && (*x)[i].ID == ext.ID {
			(*x)[i] = ext
			return
		}
	}
	*x = append(*x, ext)
}

func (x *Extensions) Remove(url, id string) bool {
	for i := range *x {
		if (*x)[i].URL == url && (*x)[i].ID == id {
			*x = append((*x)[:i], (*x)[i+1:]...)
			return true
		}
	}
	return false
}

// Indexed returns every extension with url, ordered by the numeric element
// id that carries the sibling index. Items without a numeric id sort last in
// document order.
func (x Extensions) Indexed(url string) []*Extension {
	var items []*Extension
	for i := range x {
		if x[i].URL == url {
			items = append(items, &x[i])
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		return indexOf(items[a]) < indexOf(items[b])
	})
	return items
}

// Count returns how many extensions share url.
func (x Extensions) Count(url string) int {
	n := 0
	for i := range x {
		if x[i].URL == url {
			n++
		}
	}
	return n
}

func indexOf(e *Extension) int {
	n, err := strconv.Atoi(e.ID)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
