package bundles

import (
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
)

// resolve maps a reference onto the bundle. Logical ids must name an entry
// of this bundle; absolute urls are rewritten when they point at an entry
// and passed through otherwise, as they name resources the server already
// holds.
func (b *Builder) resolve(ref, owner string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !resourceurl.IsAbsolute(ref) {
		index, ok := b.refs[ref]
		if !ok {
			return "", exceptions.ErrBuilderUnresolvedReference(ref, owner)
		}
		return b.entries[index].self, nil
	}

	target, err := resourceurl.Parse(ref)
	if err != nil {
		return "", err
	}
	for _, e := range b.entries {
		if e.locator.SameResource(target) {
			return e.self, nil
		}
	}
	return ref, nil
}

func (b *Builder) resolveReference(ref *fhir_dto.Reference, owner string) error {
	if ref == nil {
		return nil
	}
	resolved, err := b.resolve(ref.Reference, owner)
	if err != nil {
		return err
	}
	ref.Reference = resolved
	return nil
}

func (b *Builder) resolveResource(e *entry) error {
	owner := e.kind + "/" + e.logicalID
	res := e.resource
	if err := b.resolveReference(res.Patient, owner); err != nil {
		return err
	}
	for i := range res.Data {
		if err := b.resolveReference(&res.Data[i], owner); err != nil {
			return err
		}
	}
	return b.resolveExtensions(res.Extension, owner)
}

func (b *Builder) resolveExtensions(list fhir_dto.Extensions, owner string) error {
	for i := range list {
		if err := b.resolveReference(list[i].ValueReference, owner); err != nil {
			return err
		}
		if err := b.resolveExtensions(list[i].Extension, owner); err != nil {
			return err
		}
	}
	return nil
}
