// Package resourceurl builds and parses koppeltaal resource references of the
// form base/ResourceType/id[/_history/version].
package resourceurl

import (
	"errors"
	"fmt"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const historySeparator = "/" + constvars.KoppeltaalHistorySegment + "/"

var (
	resourceTypePattern = regexp.MustCompile(constvars.RegexResourceType)
	resourceIDPattern   = regexp.MustCompile(constvars.RegexResourceID)
	validate            = newValidator()
)

// ResourceURL is a parsed reference. Two references denote the same resource
// when type and id match; Version only guards optimistic concurrency.
type ResourceURL struct {
	Base         string `validate:"omitempty,url"`
	ResourceType string `validate:"required,resource_type"`
	ID           string `validate:"required,resource_id"`
	Version      string `validate:"omitempty,resource_id"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		return IsResourceType(fl.Field().String())
	})
	v.RegisterValidation("resource_id", func(fl validator.FieldLevel) bool {
		return IsResourceID(fl.Field().String())
	})
	return v
}

func IsResourceType(s string) bool {
	return resourceTypePattern.MatchString(s)
}

func IsResourceID(s string) bool {
	return resourceIDPattern.MatchString(s)
}

// Build returns the canonical reference string. An empty version yields an
// unversioned reference, which the server treats as a create.
func Build(base, resourceType, id, version string) (string, error) {
	if !isAbsoluteHTTP(base) {
		return "", exceptions.ErrInvalidResourceURL(errors.New("base must be an absolute http(s) url"), base)
	}
	u := ResourceURL{
		Base:         strings.TrimRight(base, "/"),
		ResourceType: resourceType,
		ID:           id,
		Version:      version,
	}
	if err := validate.Struct(u); err != nil {
		return "", exceptions.ErrInvalidResourceURL(err, fmt.Sprintf("%s/%s/%s", base, resourceType, id))
	}
	return u.String(), nil
}

// MustBuild is Build for values known to be valid, such as test fixtures.
func MustBuild(base, resourceType, id, version string) string {
	s, err := Build(base, resourceType, id, version)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse accepts absolute and relative references, with or without a
// _history suffix. The resource type is the segment right before the id.
func Parse(ref string) (ResourceURL, error) {
	raw := ref
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")

	var version string
	if i := strings.LastIndex(ref, historySeparator); i >= 0 {
		version = ref[i+len(historySeparator):]
		ref = ref[:i]
		if version == "" || strings.Contains(version, "/") {
			return ResourceURL{}, exceptions.ErrInvalidResourceURL(errors.New("malformed history suffix"), raw)
		}
	}

	idx := strings.LastIndex(ref, "/")
	if idx <= 0 {
		return ResourceURL{}, exceptions.ErrInvalidResourceURL(errors.New("missing resource type"), raw)
	}
	id := ref[idx+1:]
	rest := ref[:idx]

	var base, resourceType string
	if j := strings.LastIndex(rest, "/"); j >= 0 {
		base = rest[:j]
		resourceType = rest[j+1:]
	} else {
		resourceType = rest
	}
	if base != "" && !isAbsoluteHTTP(base) {
		return ResourceURL{}, exceptions.ErrInvalidResourceURL(errors.New("base must be an absolute http(s) url"), raw)
	}

	u := ResourceURL{
		Base:         base,
		ResourceType: resourceType,
		ID:           id,
		Version:      version,
	}
	if err := validate.Struct(u); err != nil {
		return ResourceURL{}, exceptions.ErrInvalidResourceURL(err, raw)
	}
	return u, nil
}

// VersionOf returns the _history version of ref, if it carries one.
func VersionOf(ref string) (string, bool) {
	u, err := Parse(ref)
	if err != nil || u.Version == "" {
		return "", false
	}
	return u.Version, true
}

// IsAbsolute reports whether ref is an absolute http(s) url rather than a
// bundle-local logical id.
func IsAbsolute(ref string) bool {
	return isAbsoluteHTTP(ref)
}

func (u ResourceURL) String() string {
	var sb strings.Builder
	if u.Base != "" {
		sb.WriteString(u.Base)
		sb.WriteString("/")
	}
	sb.WriteString(u.ResourceType)
	sb.WriteString("/")
	sb.WriteString(u.ID)
	if u.Version != "" {
		sb.WriteString(historySeparator)
		sb.WriteString(u.Version)
	}
	return sb.String()
}

func (u ResourceURL) Unversioned() ResourceURL {
	u.Version = ""
	return u
}

func (u ResourceURL) WithVersion(version string) ResourceURL {
	u.Version = version
	return u
}

func (u ResourceURL) SameResource(other ResourceURL) bool {
	return u.ResourceType == other.ResourceType && u.ID == other.ID
}

func isAbsoluteHTTP(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
