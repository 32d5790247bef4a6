package models

import (
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseServerMetadata reads the capability document. Only the OAuth
// endpoints and a few descriptive fields are picked out; the document is
// otherwise kept as is.
func ParseServerMetadata(raw []byte) (*ServerMetadata, error) {
	if !gjson.ValidBytes(raw) {
		return nil, exceptions.ErrDecodeResponse(nil, "metadata")
	}
	doc := gjson.ParseBytes(raw)
	md := &ServerMetadata{
		FHIRVersion: doc.Get("fhirVersion").String(),
		Software:    doc.Get("software.name").String(),
		Raw:         raw,
	}

	doc.Get("rest").ForEach(func(_, rest gjson.Result) bool {
		rest.Get("security.extension").ForEach(func(_, ext gjson.Result) bool {
			url := ext.Get("url").String()
			if !strings.HasPrefix(url, constvars.SystemSMARTOAuthURIs) {
				return true
			}
			switch {
			case strings.HasSuffix(url, "#authorize"):
				md.AuthorizeEndpoint = ext.Get("valueUri").String()
			case strings.HasSuffix(url, "#token"):
				md.TokenEndpoint = ext.Get("valueUri").String()
			}
			return true
		})
		return md.AuthorizeEndpoint == "" || md.TokenEndpoint == ""
	})

	if md.AuthorizeEndpoint == "" {
		return nil, exceptions.ErrMissingEndpoint("authorize")
	}
	if md.TokenEndpoint == "" {
		return nil, exceptions.ErrMissingEndpoint("token")
	}
	return md, nil
}
