package resources

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/fhirhttp"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

type ResourceFhirClient struct {
	serverURL string
	http      *fhirhttp.Client
	Log       *zap.Logger
}

var _ contracts.ResourceClient = (*ResourceFhirClient)(nil)

func NewResourceFhirClient(serverURL string, httpClient *http.Client, cred models.Credential, logger *zap.Logger) *ResourceFhirClient {
	return &ResourceFhirClient{
		serverURL: serverURL,
		http:      fhirhttp.New(httpClient, cred, logger),
		Log:       logger,
	}
}

func (c *ResourceFhirClient) WithCredential(cred models.Credential) *ResourceFhirClient {
	clone := *c
	clone.http = c.http.WithCredential(cred)
	return &clone
}

func (c *ResourceFhirClient) baseURL() string {
	return c.serverURL + constvars.KoppeltaalFHIRPath
}

func (c *ResourceFhirClient) GetMetadataRaw(ctx context.Context) ([]byte, error) {
	resp, err := c.http.Do(ctx, fhirhttp.Request{
		Op:     "resourceFhirClient.GetMetadataRaw",
		Method: constvars.MethodGet,
		URL:    c.baseURL() + constvars.KoppeltaalMetadataPath,
		What:   "metadata",
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *ResourceFhirClient) GetMetadata(ctx context.Context) (*models.ServerMetadata, error) {
	raw, err := c.GetMetadataRaw(ctx)
	if err != nil {
		return nil, err
	}
	return models.ParseServerMetadata(raw)
}

// PostResource creates res, or updates it when version names the version
// the caller last saw. Other resources are posted under their code.
func (c *ResourceFhirClient) PostResource(ctx context.Context, res *fhir_dto.Resource, version string) (*fhir_dto.Resource, error) {
	requestID := utils.GetRequestID(ctx)
	if res == nil || !resourceurl.IsResourceType(res.ResourceType) {
		return nil, exceptions.ErrProtocolViolation(nil, "resource without a valid resourceType")
	}

	req := fhirhttp.Request{
		Op:   "resourceFhirClient.PostResource",
		Body: res,
		What: res.KindName() + "/" + res.ID,
	}
	if version == "" {
		req.Method = constvars.MethodPost
		req.URL = c.baseURL() + "/" + res.ResourceType
		if res.ResourceType == constvars.ResourceOther {
			req.URL += "?" + url.Values{constvars.QueryParamCode: {res.OtherKind()}}.Encode()
		}
	} else {
		ref, err := resourceurl.Build(c.baseURL(), res.ResourceType, res.ID, version)
		if err != nil {
			return nil, err
		}
		req.Method = constvars.MethodPut
		req.URL = ref
		req.What = ref
	}

	c.Log.Info("resourceFhirClient.PostResource called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceTypeKey, res.KindName()),
		zap.String(constvars.LoggingURLKey, req.URL),
	)

	stored := new(fhir_dto.Resource)
	if _, err := c.http.DoJSON(ctx, req, stored); err != nil {
		return nil, err
	}

	c.Log.Info("resourceFhirClient.PostResource succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceRefKey, stored.ResourceType+"/"+stored.ID+"/_history/"+stored.VersionID()),
	)
	return stored, nil
}

// Read fetches a resource by reference. A versioned reference reads that
// version from the history, so superseded versions stay retrievable.
func (c *ResourceFhirClient) Read(ctx context.Context, ref string) (*fhir_dto.Resource, error) {
	target := ref
	if !resourceurl.IsAbsolute(ref) {
		target = c.baseURL() + "/" + ref
	}
	if _, err := resourceurl.Parse(target); err != nil {
		return nil, err
	}

	res := new(fhir_dto.Resource)
	_, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "resourceFhirClient.Read",
		Method: constvars.MethodGet,
		URL:    target,
		What:   ref,
	}, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *ResourceFhirClient) GetActivityDefinitionByID(ctx context.Context, id string) (*fhir_dto.Resource, error) {
	if !resourceurl.IsResourceID(id) {
		return nil, exceptions.ErrProtocolViolation(nil, "invalid activity definition id "+id)
	}
	bundle, err := c.searchActivityDefinitions(ctx, url.Values{constvars.QueryParamID: {id}})
	if err != nil {
		return nil, err
	}
	for _, entry := range bundle.Entry {
		if entry.Resource != nil && entry.Resource.ID == id {
			return entry.Resource, nil
		}
	}
	return nil, exceptions.ErrNotFound(nil, constvars.OtherActivityDefinition+"/"+id)
}

func (c *ResourceFhirClient) GetActivityDefinitions(ctx context.Context) ([]fhir_dto.Resource, error) {
	bundle, err := c.searchActivityDefinitions(ctx, nil)
	if err != nil {
		return nil, err
	}
	definitions := make([]fhir_dto.Resource, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if entry.Resource != nil && entry.Resource.KindName() == constvars.OtherActivityDefinition {
			definitions = append(definitions, *entry.Resource)
		}
	}
	return definitions, nil
}

func (c *ResourceFhirClient) GetActivityDefinitionsRaw(ctx context.Context) ([]byte, error) {
	resp, err := c.http.Do(ctx, c.activityDefinitionSearch(nil))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *ResourceFhirClient) searchActivityDefinitions(ctx context.Context, extra url.Values) (*fhir_dto.Bundle, error) {
	bundle := new(fhir_dto.Bundle)
	if _, err := c.http.DoJSON(ctx, c.activityDefinitionSearch(extra), bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (c *ResourceFhirClient) activityDefinitionSearch(extra url.Values) fhirhttp.Request {
	params := url.Values{constvars.QueryParamCode: {constvars.OtherActivityDefinition}}
	for k, v := range extra {
		params[k] = v
	}
	return fhirhttp.Request{
		Op:     "resourceFhirClient.GetActivityDefinitions",
		Method: constvars.MethodGet,
		URL:    c.baseURL() + "/" + constvars.ResourceOther + "?" + params.Encode(),
		What:   constvars.OtherActivityDefinition,
	}
}
