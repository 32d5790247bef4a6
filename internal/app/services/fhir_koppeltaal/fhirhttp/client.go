// Package fhirhttp is the request/response plumbing the koppeltaal clients
// share: credentials, request ids, and the mapping of server answers onto
// the error kinds.
package fhirhttp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Client struct {
	HTTP       *http.Client
	Credential models.Credential
	Log        *zap.Logger
}

// Request is one call to the server. Body is sent as FHIR JSON, Form as a
// url-encoded form; at most one of them is set.
type Request struct {
	Op     string
	Method string
	URL    string
	Body   interface{}
	Form   url.Values
	// What names the addressed resource in errors.
	What string
	// Credential overrides the client credential for this call.
	Credential *models.Credential
	// NoRedirect returns 3xx answers instead of following them.
	NoRedirect bool
	// Accept lists the statuses treated as success. Defaults to 200 and 201.
	Accept []int
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func New(httpClient *http.Client, cred models.Credential, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{HTTP: httpClient, Credential: cred, Log: logger}
}

// WithCredential returns a copy of c that authenticates as cred.
func (c *Client) WithCredential(cred models.Credential) *Client {
	clone := *c
	clone.Credential = cred
	return &clone
}

func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	requestID := utils.GetRequestID(ctx)

	var body io.Reader
	contentType := ""
	switch {
	case r.Body != nil:
		raw, err := json.Marshal(r.Body)
		if err != nil {
			c.Log.Error(r.Op+" error marshaling JSON",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
			return nil, exceptions.ErrCannotMarshalJSON(err)
		}
		body = bytes.NewReader(raw)
		contentType = constvars.MIMEApplicationFHIRJSON
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		contentType = constvars.MIMEApplicationForm
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		c.Log.Error(r.Op+" error creating HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	if contentType != "" {
		req.Header.Set(constvars.HeaderContentType, contentType)
	}
	req.Header.Set(constvars.HeaderAccept, constvars.MIMEApplicationFHIRJSON+", "+constvars.MIMEApplicationJSON)
	if requestID != "" {
		req.Header.Set(constvars.HeaderXRequestID, requestID)
	}
	cred := c.Credential
	if r.Credential != nil {
		cred = *r.Credential
	}
	cred.Apply(req)

	httpClient := c.HTTP
	if r.NoRedirect {
		noFollow := *c.HTTP
		noFollow.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		httpClient = &noFollow
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		c.Log.Error(r.Op+" error sending HTTP request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, r.URL),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, exceptions.ErrServerDeadlineExceeded(err)
		}
		return nil, exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Log.Error(r.Op+" error reading response body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, exceptions.ErrSendHTTPRequest(err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}
	if !accepted(resp.StatusCode, r.Accept) {
		statusErr := StatusError(resp.StatusCode, raw, r.What, cred.Principal())
		c.Log.Error(r.Op+" server error",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, r.URL),
			zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
			zap.String(constvars.LoggingErrorKindKey, string(exceptions.KindOf(statusErr))),
			zap.Error(statusErr),
		)
		return out, statusErr
	}
	return out, nil
}

// DoJSON runs the request and decodes a successful body into out.
func (c *Client) DoJSON(ctx context.Context, r Request, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.Log.Error(r.Op+" error decoding response",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return resp, exceptions.ErrDecodeResponse(err, r.What)
	}
	return resp, nil
}

// StatusError turns an unsuccessful answer into a classified error. The
// OperationOutcome diagnostics, when the body carries one, become the cause.
func StatusError(status int, body []byte, what, principal string) error {
	var cause error
	var outcome fhir_dto.OperationOutcome
	if err := json.Unmarshal(body, &outcome); err == nil && outcome.Diagnostics() != "" {
		cause = errors.New(outcome.Diagnostics())
	} else if len(body) > 0 {
		cause = errors.New(strings.TrimSpace(string(body)))
	}

	if status >= constvars.StatusInternalServerError {
		return exceptions.ErrServerUnavailable(cause, status)
	}
	switch exceptions.KindOfStatus(status) {
	case exceptions.KindAuthenticationFailure:
		return exceptions.ErrAuthenticationFailure(cause, principal)
	case exceptions.KindNotFound:
		return exceptions.ErrNotFound(cause, what)
	case exceptions.KindVersionConflict:
		return exceptions.ErrVersionConflict(cause, what)
	case exceptions.KindProtocolViolation:
		detail := what
		if cause != nil {
			detail = cause.Error()
		}
		return exceptions.ErrProtocolViolation(cause, detail)
	case exceptions.KindTransportFailure:
		return exceptions.ErrServerUnavailable(cause, status)
	}
	return exceptions.ErrServerProcess(cause, status)
}

func accepted(status int, accept []int) bool {
	if len(accept) == 0 {
		return status == constvars.StatusOK || status == constvars.StatusCreated
	}
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}
