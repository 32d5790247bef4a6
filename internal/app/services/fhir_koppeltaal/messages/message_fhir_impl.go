package messages

import (
	"context"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/fhirhttp"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	StageRequest  = "request"
	StageResponse = "response"
	StageFetched  = "fetched"
)

type Config struct {
	ServerURL     string
	Namespace     extensions.Namespace
	ClaimAttempts int
}

// MessageFhirClient talks to the mailbox and the MessageHeader endpoints.
// Apart from the credential it holds no state, so one client can serve
// many goroutines.
type MessageFhirClient struct {
	cfg     Config
	http    *fhirhttp.Client
	archive contracts.BundleArchive
	now     func() time.Time
	Log     *zap.Logger
}

var _ contracts.MessageExchangeClient = (*MessageFhirClient)(nil)

func NewMessageFhirClient(cfg Config, httpClient *http.Client, cred models.Credential, logger *zap.Logger) *MessageFhirClient {
	if cfg.ClaimAttempts <= 0 {
		cfg.ClaimAttempts = constvars.DefaultClaimAttempts
	}
	if cfg.Namespace == "" {
		cfg.Namespace = extensions.Namespace(constvars.KoppeltaalNamespace)
	}
	return &MessageFhirClient{
		cfg:  cfg,
		http: fhirhttp.New(httpClient, cred, logger),
		now:  time.Now,
		Log:  logger,
	}
}

// WithCredential returns a copy of the client bound to cred.
func (c *MessageFhirClient) WithCredential(cred models.Credential) *MessageFhirClient {
	clone := *c
	clone.http = c.http.WithCredential(cred)
	return &clone
}

// WithArchive returns a copy of the client that snapshots posted and
// fetched bundles into archive.
func (c *MessageFhirClient) WithArchive(archive contracts.BundleArchive) *MessageFhirClient {
	clone := *c
	clone.archive = archive
	return &clone
}

func (c *MessageFhirClient) baseURL() string {
	return c.cfg.ServerURL + constvars.KoppeltaalFHIRPath
}

func (c *MessageFhirClient) Post(ctx context.Context, bundle *fhir_dto.Bundle) (*fhir_dto.Bundle, error) {
	requestID := utils.GetRequestID(ctx)
	if bundle == nil || len(bundle.Entry) == 0 || bundle.Entry[0].Resource == nil {
		return nil, exceptions.ErrProtocolViolation(nil, "bundle has no message header")
	}
	messageID := bundle.Entry[0].Resource.FirstIdentifier()
	c.Log.Info("messageFhirClient.Post called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, messageID),
		zap.Int(constvars.LoggingEntryCountKey, len(bundle.Entry)),
	)

	c.archiveBundle(ctx, messageID, StageRequest, bundle)

	response := new(fhir_dto.Bundle)
	_, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "messageFhirClient.Post",
		Method: constvars.MethodPost,
		URL:    c.baseURL() + constvars.KoppeltaalMailboxPath,
		Body:   bundle,
		What:   "Bundle " + messageID,
	}, response)
	if err != nil {
		return nil, err
	}

	c.archiveBundle(ctx, messageID, StageResponse, response)
	c.Log.Info("messageFhirClient.Post succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, messageID),
		zap.Int(constvars.LoggingEntryCountKey, len(response.Entry)),
	)
	return response, nil
}

func (c *MessageFhirClient) Query(ctx context.Context, filter models.MessageFilter) ([]models.MessageHeader, error) {
	requestID := utils.GetRequestID(ctx)
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	params := url.Values{}
	params.Set(constvars.QueryParamSummary, "true")
	if filter.Patient != "" {
		params.Set(constvars.QueryParamPatient, filter.Patient)
	}
	if filter.Event != "" {
		params.Set(constvars.QueryParamEvent, string(filter.Event))
	}
	if filter.ProcessingStatus != "" {
		params.Set(constvars.QueryParamProcessingStatus, string(filter.ProcessingStatus))
	}
	if filter.Count > 0 {
		params.Set(constvars.QueryParamCount, strconv.Itoa(filter.Count))
	}

	bundle := new(fhir_dto.Bundle)
	_, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "messageFhirClient.Query",
		Method: constvars.MethodGet,
		URL:    c.baseURL() + "/" + constvars.ResourceMessageHeader + "/_search?" + params.Encode(),
		What:   constvars.ResourceMessageHeader,
	}, bundle)
	if err != nil {
		return nil, err
	}

	headers, err := models.MessageHeaders(c.cfg.Namespace, bundle)
	if err != nil {
		c.Log.Error("messageFhirClient.Query error parsing message headers",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	c.Log.Debug("messageFhirClient.Query succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingHeaderCountKey, len(headers)),
	)
	return headers, nil
}

// ClaimNext looks up one New header and claims it. Another consumer may
// claim the same header in between; the server then rejects the stale
// version and the lookup is repeated, at most ClaimAttempts times.
func (c *MessageFhirClient) ClaimNext(ctx context.Context, filter models.MessageFilter) (*models.MessageHeader, error) {
	requestID := utils.GetRequestID(ctx)
	filter.ProcessingStatus = models.ProcessingStatusNew
	filter.Count = 1

	var lastErr error
	for attempt := 1; attempt <= c.cfg.ClaimAttempts; attempt++ {
		headers, err := c.Query(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(headers) == 0 {
			return nil, nil
		}

		claimed, err := c.TransitionStatus(ctx, &headers[0], models.ProcessingStatusClaimed)
		if err == nil {
			c.Log.Info("messageFhirClient.ClaimNext claimed message",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingMessageIDKey, claimed.MessageID),
				zap.String(constvars.LoggingEventKey, string(claimed.Event)),
				zap.Int(constvars.LoggingAttemptKey, attempt),
			)
			return claimed, nil
		}
		if !exceptions.IsKind(err, exceptions.KindVersionConflict) && !exceptions.IsKind(err, exceptions.KindProtocolViolation) {
			return nil, err
		}
		c.Log.Warn("messageFhirClient.ClaimNext lost claim race",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMessageIDKey, headers[0].MessageID),
			zap.Int(constvars.LoggingAttemptKey, attempt),
			zap.Error(err),
		)
		lastErr = err
	}
	return nil, lastErr
}

func (c *MessageFhirClient) TransitionStatus(ctx context.Context, header *models.MessageHeader, target models.ProcessingStatus) (*models.MessageHeader, error) {
	return c.transition(ctx, header, target, "")
}

// MarkFailed moves a claimed header to Failed and records reason as the
// processing exception.
func (c *MessageFhirClient) MarkFailed(ctx context.Context, header *models.MessageHeader, reason string) (*models.MessageHeader, error) {
	return c.transition(ctx, header, models.ProcessingStatusFailed, reason)
}

func (c *MessageFhirClient) transition(ctx context.Context, header *models.MessageHeader, target models.ProcessingStatus, exception string) (*models.MessageHeader, error) {
	requestID := utils.GetRequestID(ctx)
	if header == nil {
		return nil, exceptions.ErrProtocolViolation(nil, "no message header to transition")
	}
	if !target.IsValid() {
		return nil, exceptions.ErrProtocolViolation(nil, "unknown processing status "+string(target))
	}
	if header.Version == "" {
		return nil, exceptions.ErrProtocolViolation(nil, "message header "+header.ID+" has no version")
	}
	// an unknown current status is left for the server to judge
	if header.ProcessingStatus != "" && !header.ProcessingStatus.CanTransitionTo(target) {
		return nil, exceptions.ErrIllegalStatusTransition(string(header.ProcessingStatus), string(target))
	}

	ref, err := header.VersionedRef(c.baseURL())
	if err != nil {
		return nil, err
	}
	res, err := header.WithProcessingStatus(c.cfg.Namespace, target, exception, c.now())
	if err != nil {
		return nil, err
	}

	c.Log.Info("messageFhirClient.TransitionStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingHeaderRefKey, ref),
		zap.String(constvars.LoggingProcessingStatusKey, string(header.ProcessingStatus)),
		zap.String(constvars.LoggingTargetStatusKey, string(target)),
	)

	updated := new(fhir_dto.Resource)
	resp, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "messageFhirClient.TransitionStatus",
		Method: constvars.MethodPut,
		URL:    ref,
		Body:   res,
		What:   ref,
	}, updated)
	if err != nil {
		return nil, err
	}

	entry := fhir_dto.BundleEntry{Resource: updated}
	if location := resp.Header.Get(constvars.HeaderLocation); location != "" {
		entry.Link = []fhir_dto.BundleLink{{Relation: constvars.BundleLinkSelf, URL: location}}
	}
	if updated.ID == "" {
		updated.ID = header.ID
	}
	next, err := models.ParseMessageHeader(c.cfg.Namespace, entry)
	if err != nil {
		return nil, err
	}
	if next.Version == "" || next.Version == header.Version {
		return nil, exceptions.ErrProtocolViolation(nil, "server did not assign a new version to "+ref)
	}

	c.Log.Info("messageFhirClient.TransitionStatus succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, next.MessageID),
		zap.String(constvars.LoggingProcessingStatusKey, string(next.ProcessingStatus)),
	)
	return next, nil
}

// FetchBundle returns the header together with the resources it refers to,
// whatever its processing status.
func (c *MessageFhirClient) FetchBundle(ctx context.Context, header *models.MessageHeader) (*fhir_dto.Bundle, error) {
	requestID := utils.GetRequestID(ctx)
	if header == nil || header.ID == "" {
		return nil, exceptions.ErrProtocolViolation(nil, "no message header to fetch")
	}

	params := url.Values{}
	params.Set(constvars.QueryParamID, header.ID)
	params.Set(constvars.QueryParamInclude, constvars.IncludeMessageHeaderData)

	what := constvars.ResourceMessageHeader + "/" + header.ID
	bundle := new(fhir_dto.Bundle)
	_, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "messageFhirClient.FetchBundle",
		Method: constvars.MethodGet,
		URL:    c.baseURL() + "/" + constvars.ResourceMessageHeader + "/_search?" + params.Encode(),
		What:   what,
	}, bundle)
	if err != nil {
		return nil, err
	}
	if len(bundle.Entry) == 0 {
		return nil, exceptions.ErrNotFound(nil, what)
	}

	c.archiveBundle(ctx, header.MessageID, StageFetched, bundle)
	c.Log.Info("messageFhirClient.FetchBundle succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMessageIDKey, header.MessageID),
		zap.Int(constvars.LoggingEntryCountKey, len(bundle.Entry)),
	)
	return bundle, nil
}

// archiveBundle never fails the exchange; a lost snapshot is only logged.
func (c *MessageFhirClient) archiveBundle(ctx context.Context, messageID, stage string, bundle *fhir_dto.Bundle) {
	if c.archive == nil {
		return
	}
	if _, err := c.archive.Save(ctx, messageID, stage, bundle); err != nil {
		c.Log.Warn("messageFhirClient.archiveBundle error saving snapshot",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingMessageIDKey, messageID),
			zap.Error(err),
		)
	}
}
