package smart_auth

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/app/services/fhir_koppeltaal/fhirhttp"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type SmartAuthClient struct {
	serverURL string
	http      *fhirhttp.Client
	Log       *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	metadata *models.ServerMetadata
}

var _ contracts.AuthSession = (*SmartAuthClient)(nil)

// NewSmartAuthClient talks to the launch and OAuth endpoints of the server
// at serverURL. cred is the application credential; token exchanges that
// need client credentials take them per call.
func NewSmartAuthClient(serverURL string, httpClient *http.Client, cred models.Credential, logger *zap.Logger) *SmartAuthClient {
	return &SmartAuthClient{
		serverURL: serverURL,
		http:      fhirhttp.New(httpClient, cred, logger),
		Log:       logger,
		now:       time.Now,
	}
}

func (c *SmartAuthClient) TestAuthentication(ctx context.Context) bool {
	requestID := utils.GetRequestID(ctx)
	query := url.Values{
		constvars.QueryParamSummary: {"true"},
		constvars.QueryParamCount:   {"1"},
	}
	_, err := c.http.Do(ctx, fhirhttp.Request{
		Op:     "smartAuthClient.TestAuthentication",
		Method: constvars.MethodGet,
		URL:    c.serverURL + constvars.KoppeltaalFHIRPath + "/MessageHeader/_search?" + query.Encode(),
		What:   "MessageHeader",
	})
	if err != nil {
		c.Log.Warn("smartAuthClient.TestAuthentication failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorKindKey, string(exceptions.KindOf(err))),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *SmartAuthClient) Launch(ctx context.Context, activityID, patientRef, userRef string, extra url.Values) (string, error) {
	requestID := utils.GetRequestID(ctx)
	c.Log.Info("smartAuthClient.Launch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResourceRefKey, activityID),
	)

	resp, err := c.http.Do(ctx, fhirhttp.Request{
		Op:         "smartAuthClient.Launch",
		Method:     constvars.MethodGet,
		URL:        c.launchURL(constvars.KoppeltaalLaunchPath, activityID, patientRef, userRef, extra),
		What:       "launch",
		NoRedirect: true,
		Accept: []int{
			constvars.StatusMovedPermanently,
			constvars.StatusFound,
			constvars.StatusSeeOther,
			constvars.StatusTemporaryRedirect,
		},
	})
	if err != nil {
		return "", err
	}

	location := resp.Header.Get(constvars.HeaderLocation)
	target, err := url.Parse(location)
	if err != nil || location == "" {
		return "", exceptions.ErrLaunchLocationInvalid(err, constvars.HeaderLocation)
	}
	q := target.Query()
	for _, p := range []string{constvars.OAuthParamIss, constvars.OAuthParamLaunch} {
		if q.Get(p) == "" {
			return "", exceptions.ErrLaunchLocationInvalid(nil, p)
		}
	}
	return location, nil
}

func (c *SmartAuthClient) MobileLaunch(ctx context.Context, activityID, patientRef, userRef string, extra url.Values) (*models.MobileLaunchCode, error) {
	var code models.MobileLaunchCode
	_, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:     "smartAuthClient.MobileLaunch",
		Method: constvars.MethodGet,
		URL:    c.launchURL(constvars.KoppeltaalMobileLaunchPath, activityID, patientRef, userRef, extra),
		What:   "mobile launch",
	}, &code)
	if err != nil {
		return nil, err
	}
	if code.ActivationCode == "" {
		return nil, exceptions.ErrProtocolViolation(nil, "mobile launch without activation code")
	}
	return &code, nil
}

func (c *SmartAuthClient) launchURL(path, activityID, patientRef, userRef string, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = append([]string(nil), v...)
	}
	q.Set(constvars.LaunchParamResource, activityID)
	if patientRef != "" {
		q.Set(constvars.LaunchParamPatient, patientRef)
	}
	if userRef != "" {
		q.Set(constvars.LaunchParamUser, userRef)
	}
	return c.serverURL + path + "?" + q.Encode()
}

// Metadata fetches the capability document on first use. Failures are not
// cached.
func (c *SmartAuthClient) Metadata(ctx context.Context) (*models.ServerMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metadata != nil {
		return c.metadata, nil
	}

	resp, err := c.http.Do(ctx, fhirhttp.Request{
		Op:     "smartAuthClient.Metadata",
		Method: constvars.MethodGet,
		URL:    c.serverURL + constvars.KoppeltaalFHIRPath + constvars.KoppeltaalMetadataPath,
		What:   "metadata",
	})
	if err != nil {
		return nil, err
	}
	md, err := models.ParseServerMetadata(resp.Body)
	if err != nil {
		c.Log.Error("smartAuthClient.Metadata unusable capability document",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return nil, err
	}
	c.metadata = md
	return md, nil
}

func (c *SmartAuthClient) CreateOAuthAuthorizeURL(clientID, redirectURI, launch, state string, md *models.ServerMetadata) (string, error) {
	if md == nil || md.AuthorizeEndpoint == "" {
		return "", exceptions.ErrMissingEndpoint("authorize")
	}
	endpoint, err := url.Parse(md.AuthorizeEndpoint)
	if err != nil {
		return "", exceptions.ErrInvalidResourceURL(err, md.AuthorizeEndpoint)
	}
	endpoint.RawQuery = url.Values{
		constvars.OAuthParamClientID:    {clientID},
		constvars.OAuthParamRedirectURI: {redirectURI},
		constvars.OAuthParamLaunch:      {launch},
		constvars.OAuthParamState:       {state},
	}.Encode()
	return endpoint.String(), nil
}

func (c *SmartAuthClient) ExchangeAuthorizationCode(ctx context.Context, code, redirectURI string, md *models.ServerMetadata) (*models.TokenDetails, error) {
	endpoint, err := c.tokenEndpoint(ctx, md)
	if err != nil {
		return nil, err
	}
	return c.requestToken(ctx, endpoint, url.Values{
		constvars.OAuthParamGrantType:   {constvars.GrantTypeAuthorizationCode},
		constvars.OAuthParamCode:        {code},
		constvars.OAuthParamRedirectURI: {redirectURI},
	}, nil)
}

func (c *SmartAuthClient) ExchangeActivationCode(ctx context.Context, clientID, redirectURI, activationCode string) (*models.TokenDetails, error) {
	endpoint, err := c.tokenEndpoint(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.requestToken(ctx, endpoint, url.Values{
		constvars.OAuthParamGrantType:   {constvars.GrantTypeActivationCode},
		constvars.OAuthParamCode:        {activationCode},
		constvars.OAuthParamClientID:    {clientID},
		constvars.OAuthParamRedirectURI: {redirectURI},
	}, nil)
}

// Refresh trades the refresh token for a new pair. The server must rotate
// both tokens.
func (c *SmartAuthClient) Refresh(ctx context.Context, token *models.TokenDetails, clientID, clientSecret string) (*models.TokenDetails, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, exceptions.ErrProtocolViolation(nil, "token without refresh token")
	}
	endpoint, err := c.tokenEndpoint(ctx, nil)
	if err != nil {
		return nil, err
	}
	clientCred := models.BasicCredential(clientID, clientSecret)
	fresh, err := c.requestToken(ctx, endpoint, url.Values{
		constvars.OAuthParamGrantType:    {constvars.GrantTypeRefreshToken},
		constvars.OAuthParamRefreshToken: {token.RefreshToken},
	}, &clientCred)
	if err != nil {
		return nil, err
	}

	if fresh.AccessToken == token.AccessToken {
		return nil, exceptions.ErrTokenNotRotated("access token")
	}
	if fresh.RefreshToken == "" || fresh.RefreshToken == token.RefreshToken {
		return nil, exceptions.ErrTokenNotRotated("refresh token")
	}
	return fresh, nil
}

func (c *SmartAuthClient) tokenEndpoint(ctx context.Context, md *models.ServerMetadata) (string, error) {
	if md == nil {
		fetched, err := c.Metadata(ctx)
		if err != nil {
			return "", err
		}
		md = fetched
	}
	if md.TokenEndpoint == "" {
		return "", exceptions.ErrMissingEndpoint("token")
	}
	return md.TokenEndpoint, nil
}

func (c *SmartAuthClient) requestToken(ctx context.Context, endpoint string, form url.Values, cred *models.Credential) (*models.TokenDetails, error) {
	requestID := utils.GetRequestID(ctx)
	grantType := form.Get(constvars.OAuthParamGrantType)
	c.Log.Info("smartAuthClient.requestToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingGrantTypeKey, grantType),
	)

	var details models.TokenDetails
	resp, err := c.http.DoJSON(ctx, fhirhttp.Request{
		Op:         "smartAuthClient.requestToken",
		Method:     constvars.MethodPost,
		URL:        endpoint,
		Form:       form,
		What:       "token",
		Credential: cred,
	}, &details)
	if err != nil {
		if resp != nil {
			if code := gjson.GetBytes(resp.Body, constvars.OAuthParamError).String(); code != "" {
				return nil, exceptions.ErrOAuthError(err, code)
			}
		}
		return nil, err
	}
	if details.AccessToken == "" {
		return nil, exceptions.ErrProtocolViolation(errors.New("empty access_token"), "token response")
	}

	c.stampExpiry(&details)
	return &details, nil
}

// stampExpiry derives the expiry from expires_in and, for JWT access
// tokens, the exp claim. The earlier of the two wins.
func (c *SmartAuthClient) stampExpiry(details *models.TokenDetails) {
	details.IssuedAt = c.now()
	if details.ExpiresIn > 0 {
		details.ExpiresAt = details.IssuedAt.Add(time.Duration(details.ExpiresIn) * time.Second)
	}
	if exp, ok := utils.ReadUnverifiedExpiry(details.AccessToken); ok {
		if details.ExpiresAt.IsZero() || exp.Before(details.ExpiresAt) {
			details.ExpiresAt = exp
		}
	}
}
