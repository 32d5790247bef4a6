package launch

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	// Issuer is the FHIR base the server announces as iss.
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateSecret  string
	StateTTL     time.Duration
	SessionTTL   time.Duration
}

type launchUsecase struct {
	Log    *zap.Logger
	cfg    Config
	auth   contracts.AuthSession
	tokens contracts.TokenStore
}

func NewLaunchUsecase(logger *zap.Logger, cfg Config, auth contracts.AuthSession, tokens contracts.TokenStore) (contracts.LaunchUsecase, error) {
	if cfg.StateSecret == "" {
		return nil, errors.New("launch state secret is required")
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = 10 * time.Minute
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	return &launchUsecase{Log: logger, cfg: cfg, auth: auth, tokens: tokens}, nil
}

func (uc *launchUsecase) Begin(ctx context.Context, issuer, launch string) (string, error) {
	requestID := utils.GetRequestID(ctx)
	if issuer == "" || launch == "" {
		return "", exceptions.ErrInvalidLaunch(errors.New("iss and launch are required"))
	}
	if strings.TrimRight(issuer, "/") != strings.TrimRight(uc.cfg.Issuer, "/") {
		uc.Log.Warn("launchUsecase.Begin issuer mismatch",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingURLKey, issuer),
		)
		return "", exceptions.ErrIssuerMismatch(issuer)
	}

	sessionID := utils.GenerateSessionID()
	state, err := utils.GenerateLaunchStateJWT(sessionID, issuer, launch, uc.cfg.StateSecret, uc.cfg.StateTTL)
	if err != nil {
		return "", err
	}

	md, err := uc.auth.Metadata(ctx)
	if err != nil {
		return "", err
	}
	authorizeURL, err := uc.auth.CreateOAuthAuthorizeURL(uc.cfg.ClientID, uc.cfg.RedirectURI, launch, state, md)
	if err != nil {
		return "", err
	}

	uc.Log.Info("launchUsecase.Begin redirecting to authorize endpoint",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
	return authorizeURL, nil
}

func (uc *launchUsecase) Complete(ctx context.Context, code, state string) (*models.LaunchSession, error) {
	requestID := utils.GetRequestID(ctx)
	if code == "" {
		return nil, exceptions.ErrInvalidLaunch(errors.New("code is required"))
	}
	claims, err := utils.ParseLaunchStateJWT(state, uc.cfg.StateSecret)
	if err != nil {
		uc.Log.Warn("launchUsecase.Complete rejected state",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	md, err := uc.auth.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	token, err := uc.auth.ExchangeAuthorizationCode(ctx, code, uc.cfg.RedirectURI, md)
	if err != nil {
		return nil, err
	}
	if err := uc.tokens.Save(ctx, claims.SessionID, token, uc.cfg.SessionTTL); err != nil {
		return nil, err
	}

	uc.Log.Info("launchUsecase.Complete session stored",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, claims.SessionID),
		zap.String(constvars.LoggingPatientKey, token.Patient),
	)
	return &models.LaunchSession{SessionID: claims.SessionID, Token: token}, nil
}

func (uc *launchUsecase) Get(ctx context.Context, sessionID string) (*models.LaunchSession, error) {
	token, err := uc.tokens.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &models.LaunchSession{SessionID: sessionID, Token: token}, nil
}

// Refresh rotates the session's tokens. Context the token endpoint leaves
// out of the refresh response is carried over from the previous tokens.
func (uc *launchUsecase) Refresh(ctx context.Context, sessionID string) (*models.LaunchSession, error) {
	requestID := utils.GetRequestID(ctx)
	token, err := uc.tokens.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fresh, err := uc.auth.Refresh(ctx, token, uc.cfg.ClientID, uc.cfg.ClientSecret)
	if err != nil {
		uc.Log.Error("launchUsecase.Refresh failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingSessionIDKey, sessionID),
			zap.Error(err),
		)
		return nil, err
	}
	carryContext(fresh, token)

	if err := uc.tokens.Save(ctx, sessionID, fresh, uc.cfg.SessionTTL); err != nil {
		return nil, err
	}
	uc.Log.Info("launchUsecase.Refresh session rotated",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
	return &models.LaunchSession{SessionID: sessionID, Token: fresh}, nil
}

func (uc *launchUsecase) End(ctx context.Context, sessionID string) error {
	uc.Log.Info("launchUsecase.End called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)
	return uc.tokens.Delete(ctx, sessionID)
}

func (uc *launchUsecase) Healthy(ctx context.Context) bool {
	return uc.auth.TestAuthentication(ctx)
}

func carryContext(fresh, previous *models.TokenDetails) {
	if fresh.Patient == "" {
		fresh.Patient = previous.Patient
	}
	if fresh.User == "" {
		fresh.User = previous.User
	}
	if fresh.Resource == "" {
		fresh.Resource = previous.Resource
	}
	if fresh.Location == "" {
		fresh.Location = previous.Location
	}
	if fresh.Domain == "" {
		fresh.Domain = previous.Domain
	}
}
