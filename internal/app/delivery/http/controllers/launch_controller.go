package controllers

import (
	"context"
	"errors"
	"koppeltaal-service/internal/app/contracts"
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/dto/responses"
	"koppeltaal-service/internal/pkg/exceptions"
	"koppeltaal-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type LaunchController struct {
	Log           *zap.Logger
	LaunchUsecase contracts.LaunchUsecase
}

func NewLaunchController(logger *zap.Logger, launchUsecase contracts.LaunchUsecase) *LaunchController {
	return &LaunchController{
		Log:           logger,
		LaunchUsecase: launchUsecase,
	}
}

// Launch receives the user agent sent by the koppeltaal server and forwards
// it to the authorize endpoint.
func (ctrl *LaunchController) Launch(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("LaunchController.Launch called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	authorizeURL, err := ctrl.LaunchUsecase.Begin(ctx, q.Get(constvars.OAuthParamIss), q.Get(constvars.OAuthParamLaunch))
	if err != nil {
		ctrl.writeError(w, "LaunchController.Launch", requestID, err)
		return
	}

	http.Redirect(w, r, authorizeURL, constvars.StatusFound)
}

// Callback is the OAuth redirect uri.
func (ctrl *LaunchController) Callback(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	ctrl.Log.Info("LaunchController.Callback called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	q := r.URL.Query()
	if code := q.Get(constvars.OAuthParamError); code != "" {
		ctrl.writeError(w, "LaunchController.Callback", requestID, exceptions.ErrOAuthError(nil, code))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := ctrl.LaunchUsecase.Complete(ctx, q.Get(constvars.OAuthParamCode), q.Get(constvars.OAuthParamState))
	if err != nil {
		ctrl.writeError(w, "LaunchController.Callback", requestID, err)
		return
	}

	ctrl.Log.Info("LaunchController.Callback succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.LaunchSessionCreatedMessage, toSessionResponse(session, false))
}

func (ctrl *LaunchController) GetSession(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := ctrl.LaunchUsecase.Get(r.Context(), sessionID)
	if err != nil {
		ctrl.writeError(w, "LaunchController.GetSession", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseSuccess, toSessionResponse(session, true))
}

func (ctrl *LaunchController) RefreshSession(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	sessionID := chi.URLParam(r, "id")
	ctrl.Log.Info("LaunchController.RefreshSession called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := ctrl.LaunchUsecase.Refresh(ctx, sessionID)
	if err != nil {
		ctrl.writeError(w, "LaunchController.RefreshSession", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LaunchSessionRefreshedMessage, toSessionResponse(session, true))
}

func (ctrl *LaunchController) DeleteSession(w http.ResponseWriter, r *http.Request) {
	requestID := utils.GetRequestID(r.Context())
	sessionID := chi.URLParam(r, "id")

	if err := ctrl.LaunchUsecase.End(r.Context(), sessionID); err != nil {
		ctrl.writeError(w, "LaunchController.DeleteSession", requestID, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.LaunchSessionDeletedMessage, nil)
}

// Healthz answers without touching the koppeltaal server unless deep=true.
func (ctrl *LaunchController) Healthz(w http.ResponseWriter, r *http.Request) {
	health := responses.Health{Status: constvars.ResponseSuccess}
	if r.URL.Query().Get("deep") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		healthy := ctrl.LaunchUsecase.Healthy(ctx)
		health.Koppeltaal = &healthy
		if !healthy {
			health.Status = constvars.ResponseError
			utils.BuildSuccessResponse(w, constvars.StatusServiceUnavailable, constvars.ResponseError, health)
			return
		}
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.HealthCheckSuccessMessage, health)
}

func (ctrl *LaunchController) writeError(w http.ResponseWriter, op, requestID string, err error) {
	ctrl.Log.Error(op+" error from usecase",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
		return
	}
	utils.BuildErrorResponse(ctrl.Log, w, err)
}

func toSessionResponse(session *models.LaunchSession, withToken bool) responses.LaunchSession {
	resp := responses.LaunchSession{SessionID: session.SessionID}
	if t := session.Token; t != nil {
		resp.Patient = t.Patient
		resp.User = t.User
		resp.Resource = t.Resource
		resp.Domain = t.Domain
		resp.ExpiresAt = t.ExpiresAt
		if withToken {
			resp.TokenType = t.TokenType
			resp.AccessToken = t.AccessToken
		}
	}
	return resp
}
