package exceptions

import (
	"fmt"
	"koppeltaal-service/internal/pkg/constvars"
)

var (
	ErrInputValidation = func(err error) *CustomError {
		customErr := buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed+": "+FormatAllValidationErrors(err))
		customErr.cause = err
		return customErr
	}
	ErrInvalidResourceURL = func(err error, raw string) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevInvalidResourceURL, raw))
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotParseJSON)
	}
	ErrDecodeResponse = func(err error, what string) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusBadGateway, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevDecodeResponse, what))
	}
	ErrCreateHTTPRequest = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCreateHTTPRequest)
	}
	ErrSendHTTPRequest = func(err error) *CustomError {
		return buildWithKind(err, KindTransportFailure, constvars.StatusBadGateway, constvars.ErrClientServerLongRespond, constvars.ErrDevSendHTTPRequest)
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return buildWithKind(err, KindTransportFailure, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrServerUnavailable = func(err error, statusCode int) *CustomError {
		return buildWithKind(err, KindTransportFailure, statusCode, constvars.ErrClientServerLongRespond, fmt.Sprintf(constvars.ErrDevServerUnavailable, statusCode))
	}

	ErrAuthenticationFailure = func(err error, principal string) *CustomError {
		return buildWithKind(err, KindAuthenticationFailure, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevAuthenticationFailed, principal))
	}
	ErrOAuthError = func(err error, code string) *CustomError {
		return buildWithKind(err, KindAuthenticationFailure, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevOAuthError, code))
	}
	ErrVersionConflict = func(err error, ref string) *CustomError {
		return buildWithKind(err, KindVersionConflict, constvars.StatusConflict, constvars.ErrClientVersionConflict, fmt.Sprintf(constvars.ErrDevVersionConflict, ref))
	}
	ErrNotFound = func(err error, what string) *CustomError {
		return buildWithKind(err, KindNotFound, constvars.StatusNotFound, constvars.ErrClientNotFound, fmt.Sprintf(constvars.ErrDevNotFound, what))
	}
	ErrProtocolViolation = func(err error, detail string) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusUnprocessableEntity, constvars.ErrClientProtocolViolation, fmt.Sprintf(constvars.ErrDevProtocolViolation, detail))
	}
	ErrIllegalStatusTransition = func(from, to string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusUnprocessableEntity, constvars.ErrClientProtocolViolation, fmt.Sprintf(constvars.ErrDevIllegalStatusTransition, from, to))
	}
	ErrTokenNotRotated = func(which string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadGateway, constvars.ErrClientProtocolViolation, fmt.Sprintf(constvars.ErrDevTokenNotRotated, which))
	}
	ErrMissingEndpoint = func(which string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadGateway, constvars.ErrClientProtocolViolation, fmt.Sprintf(constvars.ErrDevMissingEndpoint, which))
	}
	ErrLaunchLocationInvalid = func(err error, what string) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusBadGateway, constvars.ErrClientProtocolViolation, fmt.Sprintf(constvars.ErrDevLaunchLocationInvalid, what))
	}

	// server answered with a status the client has no dedicated constructor for
	ErrServerProcess = func(err error, statusCode int) *CustomError {
		return BuildNewCustomError(err, statusCode, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevServerProcess)
	}

	ErrBuilderFinished = func() *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevBuilderFinished)
	}
	ErrBuilderUnresolvedReference = func(ref, owner string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevBuilderUnresolvedReference, ref, owner))
	}
	ErrBuilderDuplicateLogicalID = func(id string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevBuilderDuplicateLogicalID, id))
	}
	ErrBuilderUnknownParent = func(resourceType, id string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevBuilderUnknownParent, resourceType, id))
	}
	ErrBuilderMissingRequirement = func(event, requirement string) *CustomError {
		return buildWithKind(nil, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevBuilderMissingRequirement, event, requirement))
	}

	ErrInvalidLaunch = func(err error) *CustomError {
		return buildWithKind(err, KindProtocolViolation, constvars.StatusBadRequest, constvars.ErrClientInvalidLaunch, constvars.ErrDevValidationFailed)
	}
	ErrIssuerMismatch = func(issuer string) *CustomError {
		return buildWithKind(nil, KindAuthenticationFailure, constvars.StatusBadRequest, constvars.ErrClientInvalidLaunch, fmt.Sprintf(constvars.ErrDevIssuerMismatch, issuer))
	}
	ErrStateInvalid = func(err error) *CustomError {
		return buildWithKind(err, KindAuthenticationFailure, constvars.StatusBadRequest, constvars.ErrClientInvalidLaunch, constvars.ErrDevStateInvalid)
	}
	ErrSessionNotFound = func(err error) *CustomError {
		return buildWithKind(err, KindNotFound, constvars.StatusNotFound, constvars.ErrClientSessionNotFound, fmt.Sprintf(constvars.ErrDevNotFound, "launch session"))
	}
	ErrInvalidAPIKey = func(err error) *CustomError {
		return buildWithKind(err, KindAuthenticationFailure, constvars.StatusUnauthorized, constvars.ErrClientNotAuthorized, constvars.ErrDevInvalidAPIKey)
	}

	ErrRedisGetNoData = func(err error, key string) *CustomError {
		return buildWithKind(err, KindNotFound, constvars.StatusNotFound, constvars.ErrClientNotFound, fmt.Sprintf(constvars.ErrDevRedisGetNoData, key))
	}
	ErrRedisSetData = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData)
	}
	ErrRedisGetData = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisGetData)
	}
	ErrRedisDeleteData = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData)
	}
	ErrRedisUnlock = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisUnlock)
	}
	ErrRedisSortedSet = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSortedSet)
	}
	ErrMongoDBUpsertDocument = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBUpsertDocument)
	}
	ErrMongoDBFindDocument = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBFindDocument)
	}
	ErrMongoDBIterateDocuments = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMongoDBIterateDocuments)
	}
	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioFailedToCreateObject, bucketName))
	}
	ErrRabbitMQPublish = func(err error, queueName string) *CustomError {
		return buildWithKind(err, KindTransportFailure, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQFailedToPublish, queueName))
	}
	ErrTokenStoreSeal = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevTokenStoreSeal)
	}
	ErrTokenStoreOpen = func(err error) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevTokenStoreOpen)
	}
	ErrStaleClaimPolicy = func(err error, ref string) *CustomError {
		return buildWithKind(err, KindInternal, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevStaleClaimPolicy, ref))
	}
)
