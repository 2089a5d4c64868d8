package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/api/middleware"
	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/service"
)

var errUnknownCaller = errors.New("the token does not belong to a registered user")

// CurrentUserService resolves the caller of an authenticated request.
type CurrentUserService interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, uSvc CurrentUserService) (domain.User, *response.Err) {
	email := ctx.GetString(middleware.ContextKeyEmail)
	if email == "" {
		return domain.User{}, response.ErrUnauthorized(errUnknownCaller)
	}

	user, err := uSvc.GetByEmail(ctx.Request.Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(errUnknownCaller)
		}

		err = fmt.Errorf("getUserFromContext -> uSvc.GetByEmail -> %w", err)
		return domain.User{}, response.ErrInternalServerError(err)
	}

	return user, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return uint(id), nil
}

var (
	notFoundErrs = []error{
		service.ErrUserNotFound,
		service.ErrSubjectNotFound,
		service.ErrTutorRequestNotFound,
		service.ErrTutorSubjectNotFound,
		service.ErrBlockNotFound,
		service.ErrSessionNotFound,
		service.ErrFileNotFound,
	}
	forbiddenErrs = []error{
		service.ErrPermissionDenied,
		service.ErrCannotGrant,
		service.ErrRoleNotHeld,
	}
	conflictErrs = []error{
		service.ErrUserEmailExists,
		service.ErrSubjectCodeExists,
		service.ErrSubjectInUse,
		service.ErrUserHasSessions,
		service.ErrTutorRequestDuplicate,
		service.ErrTutorRequestReviewed,
		service.ErrBlockLocked,
		service.ErrMonthHasBookings,
		service.ErrBlockExists,
		service.ErrBlockNotAvailable,
		service.ErrScheduleConflict,
		service.ErrSessionStateChanged,
		service.ErrInvalidTransition,
		service.ErrAlreadyConfirmed,
	}
	badRequestErrs = []error{
		service.ErrInvalidInput,
		service.ErrEmailDomainNotAllowed,
		service.ErrInvalidPhone,
		service.ErrUnknownRole,
		service.ErrObservationRequired,
		service.ErrInvalidRequestStatus,
		service.ErrInvalidFileName,
		service.ErrNoTutorSubjects,
		service.ErrInvalidBlock,
		service.ErrDuplicateBlock,
		service.ErrEmptyTemplate,
		service.ErrRegistrationClosed,
		service.ErrInvalidMonth,
		service.ErrInvalidDateRange,
		service.ErrOwnBlock,
		service.ErrTutorNotForSubject,
		service.ErrBlockInPast,
		service.ErrTopicRequired,
		service.ErrLinkRequired,
		service.ErrReasonRequired,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}

	return false
}

// renderServiceErr turns a service error into the matching HTTP response.
// Anything unrecognised is a 500 and is logged with op as context.
func renderServiceErr(ctx *gin.Context, op string, err error) {
	var respErr *response.Err
	switch {
	case isAny(err, notFoundErrs):
		respErr = &response.Err{StatusCode: http.StatusNotFound, Message: err.Error(), Error: err.Error()}
	case isAny(err, forbiddenErrs):
		respErr = response.ErrPermissionDenied(err)
	case isAny(err, conflictErrs):
		respErr = response.ErrConflict(err)
	case isAny(err, badRequestErrs):
		respErr = response.ErrBadRequest(err)
	default:
		respErr = response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
	}

	response.RenderErr(ctx, respErr)
}

// HandleHealthcheck godoc
// @Summary      Healthcheck
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.MessageResponse
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "OK"})
}
