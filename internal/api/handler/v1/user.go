package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/api/middleware"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type UserService interface {
	CurrentUserService
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdatePhone(ctx context.Context, actorID, userID uint, phone string) (domain.User, error)
	UpdateRoles(ctx context.Context, actorRole string, userID uint, roleNames []string) (domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleUpdatePhone godoc
// @Summary      Update the caller's phone number
// @Tags         users
// @Produce      json
// @Param        phoneNumber  query     string  true  "10 digit phone number"
// @Param        userId       query     int     true  "user ID, must be the caller"
// @Success      200          {object}  domain.User
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      403          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /usuarios/phone [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdatePhone(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdatePhoneRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdatePhone(ctx.Request.Context(), user.ID, req.UserID, req.PhoneNumber)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdatePhone -> h.svc.UpdatePhone", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /admin/users [get]
// @Security BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListUsers -> h.svc.ListUsers", err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleUpdateRoles godoc
// @Summary      Replace a user's roles
// @Description  Removing TUTOR revokes the user's subjects, availability and approved applications.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userID   path      int                         true  "user ID"
// @Param        request  body      request.UpdateRolesRequest  true  "role names"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /admin/users/{userID}/roles [put]
// @Security BearerAuth
func (h *UserHandler) HandleUpdateRoles(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateRolesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.UpdateRoles(ctx.Request.Context(), ctx.GetString(middleware.ContextKeyActiveRole), userID, req)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateRoles -> h.svc.UpdateRoles", err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleDeleteUser godoc
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Param        userID  path      int  true  "user ID"
// @Success      200     {object}  response.MessageResponse
// @Failure      400     {object}  response.Err
// @Failure      401     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      409     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /admin/users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	userID, respErr := parseIDParam(ctx, "userID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), userID); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteUser -> h.svc.DeleteUser", err)
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "user deleted"})
}
