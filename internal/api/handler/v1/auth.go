package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/api/middleware"
	"github.com/ingetuto/ingetuto-api/internal/config"
	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/pkg/jwthelper"
	"github.com/ingetuto/ingetuto-api/internal/service"
)

type AuthService interface {
	CompleteLogin(ctx context.Context, identity domain.Identity) (domain.User, error)
	SwitchRole(ctx context.Context, userID uint, role string) (domain.User, error)
}

type TokenTracker interface {
	Track(token string, expiresAt time.Time)
	Revoke(token string, expiresAt time.Time)
}

type AuthHandler struct {
	apiConf  *config.APIConfig
	authConf *config.AuthConfig
	svc      AuthService
	uSvc     CurrentUserService
	tokens   TokenTracker
}

func NewAuthHandler(apiConf *config.APIConfig, authConf *config.AuthConfig, svc AuthService, uSvc CurrentUserService, tokens TokenTracker) *AuthHandler {
	return &AuthHandler{
		apiConf:  apiConf,
		authConf: authConf,
		svc:      svc,
		uSvc:     uSvc,
		tokens:   tokens,
	}
}

// issueToken signs a token and starts its inactivity window right away.
func (h *AuthHandler) issueToken(email, role string) (string, error) {
	expiresAt := time.Now().Add(h.authConf.TokenTTL)
	token, err := jwthelper.GenerateToken([]byte(h.apiConf.JWTSigningKey), email, role, h.authConf.TokenTTL)
	if err != nil {
		return "", err
	}
	h.tokens.Track(token, expiresAt)

	return token, nil
}

func (h *AuthHandler) redirectToFrontend(ctx *gin.Context, key, value string) {
	target := h.authConf.FrontendURL + "?" + url.Values{key: {value}}.Encode()
	ctx.Redirect(http.StatusFound, target)
}

// HandleOAuthComplete godoc
// @Summary      Finish an institutional login
// @Description  Registers the user on first login and redirects to the frontend with a token, or with a message when the account is rejected.
// @Tags         auth
// @Accept       json
// @Param        X-Callback-Secret  header  string                        true  "secret shared with the login bridge"
// @Param        request            body    request.OAuthCompleteRequest  true  "verified identity"
// @Success      302
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /auth/oauth/complete [post]
func (h *AuthHandler) HandleOAuthComplete(ctx *gin.Context) {
	var req request.OAuthCompleteRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.CompleteLogin(ctx.Request.Context(), req.Identity())
	if err != nil {
		if errors.Is(err, service.ErrEmailDomainNotAllowed) {
			h.redirectToFrontend(ctx, "message", err.Error())
			return
		}

		err = fmt.Errorf("v1.HandleOAuthComplete -> h.svc.CompleteLogin -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := h.issueToken(user.Email, user.DefaultRole())
	if err != nil {
		err = fmt.Errorf("v1.HandleOAuthComplete -> h.issueToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	zap.L().Info("user signed in", zap.Uint("user_id", user.ID), zap.String("role", user.DefaultRole()))
	h.redirectToFrontend(ctx, "token", token)
}

// HandleMe godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.MeResponse
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /auth/me [get]
// @Security BearerAuth
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, response.MeResponse{
		User:       user,
		ActiveRole: ctx.GetString(middleware.ContextKeyActiveRole),
	})
}

// HandleSwitchRole godoc
// @Summary      Switch the active role
// @Description  Issues a new token carrying another role the user already holds.
// @Tags         auth
// @Produce      json
// @Param        targetRole  query     string  true  "role name"
// @Success      200         {object}  response.TokenResponse
// @Failure      400         {object}  response.Err
// @Failure      401         {object}  response.Err
// @Failure      403         {object}  response.Err
// @Failure      500         {object}  response.Err
// @Router       /auth/switch-role [post]
// @Security BearerAuth
func (h *AuthHandler) HandleSwitchRole(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SwitchRoleRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.SwitchRole(ctx.Request.Context(), user.ID, req.TargetRole)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSwitchRole -> h.svc.SwitchRole", err)
		return
	}

	token, err := h.issueToken(user.Email, req.TargetRole)
	if err != nil {
		err = fmt.Errorf("v1.HandleSwitchRole -> h.issueToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	// The old token must not outlive the switch.
	h.tokens.Revoke(ctx.GetString(middleware.ContextKeyToken), ctx.GetTime(middleware.ContextKeyTokenExpiry))

	ctx.JSON(http.StatusOK, response.TokenResponse{Token: token})
}

// HandleLogout godoc
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.MessageResponse
// @Failure      401  {object}  response.Err
// @Router       /auth/logout [post]
// @Security BearerAuth
func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	h.tokens.Revoke(ctx.GetString(middleware.ContextKeyToken), ctx.GetTime(middleware.ContextKeyTokenExpiry))

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "session closed"})
}
