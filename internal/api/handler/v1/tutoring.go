package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type TutoringService interface {
	Reserve(ctx context.Context, studentID, blockID, subjectID uint, topic string) (domain.TutoringSession, error)
	ForStudent(ctx context.Context, studentID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error)
	ForTutor(ctx context.Context, tutorID uint, statuses []domain.SessionStatus) ([]domain.TutoringSession, error)
	SetLink(ctx context.Context, tutorID, id uint, link string) (domain.TutoringSession, error)
	Cancel(ctx context.Context, userID, id uint, reason string) (domain.TutoringSession, error)
	Confirm(ctx context.Context, userID, id uint, asStudent bool) (domain.TutoringSession, error)
	PendingReview(ctx context.Context) ([]domain.TutoringSession, error)
	Review(ctx context.Context, id uint, held bool) (domain.TutoringSession, error)
}

type TutoringHandler struct {
	svc  TutoringService
	uSvc CurrentUserService
}

func NewTutoringHandler(svc TutoringService, uSvc CurrentUserService) *TutoringHandler {
	return &TutoringHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleReserve godoc
// @Summary      Book an open block
// @Tags         tutoring
// @Accept       json
// @Produce      json
// @Param        request  body      request.ReserveRequest  true  "block, subject and topic"
// @Success      201      {object}  domain.TutoringSession
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tutorias/reservar [post]
// @Security BearerAuth
func (h *TutoringHandler) HandleReserve(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReserveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.Reserve(ctx.Request.Context(), user.ID, req.BlockID, req.SubjectID, req.Topic)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleReserve -> h.svc.Reserve", err)
		return
	}

	ctx.JSON(http.StatusCreated, session)
}

// HandleStudentSessions godoc
// @Summary      The caller's booked sessions
// @Tags         tutoring
// @Produce      json
// @Param        estados  query     string  false  "comma separated statuses"
// @Success      200      {array}   domain.TutoringSession
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tutorias/estudiante [get]
// @Security BearerAuth
func (h *TutoringHandler) HandleStudentSessions(ctx *gin.Context) {
	h.listSessions(ctx, true)
}

// HandleTutorSessions godoc
// @Summary      Sessions assigned to the caller
// @Tags         tutoring
// @Produce      json
// @Param        estados  query     string  false  "comma separated statuses"
// @Success      200      {array}   domain.TutoringSession
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /tutorias/tutor [get]
// @Security BearerAuth
func (h *TutoringHandler) HandleTutorSessions(ctx *gin.Context) {
	h.listSessions(ctx, false)
}

func (h *TutoringHandler) listSessions(ctx *gin.Context, asStudent bool) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	statuses, err := request.ParseStatuses(ctx.QueryArray("estados"))
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var sessions []domain.TutoringSession
	if asStudent {
		sessions, err = h.svc.ForStudent(ctx.Request.Context(), user.ID, statuses)
	} else {
		sessions, err = h.svc.ForTutor(ctx.Request.Context(), user.ID, statuses)
	}
	if err != nil {
		renderServiceErr(ctx, "v1.listSessions", err)
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}

// HandleSetLink godoc
// @Summary      Attach the meeting link
// @Description  Moves a RESERVADA session to PROGRAMADA.
// @Tags         tutoring
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                  true  "session ID"
// @Param        request    body      request.LinkRequest  true  "meeting link"
// @Success      200        {object}  domain.TutoringSession
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutorias/{sessionID}/link [put]
// @Security BearerAuth
func (h *TutoringHandler) HandleSetLink(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseIDParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.LinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.SetLink(ctx.Request.Context(), user.ID, id, req.Link)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSetLink -> h.svc.SetLink", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleCancel godoc
// @Summary      Cancel a session
// @Tags         tutoring
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                    true  "session ID"
// @Param        request    body      request.CancelRequest  true  "reason"
// @Success      200        {object}  domain.TutoringSession
// @Failure      400        {object}  response.Err
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutorias/{sessionID}/cancelar [put]
// @Security BearerAuth
func (h *TutoringHandler) HandleCancel(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseIDParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CancelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.Cancel(ctx.Request.Context(), user.ID, id, req.Observations)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCancel -> h.svc.Cancel", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandleConfirmAsStudent godoc
// @Summary      Student confirms the session took place
// @Tags         tutoring
// @Produce      json
// @Param        sessionID  path      int  true  "session ID"
// @Success      200        {object}  domain.TutoringSession
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutorias/{sessionID}/confirmar-estudiante [put]
// @Security BearerAuth
func (h *TutoringHandler) HandleConfirmAsStudent(ctx *gin.Context) {
	h.confirm(ctx, true)
}

// HandleConfirmAsTutor godoc
// @Summary      Tutor confirms the session took place
// @Tags         tutoring
// @Produce      json
// @Param        sessionID  path      int  true  "session ID"
// @Success      200        {object}  domain.TutoringSession
// @Failure      403        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutorias/{sessionID}/confirmar-tutor [put]
// @Security BearerAuth
func (h *TutoringHandler) HandleConfirmAsTutor(ctx *gin.Context) {
	h.confirm(ctx, false)
}

func (h *TutoringHandler) confirm(ctx *gin.Context, asStudent bool) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := parseIDParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	session, err := h.svc.Confirm(ctx.Request.Context(), user.ID, id, asStudent)
	if err != nil {
		renderServiceErr(ctx, "v1.confirm -> h.svc.Confirm", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// HandlePendingReview godoc
// @Summary      Sessions nobody confirmed in time
// @Tags         tutoring
// @Produce      json
// @Success      200  {array}   domain.TutoringSession
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutorias/pendientes-revision [get]
// @Security BearerAuth
func (h *TutoringHandler) HandlePendingReview(ctx *gin.Context) {
	sessions, err := h.svc.PendingReview(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandlePendingReview -> h.svc.PendingReview", err)
		return
	}

	ctx.JSON(http.StatusOK, sessions)
}

// HandleReviewSession godoc
// @Summary      Settle an unconfirmed session
// @Tags         tutoring
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int                           true  "session ID"
// @Param        request    body      request.ReviewSessionRequest  true  "whether it took place"
// @Success      200        {object}  domain.TutoringSession
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutorias/{sessionID}/revision [put]
// @Security BearerAuth
func (h *TutoringHandler) HandleReviewSession(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "sessionID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReviewSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	session, err := h.svc.Review(ctx.Request.Context(), id, *req.Held)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleReviewSession -> h.svc.Review", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}
