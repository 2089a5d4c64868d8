package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type SubjectService interface {
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
	GetSubject(ctx context.Context, id uint) (domain.Subject, error)
	CreateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error)
	UpdateSubject(ctx context.Context, subject domain.Subject) (domain.Subject, error)
	DeleteSubject(ctx context.Context, id uint) error
	CheckCode(ctx context.Context, code string) (domain.CodeCheck, error)
}

type SubjectHandler struct {
	svc SubjectService
}

func NewSubjectHandler(svc SubjectService) *SubjectHandler {
	return &SubjectHandler{
		svc: svc,
	}
}

// HandleListSubjects godoc
// @Summary      List subjects
// @Tags         subjects
// @Produce      json
// @Success      200  {array}   domain.Subject
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /materias [get]
// @Security BearerAuth
func (h *SubjectHandler) HandleListSubjects(ctx *gin.Context) {
	subjects, err := h.svc.ListSubjects(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListSubjects -> h.svc.ListSubjects", err)
		return
	}

	ctx.JSON(http.StatusOK, subjects)
}

// HandleGetSubject godoc
// @Summary      Get a subject
// @Tags         subjects
// @Produce      json
// @Param        subjectID  path      int  true  "subject ID"
// @Success      200        {object}  domain.Subject
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /materias/{subjectID} [get]
// @Security BearerAuth
func (h *SubjectHandler) HandleGetSubject(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "subjectID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	subject, err := h.svc.GetSubject(ctx.Request.Context(), id)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetSubject -> h.svc.GetSubject", err)
		return
	}

	ctx.JSON(http.StatusOK, subject)
}

// HandleCreateSubject godoc
// @Summary      Create a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Param        request  body      request.SubjectRequest  true  "subject"
// @Success      201      {object}  domain.Subject
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /materias [post]
// @Security BearerAuth
func (h *SubjectHandler) HandleCreateSubject(ctx *gin.Context) {
	var req request.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	subject, err := h.svc.CreateSubject(ctx.Request.Context(), req.Subject())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateSubject -> h.svc.CreateSubject", err)
		return
	}

	ctx.JSON(http.StatusCreated, subject)
}

// HandleUpdateSubject godoc
// @Summary      Update a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Param        subjectID  path      int                     true  "subject ID"
// @Param        request    body      request.SubjectRequest  true  "subject"
// @Success      200        {object}  domain.Subject
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /materias/{subjectID} [put]
// @Security BearerAuth
func (h *SubjectHandler) HandleUpdateSubject(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "subjectID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	subject := req.Subject()
	subject.ID = id

	subject, err := h.svc.UpdateSubject(ctx.Request.Context(), subject)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateSubject -> h.svc.UpdateSubject", err)
		return
	}

	ctx.JSON(http.StatusOK, subject)
}

// HandleDeleteSubject godoc
// @Summary      Delete a subject
// @Tags         subjects
// @Produce      json
// @Param        subjectID  path      int  true  "subject ID"
// @Success      200        {object}  response.MessageResponse
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /materias/{subjectID} [delete]
// @Security BearerAuth
func (h *SubjectHandler) HandleDeleteSubject(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "subjectID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteSubject(ctx.Request.Context(), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteSubject -> h.svc.DeleteSubject", err)
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "subject deleted"})
}

// HandleCheckCode godoc
// @Summary      Check whether a subject code is taken
// @Tags         subjects
// @Produce      json
// @Param        code  path      string  true  "subject code"
// @Success      200   {object}  domain.CodeCheck
// @Failure      500   {object}  response.Err
// @Router       /materias/verificar-codigo/{code} [get]
// @Security BearerAuth
func (h *SubjectHandler) HandleCheckCode(ctx *gin.Context) {
	check, err := h.svc.CheckCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCheckCode -> h.svc.CheckCode", err)
		return
	}

	ctx.JSON(http.StatusOK, check)
}
