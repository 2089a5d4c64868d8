package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type AvailabilityService interface {
	SaveWeeklyTemplate(ctx context.Context, tutorID uint, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error)
	WeeklyTemplate(ctx context.Context, tutorID uint) ([]domain.WeeklyBlock, error)
	GenerateMonthly(ctx context.Context, tutorID uint, year int, month time.Month) (domain.GenerationResult, error)
	Monthly(ctx context.Context, tutorID uint, year int, month time.Month) ([]domain.MonthlyBlock, error)
	ValidateMonth(ctx context.Context, tutorID uint, year int, month time.Month) (domain.MonthValidation, error)
	DeleteBlock(ctx context.Context, tutorID, blockID uint) error
	ChangeModality(ctx context.Context, tutorID, blockID uint, modality domain.Modality) (domain.MonthlyBlock, error)
	BySubject(ctx context.Context, subjectID uint, from, to domain.Date) ([]domain.MonthlyBlock, error)
}

type AvailabilityHandler struct {
	svc  AvailabilityService
	uSvc CurrentUserService
}

func NewAvailabilityHandler(svc AvailabilityService, uSvc CurrentUserService) *AvailabilityHandler {
	return &AvailabilityHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleSaveWeeklyTemplate godoc
// @Summary      Replace the weekly template
// @Description  Every block lasts one hour between 06:00 and 22:00; the tutor needs at least one subject.
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request  body      request.WeeklyTemplateRequest  true  "weekly blocks"
// @Success      200      {array}   domain.WeeklyBlock
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /disponibilidad/plantilla-semanal [post]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleSaveWeeklyTemplate(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.WeeklyTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	saved, err := h.svc.SaveWeeklyTemplate(ctx.Request.Context(), user.ID, req.Blocks())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSaveWeeklyTemplate -> h.svc.SaveWeeklyTemplate", err)
		return
	}

	ctx.JSON(http.StatusOK, saved)
}

// HandleWeeklyTemplate godoc
// @Summary      The caller's weekly template
// @Tags         availability
// @Produce      json
// @Success      200  {array}   domain.WeeklyBlock
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /disponibilidad/plantilla-semanal [get]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleWeeklyTemplate(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	blocks, err := h.svc.WeeklyTemplate(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleWeeklyTemplate -> h.svc.WeeklyTemplate", err)
		return
	}

	ctx.JSON(http.StatusOK, blocks)
}

// HandleGenerateMonthly godoc
// @Summary      Generate the month from the weekly template
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request  body      request.MonthRequest  true  "month and year"
// @Success      200      {object}  domain.GenerationResult
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /disponibilidad/generar-mensual [post]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleGenerateMonthly(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MonthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.GenerateMonthly(ctx.Request.Context(), user.ID, req.Year, req.TimeMonth())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGenerateMonthly -> h.svc.GenerateMonthly", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleMonthly godoc
// @Summary      The caller's blocks for a month
// @Tags         availability
// @Produce      json
// @Param        month  path      int  true  "month, 1-12"
// @Param        year   path      int  true  "year"
// @Success      200    {array}   domain.MonthlyBlock
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /disponibilidad/mensual/{month}/{year} [get]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleMonthly(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	month, _ := strconv.Atoi(ctx.Param("month"))
	year, _ := strconv.Atoi(ctx.Param("year"))
	req := request.MonthRequest{Month: month, Year: year}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	blocks, err := h.svc.Monthly(ctx.Request.Context(), user.ID, req.Year, req.TimeMonth())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleMonthly -> h.svc.Monthly", err)
		return
	}

	ctx.JSON(http.StatusOK, blocks)
}

// HandleValidateMonth godoc
// @Summary      Check a month before confirming it
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        request  body      request.MonthRequest  true  "month and year"
// @Success      200      {object}  domain.MonthValidation
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /disponibilidad/validar-confirmar [post]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleValidateMonth(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MonthRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ValidateMonth(ctx.Request.Context(), user.ID, req.Year, req.TimeMonth())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleValidateMonth -> h.svc.ValidateMonth", err)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleDeleteBlock godoc
// @Summary      Delete one of the caller's blocks
// @Tags         availability
// @Produce      json
// @Param        blockID  path      int  true  "block ID"
// @Success      200      {object}  response.MessageResponse
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /disponibilidad/bloque/{blockID} [delete]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleDeleteBlock(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	blockID, respErr := parseIDParam(ctx, "blockID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteBlock(ctx.Request.Context(), user.ID, blockID); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteBlock -> h.svc.DeleteBlock", err)
		return
	}

	ctx.JSON(http.StatusOK, response.MessageResponse{Message: "block deleted"})
}

// HandleChangeModality godoc
// @Summary      Change a block's modality
// @Tags         availability
// @Accept       json
// @Produce      json
// @Param        blockID  path      int                      true  "block ID"
// @Param        request  body      request.ModalityRequest  true  "modality"
// @Success      200      {object}  domain.MonthlyBlock
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /disponibilidad/bloque/{blockID}/modalidad [patch]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleChangeModality(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	blockID, respErr := parseIDParam(ctx, "blockID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ModalityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	block, err := h.svc.ChangeModality(ctx.Request.Context(), user.ID, blockID, req.Modality)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleChangeModality -> h.svc.ChangeModality", err)
		return
	}

	ctx.JSON(http.StatusOK, block)
}

// HandleBySubject godoc
// @Summary      Open blocks for a subject
// @Description  DISPONIBLE blocks of every tutor of the subject, ordered by date and start.
// @Tags         availability
// @Produce      json
// @Param        subjectID    path      int     true  "subject ID"
// @Param        fechaInicio  query     string  true  "first day, YYYY-MM-DD"
// @Param        fechaFin     query     string  true  "last day, YYYY-MM-DD"
// @Success      200          {array}   domain.MonthlyBlock
// @Failure      400          {object}  response.Err
// @Failure      500          {object}  response.Err
// @Router       /disponibilidad/por-materia/{subjectID} [get]
// @Security BearerAuth
func (h *AvailabilityHandler) HandleBySubject(ctx *gin.Context) {
	subjectID, respErr := parseIDParam(ctx, "subjectID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.DateRangeRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	from, to := req.Dates()
	blocks, err := h.svc.BySubject(ctx.Request.Context(), subjectID, from, to)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleBySubject -> h.svc.BySubject", err)
		return
	}

	ctx.JSON(http.StatusOK, blocks)
}
