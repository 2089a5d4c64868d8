package v1

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/request"
	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/service"
)

type TutorRequestService interface {
	Submit(ctx context.Context, applicant domain.User, subjectID uint, record, support service.Upload) (domain.TutorRequest, error)
	Mine(ctx context.Context, applicantID uint) ([]domain.TutorRequest, error)
	Pending(ctx context.Context) ([]domain.TutorRequest, error)
	History(ctx context.Context) ([]domain.TutorRequest, error)
	Review(ctx context.Context, id uint, status domain.RequestStatus, observation string) (domain.TutorRequest, error)
	FilePath(name string) (string, error)
}

type TutorRequestHandler struct {
	svc  TutorRequestService
	uSvc CurrentUserService
}

func NewTutorRequestHandler(svc TutorRequestService, uSvc CurrentUserService) *TutorRequestHandler {
	return &TutorRequestHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleSubmit godoc
// @Summary      Apply to tutor a subject
// @Tags         tutor-requests
// @Accept       multipart/form-data
// @Produce      json
// @Param        idMateria          formData  int   true  "subject ID"
// @Param        historiaAcademica  formData  file  true  "academic record"
// @Param        archivoSoporte     formData  file  true  "supporting document"
// @Success      201  {object}  domain.TutorRequest
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutor-requests [post]
// @Security BearerAuth
func (h *TutorRequestHandler) HandleSubmit(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SubmitTutorRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := req.AcademicRecord.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer record.Close()

	support, err := req.SupportFile.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer support.Close()

	created, err := h.svc.Submit(ctx.Request.Context(), user, req.SubjectID,
		upload(req.AcademicRecord, record),
		upload(req.SupportFile, support),
	)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSubmit -> h.svc.Submit", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func upload(fh *multipart.FileHeader, f multipart.File) service.Upload {
	return service.Upload{Name: fh.Filename, Content: f}
}

// HandleMine godoc
// @Summary      The caller's applications
// @Tags         tutor-requests
// @Produce      json
// @Success      200  {array}   domain.TutorRequest
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutor-requests/my-requests [get]
// @Security BearerAuth
func (h *TutorRequestHandler) HandleMine(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reqs, err := h.svc.Mine(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleMine -> h.svc.Mine", err)
		return
	}

	ctx.JSON(http.StatusOK, reqs)
}

// HandlePending godoc
// @Summary      Applications waiting for review
// @Tags         tutor-requests
// @Produce      json
// @Success      200  {array}   domain.TutorRequest
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutor-requests/pending [get]
// @Security BearerAuth
func (h *TutorRequestHandler) HandlePending(ctx *gin.Context) {
	reqs, err := h.svc.Pending(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandlePending -> h.svc.Pending", err)
		return
	}

	ctx.JSON(http.StatusOK, reqs)
}

// HandleHistory godoc
// @Summary      Reviewed applications
// @Tags         tutor-requests
// @Produce      json
// @Success      200  {array}   domain.TutorRequest
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutor-requests/history [get]
// @Security BearerAuth
func (h *TutorRequestHandler) HandleHistory(ctx *gin.Context) {
	reqs, err := h.svc.History(ctx.Request.Context())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleHistory -> h.svc.History", err)
		return
	}

	ctx.JSON(http.StatusOK, reqs)
}

// HandleReview godoc
// @Summary      Approve or deny an application
// @Tags         tutor-requests
// @Accept       json
// @Produce      json
// @Param        requestID  path      int                         true  "application ID"
// @Param        request    body      request.ReviewTutorRequest  true  "decision"
// @Success      200        {object}  domain.TutorRequest
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Failure      500        {object}  response.Err
// @Router       /tutor-requests/{requestID}/status [put]
// @Security BearerAuth
func (h *TutorRequestHandler) HandleReview(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "requestID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReviewTutorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reviewed, err := h.svc.Review(ctx.Request.Context(), id, req.Status, req.Observation)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleReview -> h.svc.Review", err)
		return
	}

	ctx.JSON(http.StatusOK, reviewed)
}

// HandleDownload godoc
// @Summary      Download an application document
// @Tags         tutor-requests
// @Produce      octet-stream
// @Param        fileName  path  string  true  "stored file name"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /tutor-requests/download/{fileName} [get]
// @Security BearerAuth
func (h *TutorRequestHandler) HandleDownload(ctx *gin.Context) {
	name := ctx.Param("fileName")
	path, err := h.svc.FilePath(name)
	if err != nil {
		renderServiceErr(ctx, fmt.Sprintf("v1.HandleDownload(%s) -> h.svc.FilePath", name), err)
		return
	}

	ctx.FileAttachment(path, name)
}
