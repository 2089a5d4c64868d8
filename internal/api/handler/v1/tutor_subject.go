package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

type TutorSubjectService interface {
	Mine(ctx context.Context, tutorID uint) ([]domain.TutorSubject, error)
	Remove(ctx context.Context, tutorID, linkID uint) (bool, error)
}

type TutorSubjectHandler struct {
	svc  TutorSubjectService
	uSvc CurrentUserService
}

func NewTutorSubjectHandler(svc TutorSubjectService, uSvc CurrentUserService) *TutorSubjectHandler {
	return &TutorSubjectHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleMySubjects godoc
// @Summary      Subjects the caller tutors
// @Tags         tutor-subjects
// @Produce      json
// @Success      200  {array}   domain.TutorSubject
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tutor-subjects/my-subjects [get]
// @Security BearerAuth
func (h *TutorSubjectHandler) HandleMySubjects(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	links, err := h.svc.Mine(ctx.Request.Context(), user.ID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleMySubjects -> h.svc.Mine", err)
		return
	}

	ctx.JSON(http.StatusOK, links)
}

// HandleRemoveSubject godoc
// @Summary      Stop tutoring a subject
// @Description  Removing the last subject revokes the TUTOR role and all availability.
// @Tags         tutor-subjects
// @Produce      json
// @Param        linkID  path      int  true  "tutor subject ID"
// @Success      200     {object}  response.RemoveSubjectResponse
// @Failure      400     {object}  response.Err
// @Failure      403     {object}  response.Err
// @Failure      404     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /tutor-subjects/{linkID} [delete]
// @Security BearerAuth
func (h *TutorSubjectHandler) HandleRemoveSubject(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	linkID, respErr := parseIDParam(ctx, "linkID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	revoked, err := h.svc.Remove(ctx.Request.Context(), user.ID, linkID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleRemoveSubject -> h.svc.Remove", err)
		return
	}

	msg := "subject removed"
	if revoked {
		msg = "subject removed, the tutor role was revoked because no subjects remain"
	}

	ctx.JSON(http.StatusOK, response.RemoveSubjectResponse{Message: msg, TutorRevoked: revoked})
}
