package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID string) error
	ListMyCourses(ctx context.Context, studentID string) ([]models.CourseDetail, error)
}

// EnrollmentHandler handles student enrollment endpoints.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll the authenticated student in a course
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Enroll(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"enrolled": true}, nil)
}

// ListMine godoc
// @Summary List the authenticated student's courses
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments/mine [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courses, err := h.service.ListMyCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
