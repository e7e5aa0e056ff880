package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/service"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

// ExportHandler streams syllabus exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Syllabus godoc
// @Summary Download the course syllabus
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param format query string false "Export format" Enums(csv, pdf) default(csv)
// @Success 200 {file} file
// @Router /courses/{slug}/syllabus [get]
func (h *ExportHandler) Syllabus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	file, err := h.service.Syllabus(c.Request.Context(), claims.UserID, claims.Role, c.Param("slug"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Data)
}
