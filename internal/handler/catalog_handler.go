package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/service"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

// CatalogHandler serves the public course catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
	courses *service.CourseService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(catalog *service.CatalogService, courses *service.CourseService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, courses: courses}
}

// ListSubjects godoc
// @Summary List subjects with course counts
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalog.ListSubjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// ListCourses godoc
// @Summary List catalog courses
// @Tags Catalog
// @Produce json
// @Param subject query string false "Subject slug"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context(), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// FlushCache godoc
// @Summary Drop all catalog cache entries
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 204 "cache flushed"
// @Router /catalog/cache [delete]
func (h *CatalogHandler) FlushCache(c *gin.Context) {
	if err := h.catalog.FlushCache(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetCourse godoc
// @Summary Get course detail by slug
// @Tags Catalog
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} response.Envelope
// @Router /catalog/courses/{slug} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
