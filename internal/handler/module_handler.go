package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

// reorderAck is the body acknowledged to the drag-and-drop client.
var reorderAck = gin.H{"saved": "OK"}

type moduleService interface {
	ListByCourse(ctx context.Context, userID string, role models.UserRole, courseID string) ([]models.ModuleDetail, error)
	Create(ctx context.Context, ownerID, courseID string, req models.CreateModuleRequest) (*models.Module, error)
	Update(ctx context.Context, ownerID, moduleID string, req models.UpdateModuleRequest) (*models.Module, error)
	Delete(ctx context.Context, ownerID, moduleID string) error
	Reorder(ctx context.Context, ownerID string, req models.ReorderRequest) (*models.ReorderResult, error)
}

// ModuleHandler handles module authoring and outline endpoints.
type ModuleHandler struct {
	service moduleService
}

// NewModuleHandler constructs a module handler.
func NewModuleHandler(svc moduleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// ListByCourse godoc
// @Summary List the modules of a course
// @Tags Modules
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/modules [get]
func (h *ModuleHandler) ListByCourse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	modules, err := h.service.ListByCourse(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Create godoc
// @Summary Append a module to an owned course
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param payload body models.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.service.Create(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}

// Update godoc
// @Summary Update an owned module
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param payload body models.UpdateModuleRequest true "Module payload"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [put]
func (h *ModuleHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	module, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

// Delete godoc
// @Summary Delete an owned module and its contents
// @Tags Modules
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 204 "No Content"
// @Router /modules/{id} [delete]
func (h *ModuleHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder modules in bulk
// @Tags Modules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ReorderRequest true "Module ID to position mapping"
// @Success 200 {object} response.Envelope
// @Router /modules/order [post]
func (h *ModuleHandler) Reorder(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Reorder(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reorderAck, nil, map[string]interface{}{"updated": result.Updated})
}
