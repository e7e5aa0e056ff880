package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

type contentService interface {
	ListByModule(ctx context.Context, userID string, role models.UserRole, moduleID string) ([]models.ContentDetail, error)
	Create(ctx context.Context, ownerID, moduleID, kindName string, req models.ItemRequest) (*models.Content, error)
	Update(ctx context.Context, ownerID, contentID string, req models.ItemRequest) (*models.Content, error)
	Delete(ctx context.Context, ownerID, contentID string) error
	Reorder(ctx context.Context, ownerID string, req models.ReorderRequest) (*models.ReorderResult, error)
}

// ContentHandler handles the typed content endpoints. The content type is a
// URL segment, so /modules/{id}/contents/video creates a video item.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs a content handler.
func NewContentHandler(svc contentService) *ContentHandler {
	return &ContentHandler{service: svc}
}

// ListByModule godoc
// @Summary List module contents in display order
// @Tags Contents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id}/contents [get]
func (h *ContentHandler) ListByModule(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	contents, err := h.service.ListByModule(c.Request.Context(), claims.UserID, claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contents, nil)
}

// Create godoc
// @Summary Add a typed item to an owned module
// @Tags Contents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param model_name path string true "Content type" Enums(text, file, video, image)
// @Param payload body models.ItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /modules/{id}/contents/{model_name} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	content, err := h.service.Create(c.Request.Context(), claims.UserID, c.Param("id"), c.Param("model_name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, content)
}

// Update godoc
// @Summary Update the item behind an owned content entry
// @Tags Contents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Param payload body models.ItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /contents/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	content, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// Delete godoc
// @Summary Delete an owned content entry and its item
// @Tags Contents
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Success 204 "No Content"
// @Router /contents/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
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
// @Summary Reorder module contents in bulk
// @Tags Contents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ReorderRequest true "Content ID to position mapping"
// @Success 200 {object} response.Envelope
// @Router /contents/order [post]
func (h *ContentHandler) Reorder(c *gin.Context) {
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
