package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/service"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
	"github.com/kkampardi/educa-coursware/pkg/response"
)

// MediaHandler handles item file uploads and signed downloads.
type MediaHandler struct {
	service *service.MediaService
}

// NewMediaHandler constructs a media handler.
func NewMediaHandler(svc *service.MediaService) *MediaHandler {
	return &MediaHandler{service: svc}
}

// Upload godoc
// @Summary Upload a media file for a file item
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 201 {object} response.Envelope
// @Router /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file field required"))
		return
	}
	if header.Size > h.service.MaxUploadBytes() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload limit"))
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	upload, err := h.service.Upload(c.Request.Context(), claims.UserID, header.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// Download godoc
// @Summary Download a media file with a signed token
// @Tags Media
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /media/{token} [get]
func (h *MediaHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(file.Name())))
	c.File(file.Name())
}
