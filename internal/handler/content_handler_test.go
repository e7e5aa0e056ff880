package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkampardi/educa-coursware/internal/middleware"
	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type contentServiceMock struct {
	createResp *models.Content
	createErr  error
	lastKind   string
	deleteErr  error
}

func (m *contentServiceMock) ListByModule(ctx context.Context, userID string, role models.UserRole, moduleID string) ([]models.ContentDetail, error) {
	return nil, nil
}

func (m *contentServiceMock) Create(ctx context.Context, ownerID, moduleID, kindName string, req models.ItemRequest) (*models.Content, error) {
	m.lastKind = kindName
	return m.createResp, m.createErr
}

func (m *contentServiceMock) Update(ctx context.Context, ownerID, contentID string, req models.ItemRequest) (*models.Content, error) {
	return nil, nil
}

func (m *contentServiceMock) Delete(ctx context.Context, ownerID, contentID string) error {
	return m.deleteErr
}

func (m *contentServiceMock) Reorder(ctx context.Context, ownerID string, req models.ReorderRequest) (*models.ReorderResult, error) {
	return &models.ReorderResult{Updated: len(req)}, nil
}

func TestContentHandlerCreatePassesKindSegment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{createResp: &models.Content{ID: "con-1", ItemKind: models.KindVideo}}
	handler := NewContentHandler(mockSvc)

	payload, _ := json.Marshal(models.ItemRequest{Title: "Screencast", Payload: "https://videos.example.com/a.mp4"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/modules/m1/contents/video", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "m1"}, {Key: "model_name", Value: "video"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "video", mockSvc.lastKind)
}

func TestContentHandlerCreateUnknownKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{createErr: appErrors.Clone(appErrors.ErrNotFound, "unknown content type")}
	handler := NewContentHandler(mockSvc)

	payload, _ := json.Marshal(models.ItemRequest{Title: "Episode", Payload: "whatever"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/modules/m1/contents/podcast", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "m1"}, {Key: "model_name", Value: "podcast"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Create(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentHandlerDeleteForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &contentServiceMock{deleteErr: appErrors.ErrForbidden}
	handler := NewContentHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/contents/con-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "con-1"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestContentHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(&contentServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/modules/m1/contents/text", bytes.NewBufferString(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "m1"}, {Key: "model_name", Value: "text"}}
	c.Set(middleware.ContextUserKey, instructorClaims())

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
