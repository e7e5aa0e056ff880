package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kkampardi/educa-coursware/internal/models"
	appErrors "github.com/kkampardi/educa-coursware/pkg/errors"
)

type mockContentRepo struct {
	contents map[string]*models.Content
	items    map[string]*models.Item
	owners   map[string]string
	deleted  []string
}

func (m *mockContentRepo) ListByModule(ctx context.Context, moduleID string) ([]models.ContentDetail, error) {
	var list []models.ContentDetail
	for _, c := range m.contents {
		if c.ModuleID == moduleID {
			detail := models.ContentDetail{Content: *c}
			if item, ok := m.items[c.ItemID]; ok {
				detail.ItemTitle = item.Title
				detail.ItemPayload = item.Payload
			}
			list = append(list, detail)
		}
	}
	return list, nil
}

func (m *mockContentRepo) FindByID(ctx context.Context, id string) (*models.Content, error) {
	if c, ok := m.contents[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockContentRepo) FindItem(ctx context.Context, desc models.KindDescriptor, itemID string) (*models.Item, error) {
	if item, ok := m.items[itemID]; ok {
		return item, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockContentRepo) OwnerOf(ctx context.Context, contentID string) (string, error) {
	if owner, ok := m.owners[contentID]; ok {
		return owner, nil
	}
	return "", sql.ErrNoRows
}

func (m *mockContentRepo) CreateWithItem(ctx context.Context, desc models.KindDescriptor, item *models.Item, moduleID string) (*models.Content, error) {
	if m.contents == nil {
		m.contents = make(map[string]*models.Content)
	}
	if m.items == nil {
		m.items = make(map[string]*models.Item)
	}
	if item.ID == "" {
		item.ID = "new-item"
	}
	m.items[item.ID] = item
	content := &models.Content{
		ID:       "new-content",
		ModuleID: moduleID,
		ItemKind: desc.Kind,
		ItemID:   item.ID,
		Order:    len(m.contents),
	}
	m.contents[content.ID] = content
	return content, nil
}

func (m *mockContentRepo) UpdateItem(ctx context.Context, desc models.KindDescriptor, item *models.Item) error {
	if stored, ok := m.items[item.ID]; ok {
		stored.Title = item.Title
		stored.Payload = item.Payload
	}
	return nil
}

func (m *mockContentRepo) DeleteWithItem(ctx context.Context, desc models.KindDescriptor, content *models.Content) error {
	delete(m.items, content.ItemID)
	delete(m.contents, content.ID)
	m.deleted = append(m.deleted, content.ID)
	return nil
}

func (m *mockContentRepo) BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error) {
	updated := 0
	for id, pos := range orders {
		if m.owners[id] != ownerID {
			continue
		}
		if c, ok := m.contents[id]; ok {
			c.Order = pos
			updated++
		}
	}
	return updated, nil
}

type mockModuleReader struct {
	modules map[string]*models.Module
	owners  map[string]string
}

func (m *mockModuleReader) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if mod, ok := m.modules[id]; ok {
		return mod, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockModuleReader) OwnerOf(ctx context.Context, moduleID string) (string, error) {
	if owner, ok := m.owners[moduleID]; ok {
		return owner, nil
	}
	return "", sql.ErrNoRows
}

func newContentFixture() (*mockContentRepo, *mockModuleReader, *mockEnrollmentChecker) {
	repo := &mockContentRepo{
		contents: map[string]*models.Content{
			"con-1": {ID: "con-1", ModuleID: "m1", ItemKind: models.KindText, ItemID: "i1", Order: 0},
		},
		items: map[string]*models.Item{
			"i1": {ID: "i1", OwnerID: "owner-1", Title: "Intro", Payload: "Welcome."},
		},
		owners: map[string]string{"con-1": "owner-1"},
	}
	modules := &mockModuleReader{
		modules: map[string]*models.Module{"m1": {ID: "m1", CourseID: "c1"}},
		owners:  map[string]string{"m1": "owner-1"},
	}
	enrollments := &mockEnrollmentChecker{enrolled: map[string]bool{}}
	return repo, modules, enrollments
}

func TestContentServiceCreateText(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	content, err := svc.Create(context.Background(), "owner-1", "m1", "text", models.ItemRequest{
		Title:   "Lesson 1",
		Payload: "Some inline text.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindText, content.ItemKind)
	assert.Equal(t, 1, content.Order)
}

func TestContentServiceCreateUnknownKind(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "owner-1", "m1", "podcast", models.ItemRequest{
		Title:   "Episode 1",
		Payload: "whatever",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContentServiceCreateVideoRequiresURL(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "owner-1", "m1", "video", models.ItemRequest{
		Title:   "Screencast",
		Payload: "not a url",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	content, err := svc.Create(context.Background(), "owner-1", "m1", "video", models.ItemRequest{
		Title:   "Screencast",
		Payload: "https://videos.example.com/intro.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindVideo, content.ItemKind)
}

func TestContentServiceCreateFileRejectsPaths(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "owner-1", "m1", "file", models.ItemRequest{
		Title:   "Slides",
		Payload: "../../etc/passwd",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestContentServiceCreateForeignModule(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "intruder", "m1", "text", models.ItemRequest{
		Title:   "Sneaky",
		Payload: "text",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// module contents unchanged for the owner
	list, err := svc.ListByModule(context.Background(), "owner-1", models.RoleInstructor, "m1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestContentServiceUpdateKeepsKind(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	content, err := svc.Update(context.Background(), "owner-1", "con-1", models.ItemRequest{
		Title:   "Intro v2",
		Payload: "Updated text.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.KindText, content.ItemKind)
	assert.Equal(t, "Intro v2", repo.items["i1"].Title)
}

func TestContentServiceDeleteRemovesItem(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "owner-1", "con-1")
	require.NoError(t, err)
	assert.Empty(t, repo.contents)
	assert.Empty(t, repo.items)
}

func TestContentServiceDeleteForeignContent(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "intruder", "con-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.contents, 1)
	assert.Len(t, repo.items, 1)
}

func TestContentServiceListForStudents(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	_, err := svc.ListByModule(context.Background(), "student-1", models.RoleStudent, "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	enrollments.enrolled["c1:student-1"] = true
	list, err := svc.ListByModule(context.Background(), "student-1", models.RoleStudent, "m1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Intro", list[0].ItemTitle)
}

func TestContentServiceReorderSkipsUnowned(t *testing.T) {
	repo, modules, enrollments := newContentFixture()
	repo.contents["con-2"] = &models.Content{ID: "con-2", ModuleID: "m9", ItemKind: models.KindText, ItemID: "i9"}
	repo.owners["con-2"] = "other-owner"
	svc := NewContentService(repo, modules, enrollments, nil, validator.New(), zap.NewNop())

	result, err := svc.Reorder(context.Background(), "owner-1", models.ReorderRequest{
		"con-1": 5,
		"con-2": 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 5, repo.contents["con-1"].Order)
}
