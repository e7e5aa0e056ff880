package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kkampardi/educa-coursware/internal/models"
)

// ContentRepository handles persistence for module contents and their typed
// items. Item tables are resolved through the kind registry, never from raw
// request input, so the table name interpolation below stays closed.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ListByModule returns the module's contents with their items, sorted by
// "order" ascending, ties broken by id for determinism.
func (r *ContentRepository) ListByModule(ctx context.Context, moduleID string) ([]models.ContentDetail, error) {
	const query = `SELECT ct.id, ct.module_id, ct.item_kind, ct.item_id, ct."order", ct.item_title, ct.item_payload
FROM (
	SELECT c.id, c.module_id, c.item_kind, c.item_id, c."order", t.title AS item_title, t.content AS item_payload
	FROM contents c JOIN text_items t ON c.item_kind = 'text' AND t.id = c.item_id
	UNION ALL
	SELECT c.id, c.module_id, c.item_kind, c.item_id, c."order", f.title, f.file
	FROM contents c JOIN file_items f ON c.item_kind = 'file' AND f.id = c.item_id
	UNION ALL
	SELECT c.id, c.module_id, c.item_kind, c.item_id, c."order", v.title, v.url
	FROM contents c JOIN video_items v ON c.item_kind = 'video' AND v.id = c.item_id
	UNION ALL
	SELECT c.id, c.module_id, c.item_kind, c.item_id, c."order", i.title, i.url
	FROM contents c JOIN image_items i ON c.item_kind = 'image' AND i.id = c.item_id
) ct
WHERE ct.module_id = $1
ORDER BY ct."order" ASC, ct.id ASC`
	var contents []models.ContentDetail
	if err := r.db.SelectContext(ctx, &contents, query, moduleID); err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return contents, nil
}

// FindByID returns a content row by id.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	const query = `SELECT id, module_id, item_kind, item_id, "order" FROM contents WHERE id = $1`
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		return nil, err
	}
	return &content, nil
}

// FindItem loads the typed item referenced by a content row.
func (r *ContentRepository) FindItem(ctx context.Context, desc models.KindDescriptor, itemID string) (*models.Item, error) {
	query := fmt.Sprintf(`SELECT id, owner_id, title, %s AS payload, created_at, updated_at FROM %s WHERE id = $1`, desc.PayloadColumn, desc.Table)
	var item models.Item
	if err := r.db.GetContext(ctx, &item, query, itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

// OwnerOf resolves the owner of the content's module's course. The filter is
// transitive via modules on purpose: contents carry no direct course key.
func (r *ContentRepository) OwnerOf(ctx context.Context, contentID string) (string, error) {
	const query = `SELECT c.owner_id
FROM contents ct
JOIN modules m ON m.id = ct.module_id
JOIN courses c ON c.id = m.course_id
WHERE ct.id = $1`
	var ownerID string
	if err := r.db.GetContext(ctx, &ownerID, query, contentID); err != nil {
		return "", err
	}
	return ownerID, nil
}

// CreateWithItem inserts the typed item and the content row binding it to
// the module in a single transaction. The content lands at the end of the
// module's sequence: max existing order plus one, or zero for the first.
func (r *ContentRepository) CreateWithItem(ctx context.Context, desc models.KindDescriptor, item *models.Item, moduleID string) (*models.Content, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create content: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	itemQuery := fmt.Sprintf(`INSERT INTO %s (id, owner_id, title, %s, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`, desc.Table, desc.PayloadColumn)
	if _, err := tx.ExecContext(ctx, itemQuery, item.ID, item.OwnerID, item.Title, item.Payload, item.CreatedAt, item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create %s item: %w", desc.Kind, err)
	}

	content := &models.Content{
		ID:       uuid.NewString(),
		ModuleID: moduleID,
		ItemKind: desc.Kind,
		ItemID:   item.ID,
	}
	const contentQuery = `INSERT INTO contents (id, module_id, item_kind, item_id, "order")
VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX("order") + 1, 0) FROM contents WHERE module_id = $2))
RETURNING "order"`
	if err := tx.GetContext(ctx, &content.Order, contentQuery, content.ID, content.ModuleID, content.ItemKind, content.ItemID); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create content: %w", err)
	}
	committed = true
	return content, nil
}

// UpdateItem rewrites the item's title and payload in place.
func (r *ContentRepository) UpdateItem(ctx context.Context, desc models.KindDescriptor, item *models.Item) error {
	item.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET title = $2, %s = $3, updated_at = $4 WHERE id = $1`, desc.Table, desc.PayloadColumn)
	if _, err := r.db.ExecContext(ctx, query, item.ID, item.Title, item.Payload, item.UpdatedAt); err != nil {
		return fmt.Errorf("update %s item: %w", desc.Kind, err)
	}
	return nil
}

// DeleteWithItem removes the item row and the content row in one
// transaction. Either both deletes commit or neither does; a concurrent
// reader never observes an orphaned half.
func (r *ContentRepository) DeleteWithItem(ctx context.Context, desc models.KindDescriptor, content *models.Content) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete content: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	itemQuery := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, desc.Table)
	if _, err := tx.ExecContext(ctx, itemQuery, content.ItemID); err != nil {
		return fmt.Errorf("delete %s item: %w", desc.Kind, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, content.ID); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete content: %w", err)
	}
	committed = true
	return nil
}

// BulkReorder assigns the supplied order values to contents the owner is
// allowed to touch, filtering transitively via module and course. Rows the
// owner does not own are skipped silently; the batch commits in one
// transaction. Returns the number of rows actually updated.
func (r *ContentRepository) BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin content reorder: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const query = `UPDATE contents ct SET "order" = $2
FROM modules m, courses c
WHERE ct.id = $1 AND m.id = ct.module_id AND c.id = m.course_id AND c.owner_id = $3`
	updated := 0
	for _, id := range sortedKeys(orders) {
		res, err := tx.ExecContext(ctx, query, id, orders[id], ownerID)
		if err != nil {
			return 0, fmt.Errorf("reorder content %s: %w", id, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			updated += int(affected)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit content reorder: %w", err)
	}
	committed = true
	return updated, nil
}
