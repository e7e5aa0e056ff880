package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kkampardi/educa-coursware/internal/models"
)

// ModuleRepository handles persistence for course modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// ListByCourse returns the course's modules ordered for display. Ties on
// "order" break by id so the sequence is deterministic.
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ModuleDetail, error) {
	const query = `SELECT m.id, m.course_id, m.title, m.description, m."order",
(SELECT COUNT(*) FROM contents ct WHERE ct.module_id = m.id) AS total_contents
FROM modules m WHERE m.course_id = $1 ORDER BY m."order" ASC, m.id ASC`
	var modules []models.ModuleDetail
	if err := r.db.SelectContext(ctx, &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByID returns a module by id.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	const query = `SELECT id, course_id, title, description, "order" FROM modules WHERE id = $1`
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// OwnerOf resolves the owning user of the module's course.
func (r *ModuleRepository) OwnerOf(ctx context.Context, moduleID string) (string, error) {
	const query = `SELECT c.owner_id FROM modules m JOIN courses c ON c.id = m.course_id WHERE m.id = $1`
	var ownerID string
	if err := r.db.GetContext(ctx, &ownerID, query, moduleID); err != nil {
		return "", err
	}
	return ownerID, nil
}

// Create persists a new module at the end of the course's sequence.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	const query = `INSERT INTO modules (id, course_id, title, description, "order")
VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX("order") + 1, 0) FROM modules WHERE course_id = $2))
RETURNING "order"`
	if err := r.db.GetContext(ctx, &module.Order, query, module.ID, module.CourseID, module.Title, module.Description); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update modifies a module's title and description; order is untouched.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	const query = `UPDATE modules SET title = :title, description = :description WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module along with its orphaned items, then lets the
// contents cascade. Items live in per-kind tables without a foreign key back
// to contents, so they are cleared explicitly inside one transaction.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete module: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	for _, kind := range models.Kinds() {
		desc, _ := models.ResolveKind(string(kind))
		query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (SELECT item_id FROM contents WHERE module_id = $1 AND item_kind = $2)`, desc.Table)
		if _, err := tx.ExecContext(ctx, query, id, desc.Kind); err != nil {
			return fmt.Errorf("delete %s items: %w", desc.Kind, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete module: %w", err)
	}
	committed = true
	return nil
}

// BulkReorder assigns the supplied order values to modules the owner is
// allowed to touch. Rows outside the owner's courses are skipped silently;
// the whole batch commits in one transaction. Returns the number of rows
// actually updated.
func (r *ModuleRepository) BulkReorder(ctx context.Context, ownerID string, orders map[string]int) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin module reorder: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	const query = `UPDATE modules m SET "order" = $2
FROM courses c
WHERE m.id = $1 AND c.id = m.course_id AND c.owner_id = $3`
	updated := 0
	for _, id := range sortedKeys(orders) {
		res, err := tx.ExecContext(ctx, query, id, orders[id], ownerID)
		if err != nil {
			return 0, fmt.Errorf("reorder module %s: %w", id, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			updated += int(affected)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit module reorder: %w", err)
	}
	committed = true
	return updated, nil
}

// sortedKeys keeps bulk updates deterministic for a given id set.
func sortedKeys(orders map[string]int) []string {
	keys := make([]string, 0, len(orders))
	for id := range orders {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
