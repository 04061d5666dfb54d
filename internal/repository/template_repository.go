package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/repository/base"
	"github.com/Freeeeeet/driver_availability/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const templateColumns = `id, user_id, name, week_pattern, created_at, updated_at`

type TemplateRepository struct {
	*base.Repository
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{Repository: base.NewRepository(pool)}
}

var _ service.TemplateStore = (*TemplateRepository)(nil)

// Get returns the user's template or nil.
func (r *TemplateRepository) Get(ctx context.Context, userID, id int64) (*model.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM availability_templates WHERE id = $1 AND user_id = $2`

	t, err := scanTemplate(r.Pool().QueryRow(ctx, query, id, userID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// List returns the user's templates ordered by name.
func (r *TemplateRepository) List(ctx context.Context, userID int64) ([]*model.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM availability_templates WHERE user_id = $1 ORDER BY name, id`

	rows, err := r.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*model.AvailabilityTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.AvailabilityTemplate) error {
	pattern, err := json.Marshal(t.WeekPattern)
	if err != nil {
		return fmt.Errorf("encode week pattern: %w", err)
	}

	query := `
		INSERT INTO availability_templates (user_id, name, week_pattern)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err = r.Pool().QueryRow(ctx, query, t.UserID, t.Name, pattern).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.AvailabilityTemplate) error {
	pattern, err := json.Marshal(t.WeekPattern)
	if err != nil {
		return fmt.Errorf("encode week pattern: %w", err)
	}

	query := `
		UPDATE availability_templates
		SET name = $1, week_pattern = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING updated_at
	`
	if err := r.Pool().QueryRow(ctx, query, t.Name, pattern, t.ID, t.UserID).Scan(&t.UpdatedAt); err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("%w: template %d", model.ErrNotFound, t.ID)
		}
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Delete removes a template and reports whether it existed.
func (r *TemplateRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, r.Pool(),
		`DELETE FROM availability_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return affected > 0, nil
}

// scanTemplate decodes week_pattern through WeekPattern.UnmarshalJSON, which
// fills in weekdays missing from older rows.
func scanTemplate(row pgx.Row) (*model.AvailabilityTemplate, error) {
	var (
		t       model.AvailabilityTemplate
		pattern []byte
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &pattern, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pattern, &t.WeekPattern); err != nil {
		return nil, fmt.Errorf("decode week pattern: %w", err)
	}
	return &t, nil
}
