package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/repository/base"
	"github.com/Freeeeeet/driver_availability/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dayColumns = `id, user_id, date, slot_statuses, created_at, updated_at`

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

var _ service.DayStore = (*AvailabilityRepository)(nil)

// GetByID returns the user's record or nil.
func (r *AvailabilityRepository) GetByID(ctx context.Context, userID, id int64) (*model.DayAvailability, error) {
	query := `SELECT ` + dayColumns + ` FROM day_availabilities WHERE id = $1 AND user_id = $2`

	day, err := scanDay(r.Pool().QueryRow(ctx, query, id, userID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability by id: %w", err)
	}
	return day, nil
}

// Get returns the record of (user, date) or nil.
func (r *AvailabilityRepository) Get(ctx context.Context, userID int64, date string) (*model.DayAvailability, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return r.getByDate(ctx, r.Pool(), userID, d, false)
}

func (r *AvailabilityRepository) getByDate(ctx context.Context, q base.Querier, userID int64, d time.Time, forUpdate bool) (*model.DayAvailability, error) {
	query := `SELECT ` + dayColumns + ` FROM day_availabilities WHERE user_id = $1 AND date = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	day, err := scanDay(q.QueryRow(ctx, query, userID, d))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability by date: %w", err)
	}
	return day, nil
}

// List returns the user's records ordered by date, optionally for one date only.
func (r *AvailabilityRepository) List(ctx context.Context, userID int64, date string) ([]*model.DayAvailability, error) {
	query := `SELECT ` + dayColumns + ` FROM day_availabilities WHERE user_id = $1`
	args := []any{userID}
	if date != "" {
		d, err := model.ParseDate(date)
		if err != nil {
			return nil, err
		}
		query += ` AND date = $2`
		args = append(args, d)
	}
	query += ` ORDER BY date`

	rows, err := r.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	defer rows.Close()

	days := make([]*model.DayAvailability, 0)
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availabilities: %w", err)
	}
	return days, nil
}

// Create inserts a new record. A second record for the same date violates the
// unique key and is reported as model.ErrAlreadyExists.
func (r *AvailabilityRepository) Create(ctx context.Context, day *model.DayAvailability) error {
	d, err := model.ParseDate(day.Date)
	if err != nil {
		return err
	}
	return r.insert(ctx, r.Pool(), day, d)
}

func (r *AvailabilityRepository) insert(ctx context.Context, q base.Querier, day *model.DayAvailability, d time.Time) error {
	slots, err := json.Marshal(day.SlotStatuses)
	if err != nil {
		return fmt.Errorf("encode slot statuses: %w", err)
	}

	query := `
		INSERT INTO day_availabilities (user_id, date, slot_statuses)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, day.UserID, d, slots).Scan(&day.ID, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("%w: day %s for user %d", model.ErrAlreadyExists, day.Date, day.UserID)
		}
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Update replaces the slot map of an existing record.
func (r *AvailabilityRepository) Update(ctx context.Context, day *model.DayAvailability) error {
	return r.update(ctx, r.Pool(), day)
}

func (r *AvailabilityRepository) update(ctx context.Context, q base.Querier, day *model.DayAvailability) error {
	slots, err := json.Marshal(day.SlotStatuses)
	if err != nil {
		return fmt.Errorf("encode slot statuses: %w", err)
	}

	query := `
		UPDATE day_availabilities
		SET slot_statuses = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING updated_at
	`
	if err := q.QueryRow(ctx, query, slots, day.ID, day.UserID).Scan(&day.UpdatedAt); err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("%w: availability %d", model.ErrNotFound, day.ID)
		}
		return fmt.Errorf("update availability: %w", err)
	}
	return nil
}

// Delete removes a record and reports whether it existed.
func (r *AvailabilityRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, r.Pool(),
		`DELETE FROM day_availabilities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete availability: %w", err)
	}
	return affected > 0, nil
}

// Modify serializes writers of one (user, date) with a transaction-scoped
// advisory lock. The lock also covers the not-yet-existing row, which a
// plain SELECT ... FOR UPDATE cannot.
func (r *AvailabilityRepository) Modify(ctx context.Context, userID int64, date string, fn service.DayMutation) (*model.DayAvailability, model.WriteOutcome, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return nil, model.OutcomeUnchanged, err
	}

	var (
		result  *model.DayAvailability
		outcome = model.OutcomeUnchanged
	)
	err = r.InTx(ctx, func(tx pgx.Tx) error {
		if err := base.LockKey(ctx, tx, fmt.Sprintf("day:%d:%s", userID, date)); err != nil {
			return err
		}

		existing, err := r.getByDate(ctx, tx, userID, d, true)
		if err != nil {
			return err
		}

		next, write := fn(existing)
		if !write {
			result = existing
			return nil
		}

		if existing == nil {
			day := &model.DayAvailability{UserID: userID, Date: date, SlotStatuses: next.Clone()}
			if err := r.insert(ctx, tx, day, d); err != nil {
				return err
			}
			result, outcome = day, model.OutcomeCreated
			return nil
		}

		existing.SlotStatuses = next.Clone()
		if err := r.update(ctx, tx, existing); err != nil {
			return err
		}
		result, outcome = existing, model.OutcomeUpdated
		return nil
	})
	if err != nil {
		return nil, model.OutcomeUnchanged, fmt.Errorf("modify availability: %w", err)
	}
	return result, outcome, nil
}

func scanDay(row pgx.Row) (*model.DayAvailability, error) {
	var (
		day   model.DayAvailability
		date  time.Time
		slots []byte
	)
	if err := row.Scan(&day.ID, &day.UserID, &date, &slots, &day.CreatedAt, &day.UpdatedAt); err != nil {
		return nil, err
	}

	day.Date = model.FormatDate(date)
	if err := json.Unmarshal(slots, &day.SlotStatuses); err != nil {
		return nil, fmt.Errorf("decode slot statuses: %w", err)
	}
	if day.SlotStatuses == nil {
		day.SlotStatuses = model.SlotStatuses{}
	}
	return &day, nil
}
