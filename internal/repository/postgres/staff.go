package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type staffRepository struct {
	db sqlx.ExtContext
}

const staffColumns = `id, name, staff_type, daily_capacity, availability_status, created_at, updated_at`

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES (:id, :name, :staff_type, :daily_capacity, :availability_status, :created_at, :updated_at)
	`
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, staff); err != nil {
		return fmt.Errorf("failed to create staff: %w", translate(err))
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	err := sqlx.GetContext(ctx, r.db, &staff, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", translate(err))
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = :name, staff_type = :staff_type, daily_capacity = :daily_capacity,
			availability_status = :availability_status, updated_at = :updated_at
		WHERE id = :id
	`
	staff.UpdatedAt = time.Now()

	res, err := sqlx.NamedExecContext(ctx, r.db, query, staff)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", translate(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", translate(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	return nil
}

func (r *staffRepository) List(ctx context.Context) ([]*model.Staff, error) {
	var staff []*model.Staff
	err := sqlx.SelectContext(ctx, r.db, &staff, `SELECT `+staffColumns+` FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) ListEligible(ctx context.Context, staffType model.StaffType) ([]*model.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE staff_type = $1 AND availability_status = $2
		ORDER BY name, id
	`
	var staff []*model.Staff
	if err := sqlx.SelectContext(ctx, r.db, &staff, query, staffType, model.AvailabilityAvailable); err != nil {
		return nil, fmt.Errorf("failed to list eligible staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) Count(ctx context.Context) (int, int, error) {
	var counts struct {
		Total     int `db:"total"`
		Available int `db:"available"`
	}
	query := `
		SELECT COUNT(*) AS total,
			   COUNT(*) FILTER (WHERE availability_status = $1) AS available
		FROM staff
	`
	if err := sqlx.GetContext(ctx, r.db, &counts, query, model.AvailabilityAvailable); err != nil {
		return 0, 0, fmt.Errorf("failed to count staff: %w", err)
	}
	return counts.Total, counts.Available, nil
}
