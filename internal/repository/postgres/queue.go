package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type queueRepository struct {
	db sqlx.ExtContext
}

const queueItemSelect = `
	SELECT q.id AS queue_id, q.appointment_id, q.queue_position, q.added_at,
		   a.customer_name, a.service_id, a.status,
		   to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date,
		   to_char(a.appointment_time, 'HH24:MI') AS appointment_time,
		   s.service_name, s.required_staff_type, s.duration AS service_duration
	FROM waiting_queue q
	JOIN appointments a ON a.id = q.appointment_id
	JOIN services s ON s.id = a.service_id`

func (r *queueRepository) Create(ctx context.Context, entry *model.QueueEntry) error {
	query := `
		INSERT INTO waiting_queue (id, appointment_id, queue_position, added_at)
		VALUES ($1, $2, $3, $4)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.AppointmentID, entry.QueuePosition, entry.AddedAt); err != nil {
		return fmt.Errorf("failed to create queue entry: %w", translate(err))
	}
	return nil
}

func (r *queueRepository) NextPosition(ctx context.Context) (int, error) {
	var next int
	if err := sqlx.GetContext(ctx, r.db, &next, `SELECT COALESCE(MAX(queue_position), 0) + 1 FROM waiting_queue`); err != nil {
		return 0, fmt.Errorf("failed to compute queue position: %w", err)
	}
	return next, nil
}

func (r *queueRepository) Head(ctx context.Context) (*model.QueueItem, error) {
	query := queueItemSelect + ` WHERE a.status = $1 ORDER BY q.queue_position, q.added_at LIMIT 1`

	var item model.QueueItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, model.AppointmentStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to get queue head: %w", translate(err))
	}
	return &item, nil
}

func (r *queueRepository) GetItem(ctx context.Context, queueID uuid.UUID) (*model.QueueItem, error) {
	var item model.QueueItem
	if err := sqlx.GetContext(ctx, r.db, &item, queueItemSelect+` WHERE q.id = $1`, queueID); err != nil {
		return nil, fmt.Errorf("failed to get queue item: %w", translate(err))
	}
	return &item, nil
}

func (r *queueRepository) List(ctx context.Context) ([]*model.QueueItem, error) {
	query := queueItemSelect + ` WHERE a.status = $1 ORDER BY q.queue_position, q.added_at`

	var items []*model.QueueItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, model.AppointmentStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return items, nil
}

func (r *queueRepository) Entries(ctx context.Context) ([]*model.QueueEntry, error) {
	query := `
		SELECT id, appointment_id, queue_position, added_at
		FROM waiting_queue
		ORDER BY queue_position, added_at
	`
	var entries []*model.QueueEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *queueRepository) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE waiting_queue SET queue_position = $1 WHERE id = $2`, position, id)
	if err != nil {
		return fmt.Errorf("failed to update queue position: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to update queue position: %w", err)
	}
	return nil
}

func (r *queueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waiting_queue WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return nil
}

func (r *queueRepository) DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waiting_queue WHERE appointment_id = $1`, appointmentID)
	if err != nil {
		return false, fmt.Errorf("failed to delete queue entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *queueRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM waiting_queue`); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}
