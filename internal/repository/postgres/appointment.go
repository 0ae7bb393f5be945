package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type appointmentRepository struct {
	db sqlx.ExtContext
}

// Dates and times are stored as DATE and TIME but travel as the
// YYYY-MM-DD and HH:MM strings the rest of the system uses.
const appointmentColumns = `
	a.id, a.customer_name, a.service_id, a.staff_id,
	to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date,
	to_char(a.appointment_time, 'HH24:MI') AS appointment_time,
	a.status, a.created_at, a.updated_at`

const appointmentDetailSelect = `
	SELECT ` + appointmentColumns + `,
		   s.service_name, s.duration AS service_duration, st.name AS staff_name
	FROM appointments a
	JOIN services s ON s.id = a.service_id
	LEFT JOIN staff st ON st.id = a.staff_id`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, customer_name, service_id, staff_id,
			appointment_date, appointment_time, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.CustomerName,
		appointment.ServiceID,
		appointment.StaffID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1`

	var appointment model.Appointment
	if err := sqlx.GetContext(ctx, r.db, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	var detail model.AppointmentDetail
	if err := sqlx.GetContext(ctx, r.db, &detail, appointmentDetailSelect+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &detail, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET customer_name = $1, service_id = $2, staff_id = $3,
			appointment_date = $4, appointment_time = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	appointment.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		appointment.CustomerName,
		appointment.ServiceID,
		appointment.StaffID,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + ` WHERE 1 = 1`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Date != "" {
			query += fmt.Sprintf(" AND a.appointment_date = $%d", argCount)
			args = append(args, filters.Date)
			argCount++
		}
		if filters.StaffID != nil {
			query += fmt.Sprintf(" AND a.staff_id = $%d", argCount)
			args = append(args, *filters.StaffID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
	}

	query += " ORDER BY a.appointment_date ASC, a.appointment_time ASC, a.created_at ASC"

	var appointments []*model.AppointmentDetail
	if err := sqlx.SelectContext(ctx, r.db, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListScheduledForStaff(ctx context.Context, staffID uuid.UUID, date string, exclude *uuid.UUID) ([]*model.ScheduledSlot, error) {
	query := `
		SELECT a.id, to_char(a.appointment_time, 'HH24:MI') AS appointment_time, s.duration
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.staff_id = $1 AND a.appointment_date = $2 AND a.status = $3
	`
	args := []interface{}{staffID, date, model.AppointmentStatusScheduled}
	if exclude != nil {
		query += " AND a.id <> $4"
		args = append(args, *exclude)
	}
	query += " ORDER BY a.appointment_time"

	var slots []*model.ScheduledSlot
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list scheduled appointments: %w", err)
	}
	return slots, nil
}

func (r *appointmentRepository) CountScheduled(ctx context.Context, staffID uuid.UUID, date string) (int, error) {
	query := `
		SELECT COUNT(*) FROM appointments
		WHERE staff_id = $1 AND appointment_date = $2 AND status = $3
	`
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, query, staffID, date, model.AppointmentStatusScheduled); err != nil {
		return 0, fmt.Errorf("failed to count scheduled appointments: %w", err)
	}
	return n, nil
}

func (r *appointmentRepository) CountScheduledByStaff(ctx context.Context, date string) (map[uuid.UUID]int, error) {
	query := `
		SELECT staff_id, COUNT(*) AS n
		FROM appointments
		WHERE staff_id IS NOT NULL AND appointment_date = $1 AND status = $2
		GROUP BY staff_id
	`
	var rows []struct {
		StaffID uuid.UUID `db:"staff_id"`
		N       int       `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, date, model.AppointmentStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to count appointments by staff: %w", err)
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counts[row.StaffID] = row.N
	}
	return counts, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, date string) (map[model.AppointmentStatus]int, error) {
	query := `
		SELECT status, COUNT(*) AS n
		FROM appointments
		WHERE appointment_date = $1
		GROUP BY status
	`
	var rows []struct {
		Status model.AppointmentStatus `db:"status"`
		N      int                     `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, date); err != nil {
		return nil, fmt.Errorf("failed to count appointments by status: %w", err)
	}
	counts := make(map[model.AppointmentStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
