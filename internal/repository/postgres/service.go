package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/apptqueue/internal/model"
)

type serviceRepository struct {
	db sqlx.ExtContext
}

const serviceColumns = `id, service_name, duration, required_staff_type, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES (:id, :service_name, :duration, :required_staff_type, :created_at, :updated_at)
	`
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, service); err != nil {
		return fmt.Errorf("failed to create service: %w", translate(err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var service model.Service
	err := sqlx.GetContext(ctx, r.db, &service, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", translate(err))
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET service_name = :service_name, duration = :duration,
			required_staff_type = :required_staff_type, updated_at = :updated_at
		WHERE id = :id
	`
	service.UpdatedAt = time.Now()

	res, err := sqlx.NamedExecContext(ctx, r.db, query, service)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", translate(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", translate(err))
	}
	if err := affected(res); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	var services []*model.Service
	err := sqlx.SelectContext(ctx, r.db, &services, `SELECT `+serviceColumns+` FROM services ORDER BY service_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
