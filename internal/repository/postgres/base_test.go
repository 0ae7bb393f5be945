package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/apptqueue/internal/repository"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(sql.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrapped: %w", sql.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23505", Constraint: "users_email_key"}), repository.ErrDuplicate)
	assert.ErrorIs(t, translate(&pq.Error{Code: "23503", Constraint: "appointments_staff_id_fkey"}), repository.ErrReferenced)

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

type fakeResult struct{ n int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.n, nil }

func TestAffected(t *testing.T) {
	assert.NoError(t, affected(fakeResult{n: 1}))
	assert.ErrorIs(t, affected(fakeResult{n: 0}), repository.ErrNotFound)
}
