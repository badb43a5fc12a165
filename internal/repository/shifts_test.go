package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careshift-dev/roster-manager/backend/internal/config"
	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

func TestGetMaterializedDates(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows([]string{"start_time"}).
		AddRow(time.Date(2026, time.January, 5, 7, 0, 0, 0, time.Local)).
		AddRow(time.Date(2026, time.January, 7, 7, 0, 0, 0, time.Local))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_time FROM materialized_shifts WHERE definition_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	dates, err := repo.GetMaterializedDates(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2026-01-05": true, "2026-01-07": true}, dates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteFutureShifts(t *testing.T) {
	repo, mock := newTestRepository(t)

	now := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.Local)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM materialized_shifts WHERE definition_id = $1 AND start_time >= $2")).
		WithArgs(int64(1), now).
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.DeleteFutureShifts(1, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShiftStatus(t *testing.T) {
	repo, mock := newTestRepository(t)

	shift := &domain.MaterializedShift{ID: 7, Status: domain.ShiftStatusAccepted, Version: 1}

	mock.ExpectQuery("UPDATE materialized_shifts").
		WithArgs(string(domain.ShiftStatusAccepted), int64(7), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))

	require.NoError(t, repo.UpdateShiftStatus(shift))
	assert.Equal(t, int32(2), shift.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShiftStatusVersionMismatch(t *testing.T) {
	repo, mock := newTestRepository(t)

	shift := &domain.MaterializedShift{ID: 7, Status: domain.ShiftStatusAccepted, Version: 1}

	// 版本不匹配时 RETURNING 没有行，表现为 sql.ErrNoRows
	mock.ExpectQuery("UPDATE materialized_shifts").
		WithArgs(string(domain.ShiftStatusAccepted), int64(7), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err := repo.UpdateShiftStatus(shift)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassignShift(t *testing.T) {
	repo, mock := newTestRepository(t)

	shift := &domain.MaterializedShift{ID: 7, StaffID: 100, Status: domain.ShiftStatusAccepted, Version: 3}

	mock.ExpectQuery("UPDATE materialized_shifts").
		WithArgs(int64(200), string(domain.ShiftStatusPending), int64(7), int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(4)))

	require.NoError(t, repo.ReassignShift(shift, 200))
	assert.Equal(t, int64(200), shift.StaffID)
	assert.Equal(t, domain.ShiftStatusPending, shift.Status)
	assert.Equal(t, int32(4), shift.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShiftsBulk(t *testing.T) {
	repo, mock := newTestRepository(t)

	shifts := []*domain.MaterializedShift{
		{DefinitionID: 1, StaffID: 100, OrganizationID: 10, FacilityID: 20, StartTime: time.Now(), EndTime: time.Now().Add(6 * time.Hour), Status: domain.ShiftStatusPending},
		{DefinitionID: 1, StaffID: 100, OrganizationID: 10, FacilityID: 20, StartTime: time.Now(), EndTime: time.Now().Add(6 * time.Hour), Status: domain.ShiftStatusPending},
	}

	mock.ExpectBegin()
	for i := range shifts {
		mock.ExpectQuery("INSERT INTO materialized_shifts").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(i+1), time.Now(), int32(1)))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.CreateShiftsBulk(shifts))
	assert.Equal(t, int64(1), shifts[0].ID)
	assert.Equal(t, int64(2), shifts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
