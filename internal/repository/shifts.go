package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
)

// GetMaterializedDates 返回某条规则已生成班次的本地日期集合，物化器用它来保证幂等
func (r *Repository) GetMaterializedDates(definitionID int64) (map[string]bool, error) {
	query := `
		SELECT start_time FROM materialized_shifts WHERE definition_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var startTime time.Time
		if err := rows.Scan(&startTime); err != nil {
			return nil, err
		}
		dates[startTime.Local().Format(roster.DateLayout)] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *Repository) CreateShiftsBulk(shifts []*domain.MaterializedShift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO materialized_shifts (definition_id, staff_id, organization_id, facility_id, sector_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`

	for _, shift := range shifts {
		args := []any{shift.DefinitionID, shift.StaffID, shift.OrganizationID, shift.FacilityID, shift.SectorID, shift.StartTime, shift.EndTime, shift.Status}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteFutureShifts 删除某条规则下开始时间不早于 now 的班次。
// 已经发生过的班次是考勤历史，永远不会被删除。
func (r *Repository) DeleteFutureShifts(definitionID int64, now time.Time) error {
	query := `
		DELETE FROM materialized_shifts WHERE definition_id = $1 AND start_time >= $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, definitionID, now)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.MaterializedShift, error) {
	query := `
		SELECT
			s.definition_id,
			s.staff_id,
			s.organization_id,
			s.facility_id,
			s.sector_id,
			s.start_time,
			s.end_time,
			s.status,
			s.created_at,
			s.version,
			u.full_name,
			f.name
		FROM materialized_shifts s
		JOIN users u ON s.staff_id = u.id
		JOIN facilities f ON s.facility_id = f.id
		WHERE s.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.MaterializedShift{
		ID: id,
	}

	var sectorID sql.NullInt64
	dst := []any{&shift.DefinitionID, &shift.StaffID, &shift.OrganizationID, &shift.FacilityID, &sectorID, &shift.StartTime, &shift.EndTime, &shift.Status, &shift.CreatedAt, &shift.Version, &shift.StaffName, &shift.FacilityName}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if sectorID.Valid {
		shift.SectorID = &sectorID.Int64
	}

	return shift, nil
}

// GetShiftsByOrganization 返回机构在一个时间段内的班次，staffID 为可选过滤条件
func (r *Repository) GetShiftsByOrganization(organizationID int64, from time.Time, to time.Time, staffID *int64) ([]*domain.MaterializedShift, error) {
	query := `
		SELECT
			s.id,
			s.definition_id,
			s.staff_id,
			s.organization_id,
			s.facility_id,
			s.sector_id,
			s.start_time,
			s.end_time,
			s.status,
			s.created_at,
			s.version,
			u.full_name,
			f.name
		FROM materialized_shifts s
		JOIN users u ON s.staff_id = u.id
		JOIN facilities f ON s.facility_id = f.id
		WHERE s.organization_id = $1
			AND s.start_time >= $2
			AND s.start_time < $3
			AND ($4::bigint IS NULL OR s.staff_id = $4)
		ORDER BY s.start_time, s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID, from, to, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.MaterializedShift, 0)
	for rows.Next() {
		shift := &domain.MaterializedShift{}
		var sectorID sql.NullInt64
		dst := []any{&shift.ID, &shift.DefinitionID, &shift.StaffID, &shift.OrganizationID, &shift.FacilityID, &sectorID, &shift.StartTime, &shift.EndTime, &shift.Status, &shift.CreatedAt, &shift.Version, &shift.StaffName, &shift.FacilityName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if sectorID.Valid {
			shift.SectorID = &sectorID.Int64
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) UpdateShiftStatus(shift *domain.MaterializedShift) error {
	query := `
		UPDATE materialized_shifts
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, shift.Status, shift.ID, shift.Version).Scan(&shift.Version); err != nil {
		return err
	}

	return nil
}

// ReassignShift 换班申请批准后把班次改派给新员工，状态重置为待确认
func (r *Repository) ReassignShift(shift *domain.MaterializedShift, newStaffID int64) error {
	query := `
		UPDATE materialized_shifts
		SET
			staff_id = $1,
			status = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{newStaffID, domain.ShiftStatusPending, shift.ID, shift.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.Version); err != nil {
		return err
	}

	shift.StaffID = newStaffID
	shift.Status = domain.ShiftStatusPending

	return nil
}
