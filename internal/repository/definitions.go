package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
)

func (r *Repository) CreateDefinition(def *domain.RecurringScheduleDefinition) error {
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
		INSERT INTO recurring_definitions (staff_id, organization_id, facility_id, sector_id, shift_type, duration_type, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`
	args := []any{def.StaffID, def.OrganizationID, def.FacilityID, def.SectorID, def.ShiftType, def.DurationType, def.StartDate, def.EndDate, def.Active}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&def.ID, &def.CreatedAt, &def.Version); err != nil {
		return err
	}

	for _, day := range def.Weekdays {
		query = `
			INSERT INTO recurring_definition_weekdays (definition_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, def.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetDefinitionByID(id int64) (*domain.RecurringScheduleDefinition, error) {
	query := `
		SELECT
			d.staff_id,
			d.organization_id,
			d.facility_id,
			d.sector_id,
			d.shift_type,
			d.duration_type,
			d.start_date,
			d.end_date,
			d.active,
			d.created_at,
			d.version,
			u.full_name,
			f.name,
			w.day
		FROM recurring_definitions d
		JOIN users u ON d.staff_id = u.id
		JOIN facilities f ON d.facility_id = f.id
		LEFT JOIN recurring_definition_weekdays w ON d.id = w.definition_id
		WHERE d.id = $1
		ORDER BY w.day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	def := &domain.RecurringScheduleDefinition{
		ID:       id,
		Weekdays: make([]int32, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			StaffID        int64
			OrganizationID int64
			FacilityID     int64
			SectorID       sql.NullInt64
			ShiftType      string
			DurationType   string
			StartDate      time.Time
			EndDate        sql.NullTime
			Active         bool
			CreatedAt      time.Time
			Version        int32
			StaffName      string
			FacilityName   string
			Day            sql.NullInt32
		}

		dst := []any{
			&row.StaffID,
			&row.OrganizationID,
			&row.FacilityID,
			&row.SectorID,
			&row.ShiftType,
			&row.DurationType,
			&row.StartDate,
			&row.EndDate,
			&row.Active,
			&row.CreatedAt,
			&row.Version,
			&row.StaffName,
			&row.FacilityName,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			def.StaffID = row.StaffID
			def.OrganizationID = row.OrganizationID
			def.FacilityID = row.FacilityID
			if row.SectorID.Valid {
				def.SectorID = &row.SectorID.Int64
			}
			def.ShiftType = domain.ShiftType(row.ShiftType)
			def.DurationType = domain.DurationType(row.DurationType)
			def.StartDate = row.StartDate.Format(roster.DateLayout)
			if row.EndDate.Valid {
				endDate := row.EndDate.Time.Format(roster.DateLayout)
				def.EndDate = &endDate
			}
			def.Active = row.Active
			def.CreatedAt = row.CreatedAt
			def.Version = row.Version
			def.StaffName = row.StaffName
			def.FacilityName = row.FacilityName
			found = true
		}

		// 如果 day 为空，说明这条规则还没有任何星期几（理论上不会出现，但结构上允许）
		if !row.Day.Valid {
			continue
		}

		def.Weekdays = append(def.Weekdays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return def, nil
}

// collectDefinitions 把带星期几联表的规则查询结果按规则分组组装起来
func collectDefinitions(rows *sql.Rows) ([]*domain.RecurringScheduleDefinition, error) {
	defsMap := make(map[int64]*domain.RecurringScheduleDefinition)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID             int64
			StaffID        int64
			OrganizationID int64
			FacilityID     int64
			SectorID       sql.NullInt64
			ShiftType      string
			DurationType   string
			StartDate      time.Time
			EndDate        sql.NullTime
			Active         bool
			CreatedAt      time.Time
			Version        int32
			StaffName      string
			FacilityName   string
			Day            sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.StaffID,
			&row.OrganizationID,
			&row.FacilityID,
			&row.SectorID,
			&row.ShiftType,
			&row.DurationType,
			&row.StartDate,
			&row.EndDate,
			&row.Active,
			&row.CreatedAt,
			&row.Version,
			&row.StaffName,
			&row.FacilityName,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		def, exists := defsMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这条规则，需要在 map 中初始化
			def = &domain.RecurringScheduleDefinition{
				ID:             row.ID,
				StaffID:        row.StaffID,
				OrganizationID: row.OrganizationID,
				FacilityID:     row.FacilityID,
				ShiftType:      domain.ShiftType(row.ShiftType),
				DurationType:   domain.DurationType(row.DurationType),
				StartDate:      row.StartDate.Format(roster.DateLayout),
				Active:         row.Active,
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
				StaffName:      row.StaffName,
				FacilityName:   row.FacilityName,
				Weekdays:       make([]int32, 0),
			}
			if row.SectorID.Valid {
				def.SectorID = &row.SectorID.Int64
			}
			if row.EndDate.Valid {
				endDate := row.EndDate.Time.Format(roster.DateLayout)
				def.EndDate = &endDate
			}
			defsMap[row.ID] = def
			order = append(order, row.ID)
		}

		if !row.Day.Valid {
			continue
		}

		def.Weekdays = append(def.Weekdays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	defs := make([]*domain.RecurringScheduleDefinition, 0, len(order))
	for _, id := range order {
		defs = append(defs, defsMap[id])
	}

	return defs, nil
}

// GetActiveDefinitionsByStaff 返回某个员工所有启用中的规则，冲突检测用
func (r *Repository) GetActiveDefinitionsByStaff(staffID int64) ([]*domain.RecurringScheduleDefinition, error) {
	query := `
		SELECT
			d.id,
			d.staff_id,
			d.organization_id,
			d.facility_id,
			d.sector_id,
			d.shift_type,
			d.duration_type,
			d.start_date,
			d.end_date,
			d.active,
			d.created_at,
			d.version,
			u.full_name,
			f.name,
			w.day
		FROM recurring_definitions d
		JOIN users u ON d.staff_id = u.id
		JOIN facilities f ON d.facility_id = f.id
		LEFT JOIN recurring_definition_weekdays w ON d.id = w.definition_id
		WHERE d.staff_id = $1 AND d.active = TRUE
		ORDER BY d.id, w.day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDefinitions(rows)
}

// GetAllDefinitionsByOrganization 返回机构下的规则，staffID 和 facilityID 为可选过滤条件
func (r *Repository) GetAllDefinitionsByOrganization(organizationID int64, staffID *int64, facilityID *int64) ([]*domain.RecurringScheduleDefinition, error) {
	query := `
		SELECT
			d.id,
			d.staff_id,
			d.organization_id,
			d.facility_id,
			d.sector_id,
			d.shift_type,
			d.duration_type,
			d.start_date,
			d.end_date,
			d.active,
			d.created_at,
			d.version,
			u.full_name,
			f.name,
			w.day
		FROM recurring_definitions d
		JOIN users u ON d.staff_id = u.id
		JOIN facilities f ON d.facility_id = f.id
		LEFT JOIN recurring_definition_weekdays w ON d.id = w.definition_id
		WHERE d.organization_id = $1
			AND ($2::bigint IS NULL OR d.staff_id = $2)
			AND ($3::bigint IS NULL OR d.facility_id = $3)
		ORDER BY d.id, w.day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID, staffID, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDefinitions(rows)
}

func (r *Repository) UpdateDefinition(def *domain.RecurringScheduleDefinition) error {
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
		UPDATE recurring_definitions
		SET
			facility_id = $1,
			sector_id = $2,
			shift_type = $3,
			duration_type = $4,
			start_date = $5,
			end_date = $6,
			active = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`
	args := []any{def.FacilityID, def.SectorID, def.ShiftType, def.DurationType, def.StartDate, def.EndDate, def.Active, def.ID, def.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&def.Version); err != nil {
		return err
	}

	// 星期几集合整体重建，避免逐个比对差异
	query = `
		DELETE FROM recurring_definition_weekdays WHERE definition_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, def.ID); err != nil {
		return err
	}

	for _, day := range def.Weekdays {
		query = `
			INSERT INTO recurring_definition_weekdays (definition_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, def.ID, day); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteDefinition(id int64) error {
	query := `
		DELETE FROM recurring_definitions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
