package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) CreateFacility(facility *domain.Facility) error {
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
		INSERT INTO facilities (organization_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, facility.OrganizationID, facility.Name).Scan(&facility.ID, &facility.CreatedAt, &facility.Version); err != nil {
		return err
	}

	for i := range facility.Sectors {
		query = `
			INSERT INTO sectors (facility_id, name)
			VALUES ($1, $2)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query, facility.ID, facility.Sectors[i].Name).Scan(&facility.Sectors[i].ID); err != nil {
			return err
		}
		facility.Sectors[i].FacilityID = facility.ID
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetFacilityByID(id int64) (*domain.Facility, error) {
	query := `
		SELECT
			f.organization_id,
			f.name,
			f.created_at,
			f.version,
			s.id,
			s.name
		FROM facilities f
		LEFT JOIN sectors s ON f.id = s.facility_id
		WHERE f.id = $1
		ORDER BY s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facility := &domain.Facility{
		ID:      id,
		Sectors: make([]domain.Sector, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			OrganizationID int64
			Name           string
			CreatedAt      time.Time
			Version        int32

			SectorID   sql.NullInt64
			SectorName sql.NullString
		}

		dst := []any{&row.OrganizationID, &row.Name, &row.CreatedAt, &row.Version, &row.SectorID, &row.SectorName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			facility.OrganizationID = row.OrganizationID
			facility.Name = row.Name
			facility.CreatedAt = row.CreatedAt
			facility.Version = row.Version
			found = true
		}

		// 如果 sectorID 为空，说明这个科室下还没有任何分区
		if !row.SectorID.Valid {
			continue
		}

		facility.Sectors = append(facility.Sectors, domain.Sector{
			ID:         row.SectorID.Int64,
			FacilityID: id,
			Name:       row.SectorName.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return facility, nil
}

func (r *Repository) GetAllFacilitiesByOrganization(organizationID int64) ([]*domain.Facility, error) {
	query := `
		SELECT
			f.id,
			f.name,
			f.created_at,
			f.version,
			s.id,
			s.name
		FROM facilities f
		LEFT JOIN sectors s ON f.id = s.facility_id
		WHERE f.organization_id = $1
		ORDER BY f.id, s.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facilitiesMap := make(map[int64]*domain.Facility)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID        int64
			Name      string
			CreatedAt time.Time
			Version   int32

			SectorID   sql.NullInt64
			SectorName sql.NullString
		}

		dst := []any{&row.ID, &row.Name, &row.CreatedAt, &row.Version, &row.SectorID, &row.SectorName}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		facility, exists := facilitiesMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个科室，需要在 map 中初始化
			facility = &domain.Facility{
				ID:             row.ID,
				OrganizationID: organizationID,
				Name:           row.Name,
				Sectors:        make([]domain.Sector, 0),
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
			}
			facilitiesMap[row.ID] = facility
			order = append(order, row.ID)
		}

		if !row.SectorID.Valid {
			continue
		}

		facility.Sectors = append(facility.Sectors, domain.Sector{
			ID:         row.SectorID.Int64,
			FacilityID: row.ID,
			Name:       row.SectorName.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	facilities := make([]*domain.Facility, 0, len(order))
	for _, id := range order {
		facilities = append(facilities, facilitiesMap[id])
	}

	return facilities, nil
}

func (r *Repository) UpdateFacility(facility *domain.Facility) error {
	query := `
		UPDATE facilities
		SET
			name = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, facility.Name, facility.ID, facility.Version).Scan(&facility.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteFacility(id int64) error {
	query := `
		DELETE FROM facilities WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateSector(sector *domain.Sector) error {
	query := `
		INSERT INTO sectors (facility_id, name)
		VALUES ($1, $2)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, sector.FacilityID, sector.Name).Scan(&sector.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSector(id int64) error {
	query := `
		DELETE FROM sectors WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
