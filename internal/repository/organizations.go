package repository

import (
	"context"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) CreateOrganization(org *domain.Organization) error {
	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, org.Name).Scan(&org.ID, &org.CreatedAt, &org.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOrganizationByID(id int64) (*domain.Organization, error) {
	query := `
		SELECT name, created_at, version FROM organizations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	org := &domain.Organization{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&org.Name, &org.CreatedAt, &org.Version); err != nil {
		return nil, err
	}

	return org, nil
}

func (r *Repository) GetOrganizationByName(name string) (*domain.Organization, error) {
	query := `
		SELECT id, created_at, version FROM organizations WHERE name = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	org := &domain.Organization{
		Name: name,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&org.ID, &org.CreatedAt, &org.Version); err != nil {
		return nil, err
	}

	return org, nil
}

func (r *Repository) GetAllOrganizations() ([]*domain.Organization, error) {
	query := `
		SELECT id, name, created_at, version FROM organizations ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := make([]*domain.Organization, 0)
	for rows.Next() {
		org := &domain.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt, &org.Version); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orgs, nil
}

func (r *Repository) UpdateOrganization(org *domain.Organization) error {
	query := `
		UPDATE organizations
		SET
			name = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, org.Name, org.ID, org.Version).Scan(&org.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteOrganization(id int64) error {
	query := `
		DELETE FROM organizations WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
