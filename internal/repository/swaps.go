package repository

import (
	"context"
	"time"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func (r *Repository) CreateSwapRequest(swap *domain.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (shift_id, requester_id, target_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{swap.ShiftID, swap.RequesterID, swap.TargetID, swap.Reason}
	dst := []any{&swap.ID, &swap.Status, &swap.CreatedAt, &swap.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSwapRequestByID(id int64) (*domain.SwapRequest, error) {
	query := `
		SELECT
			sr.shift_id,
			sr.requester_id,
			sr.target_id,
			sr.reason,
			sr.status,
			sr.created_at,
			sr.version,
			requester.full_name,
			target.full_name,
			s.start_time,
			s.end_time
		FROM swap_requests sr
		JOIN users requester ON sr.requester_id = requester.id
		JOIN users target ON sr.target_id = target.id
		JOIN materialized_shifts s ON sr.shift_id = s.id
		WHERE sr.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	swap := &domain.SwapRequest{
		ID: id,
	}

	var shiftStart, shiftEnd time.Time
	dst := []any{&swap.ShiftID, &swap.RequesterID, &swap.TargetID, &swap.Reason, &swap.Status, &swap.CreatedAt, &swap.Version, &swap.RequesterName, &swap.TargetName, &shiftStart, &shiftEnd}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	swap.ShiftStart = &shiftStart
	swap.ShiftEnd = &shiftEnd

	return swap, nil
}

// GetSwapRequestsByUser 返回某个用户作为申请人或者目标员工的所有换班申请
func (r *Repository) GetSwapRequestsByUser(userID int64) ([]*domain.SwapRequest, error) {
	query := `
		SELECT
			sr.id,
			sr.shift_id,
			sr.requester_id,
			sr.target_id,
			sr.reason,
			sr.status,
			sr.created_at,
			sr.version,
			requester.full_name,
			target.full_name,
			s.start_time,
			s.end_time
		FROM swap_requests sr
		JOIN users requester ON sr.requester_id = requester.id
		JOIN users target ON sr.target_id = target.id
		JOIN materialized_shifts s ON sr.shift_id = s.id
		WHERE sr.requester_id = $1 OR sr.target_id = $1
		ORDER BY sr.id DESC
	`

	return r.querySwapRequests(query, userID)
}

// GetAllSwapRequestsByOrganization 返回机构下的所有换班申请，排班管理员审批用
func (r *Repository) GetAllSwapRequestsByOrganization(organizationID int64) ([]*domain.SwapRequest, error) {
	query := `
		SELECT
			sr.id,
			sr.shift_id,
			sr.requester_id,
			sr.target_id,
			sr.reason,
			sr.status,
			sr.created_at,
			sr.version,
			requester.full_name,
			target.full_name,
			s.start_time,
			s.end_time
		FROM swap_requests sr
		JOIN users requester ON sr.requester_id = requester.id
		JOIN users target ON sr.target_id = target.id
		JOIN materialized_shifts s ON sr.shift_id = s.id
		WHERE s.organization_id = $1
		ORDER BY sr.id DESC
	`

	return r.querySwapRequests(query, organizationID)
}

func (r *Repository) querySwapRequests(query string, arg any) ([]*domain.SwapRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	swaps := make([]*domain.SwapRequest, 0)
	for rows.Next() {
		swap := &domain.SwapRequest{}
		var shiftStart, shiftEnd time.Time
		dst := []any{&swap.ID, &swap.ShiftID, &swap.RequesterID, &swap.TargetID, &swap.Reason, &swap.Status, &swap.CreatedAt, &swap.Version, &swap.RequesterName, &swap.TargetName, &shiftStart, &shiftEnd}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		swap.ShiftStart = &shiftStart
		swap.ShiftEnd = &shiftEnd
		swaps = append(swaps, swap)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return swaps, nil
}

func (r *Repository) UpdateSwapRequestStatus(swap *domain.SwapRequest) error {
	query := `
		UPDATE swap_requests
		SET
			status = $1,
			version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, swap.Status, swap.ID, swap.Version).Scan(&swap.Version); err != nil {
		return err
	}

	return nil
}
