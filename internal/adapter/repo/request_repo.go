package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// RequestRepositoryPG implements domain.RequestRepository backed by PostgreSQL.
type RequestRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewRequestRepository creates a new generation request repository.
func NewRequestRepository(sql infra.SQLExecutor) *RequestRepositoryPG {
	return &RequestRepositoryPG{sql: sql}
}

// Enqueue inserts a request in QUEUED state.
func (r *RequestRepositoryPG) Enqueue(ctx context.Context, req *domain.Request) error {
	_, err := r.sql.Exec(ctx, sqlinline.QEnqueueRequest,
		req.ID,
		req.TopicID,
		req.Language,
	)
	return err
}

// GetByID fetches a request by UUID.
func (r *RequestRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectRequest, id)
	var req domain.Request
	if err := row.Scan(
		&req.ID,
		&req.TopicID,
		&req.Status,
		&req.Language,
		&req.ResultJSON,
		&req.ErrorMessage,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus moves a request to status, optionally recording an error
// message and the aggregated result payload.
func (r *RequestRepositoryPG) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, errMsg *string, resultJSON []byte) error {
	_, err := r.sql.Exec(ctx, sqlinline.QUpdateRequestStatus, id, status, errMsg, nullableBytes(resultJSON))
	return err
}

// ClaimNext picks the oldest queued request and marks it RUNNING in one
// statement, safe against concurrent workers.
func (r *RequestRepositoryPG) ClaimNext(ctx context.Context) (*domain.Request, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimNextRequest)
	var req domain.Request
	if err := row.Scan(
		&req.ID,
		&req.TopicID,
		&req.Status,
		&req.Language,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
