package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"familytree/internal/database"
	"familytree/internal/models"
)

const joinRequestSelect = `
	SELECT j.id, j.family_id, j.user_id, j.message, j.status, j.reviewed_by, j.reviewed_at, j.created_at,
	       u.name, u.email
	FROM join_requests j
	INNER JOIN users u ON j.user_id = u.id
`

// JoinRequestRepository handles database operations for requests to join a family
type JoinRequestRepository struct {
	db *database.DB
}

// NewJoinRequestRepository creates a new join request repository
func NewJoinRequestRepository(db *database.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// CreateJoinRequest records a pending request from userID to join familyID
func (r *JoinRequestRepository) CreateJoinRequest(ctx context.Context, familyID, userID int64, message string) (*models.JoinRequest, error) {
	query := `INSERT INTO join_requests (family_id, user_id, message, status) VALUES (?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(ctx, query, familyID, userID, message, string(models.JoinRequestPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	return &models.JoinRequest{
		ID:        id,
		FamilyID:  familyID,
		UserID:    userID,
		Message:   message,
		Status:    models.JoinRequestPending,
		CreatedAt: time.Now(),
	}, nil
}

// GetJoinRequestByID retrieves a join request with the requester's name and email
func (r *JoinRequestRepository) GetJoinRequestByID(ctx context.Context, id int64) (*models.JoinRequest, error) {
	req, err := scanJoinRequest(r.db.QueryRowContext(ctx, joinRequestSelect+" WHERE j.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return req, nil
}

// GetPendingRequest retrieves the pending request of a user for a family, if any
func (r *JoinRequestRepository) GetPendingRequest(ctx context.Context, familyID, userID int64) (*models.JoinRequest, error) {
	query := joinRequestSelect + " WHERE j.family_id = ? AND j.user_id = ? AND j.status = ?"
	req, err := scanJoinRequest(r.db.QueryRowContext(ctx, query, familyID, userID, string(models.JoinRequestPending)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	return req, nil
}

// GetPendingRequests retrieves the pending requests of a family, oldest first
func (r *JoinRequestRepository) GetPendingRequests(ctx context.Context, familyID int64) ([]models.JoinRequest, error) {
	query := joinRequestSelect + " WHERE j.family_id = ? AND j.status = ? ORDER BY j.id"
	return r.queryJoinRequests(ctx, query, familyID, string(models.JoinRequestPending))
}

// GetAllJoinRequests retrieves every join request
func (r *JoinRequestRepository) GetAllJoinRequests(ctx context.Context) ([]models.JoinRequest, error) {
	return r.queryJoinRequests(ctx, joinRequestSelect+" ORDER BY j.id")
}

func (r *JoinRequestRepository) queryJoinRequests(ctx context.Context, query string, args ...interface{}) ([]models.JoinRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %w", err)
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		req, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate join requests: %w", err)
	}

	return requests, nil
}

// Approve marks a pending request approved and creates the member it asked for,
// both in one transaction. It returns the new member.
func (r *JoinRequestRepository) Approve(ctx context.Context, req *models.JoinRequest, reviewerID int64, member models.Member) (*models.Member, error) {
	var stored *models.Member
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := review(ctx, tx, req.ID, reviewerID, models.JoinRequestApproved); err != nil {
			return err
		}
		var err error
		stored, err = createMember(ctx, tx, member)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Reject marks a pending request rejected
func (r *JoinRequestRepository) Reject(ctx context.Context, req *models.JoinRequest, reviewerID int64) error {
	return review(ctx, r.db, req.ID, reviewerID, models.JoinRequestRejected)
}

// ErrRequestAlreadyReviewed is returned when a request left the pending state concurrently
var ErrRequestAlreadyReviewed = errors.New("join request has already been reviewed")

func review(ctx context.Context, db database.DBTX, id, reviewerID int64, status models.JoinRequestStatus) error {
	query := `
		UPDATE join_requests SET status = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := db.ExecContext(ctx, query, string(status), reviewerID, time.Now().UTC(), id, string(models.JoinRequestPending))
	if err != nil {
		return fmt.Errorf("failed to review join request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to review join request: %w", err)
	}
	if n == 0 {
		return ErrRequestAlreadyReviewed
	}
	return nil
}

func scanJoinRequest(s scanner) (*models.JoinRequest, error) {
	var (
		req        models.JoinRequest
		status     string
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
	)
	err := s.Scan(&req.ID, &req.FamilyID, &req.UserID, &req.Message, &status, &reviewedBy, &reviewedAt, &req.CreatedAt,
		&req.RequestName, &req.RequestMail)
	if err != nil {
		return nil, err
	}

	req.Status = models.JoinRequestStatus(status)
	req.ReviewedBy = int64Ptr(reviewedBy)
	req.ReviewedAt = timePtr(reviewedAt)

	return &req, nil
}
