package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"familytree/internal/database"
	"familytree/internal/models"
)

const (
	memberColumns = "id, family_id, name, user_id, role, status, birthday, created_at, updated_at"

	insertMemberQuery = `
		INSERT INTO members (family_id, name, user_id, role, status, birthday)
		VALUES (?, ?, ?, ?, ?, ?)
	`
)

// MemberRepository handles database operations for family members
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// CreateMember inserts a member built by models.NewMember
func (r *MemberRepository) CreateMember(ctx context.Context, m models.Member) (*models.Member, error) {
	return createMember(ctx, r.db, m)
}

func createMember(ctx context.Context, db database.DBTX, m models.Member) (*models.Member, error) {
	id, err := db.ExecReturningID(ctx, insertMemberQuery,
		m.FamilyID, m.Name, m.UserID, string(m.Role), string(m.Status), m.Birthday)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	stored := m.WithID(id)
	return &stored, nil
}

// GetMemberByID retrieves a member by ID
func (r *MemberRepository) GetMemberByID(ctx context.Context, id int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE id = ?"
	member, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetMemberByUserAndFamily retrieves the member record linking an account to a family
func (r *MemberRepository) GetMemberByUserAndFamily(ctx context.Context, userID, familyID int64) (*models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE user_id = ? AND family_id = ?"
	member, err := scanMember(r.db.QueryRowContext(ctx, query, userID, familyID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// GetActiveMembers retrieves the active members of a family ordered by ID
func (r *MemberRepository) GetActiveMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE family_id = ? AND status = ? ORDER BY id"
	return r.queryMembers(ctx, query, familyID, string(models.StatusActive))
}

// GetFamilyMembers retrieves every member of a family regardless of status
func (r *MemberRepository) GetFamilyMembers(ctx context.Context, familyID int64) ([]models.Member, error) {
	query := "SELECT " + memberColumns + " FROM members WHERE family_id = ? ORDER BY id"
	return r.queryMembers(ctx, query, familyID)
}

func (r *MemberRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]models.Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// UpdateMemberStatus sets a member's lifecycle status
func (r *MemberRepository) UpdateMemberStatus(ctx context.Context, id int64, status models.MemberStatus) error {
	query := "UPDATE members SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	return nil
}

func scanMember(s scanner) (*models.Member, error) {
	var (
		m        models.Member
		userID   sql.NullInt64
		role     string
		status   string
		birthday sql.NullTime
	)
	if err := s.Scan(&m.ID, &m.FamilyID, &m.Name, &userID, &role, &status, &birthday, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if m.Role, err = models.ParseMemberRole(role); err != nil {
		return nil, err
	}
	if m.Status, err = models.ParseMemberStatus(status); err != nil {
		return nil, err
	}
	m.UserID = int64Ptr(userID)
	m.Birthday = timePtr(birthday)

	return &m, nil
}
