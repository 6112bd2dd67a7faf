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

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and adds the creator as its owner member
func (r *FamilyRepository) CreateFamily(ctx context.Context, name, description string, creator *models.User) (*models.Family, *models.Member, error) {
	owner, err := models.NewMember(0, creator.Name, &creator.ID, models.RoleOwner, nil)
	if err != nil {
		return nil, nil, err
	}

	var familyID int64
	var stored *models.Member
	err = r.db.WithTx(ctx, func(tx *database.Tx) error {
		familyID, err = tx.ExecReturningID(ctx,
			"INSERT INTO families (name, description, created_by) VALUES (?, ?, ?)",
			name, description, creator.ID)
		if err != nil {
			return fmt.Errorf("failed to create family: %w", err)
		}

		owner.FamilyID = familyID
		stored, err = createMember(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	family := &models.Family{
		ID:          familyID,
		Name:        name,
		Description: description,
		CreatedBy:   creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return family, stored, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(ctx context.Context, familyID int64) (*models.Family, error) {
	query := "SELECT id, name, description, created_by, created_at, updated_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRowContext(ctx, query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.Description,
		&family.CreatedBy,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// GetUserFamilies retrieves the families a user is an active member of
func (r *FamilyRepository) GetUserFamilies(ctx context.Context, userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.description, f.created_by, f.created_at, f.updated_at
		FROM families f
		INNER JOIN members m ON f.id = m.family_id
		WHERE m.user_id = ? AND m.status = ?
		ORDER BY f.id
	`
	return r.queryFamilies(ctx, query, userID, string(models.StatusActive))
}

// GetAllFamilies retrieves every family
func (r *FamilyRepository) GetAllFamilies(ctx context.Context) ([]models.Family, error) {
	return r.queryFamilies(ctx, "SELECT id, name, description, created_by, created_at, updated_at FROM families ORDER BY id")
}

func (r *FamilyRepository) queryFamilies(ctx context.Context, query string, args ...interface{}) ([]models.Family, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.Description, &family.CreatedBy, &family.CreatedAt, &family.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate families: %w", err)
	}

	return families, nil
}
