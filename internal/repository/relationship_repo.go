package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"familytree/internal/database"
	"familytree/internal/models"
)

const relationshipColumns = "id, family_id, from_member_id, to_member_id, type, custom_label, description, created_at"

// RelationshipRepository handles database operations for relationships between members
type RelationshipRepository struct {
	db *database.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *database.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// CreateRelationship inserts a relationship built by models.NewRelationship
func (r *RelationshipRepository) CreateRelationship(ctx context.Context, rel models.Relationship) (*models.Relationship, error) {
	query := `
		INSERT INTO relationships (family_id, from_member_id, to_member_id, type, custom_label, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		rel.FamilyID, rel.FromMemberID, rel.ToMemberID, string(rel.Type), rel.CustomLabel, rel.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	stored := rel.WithID(id)
	return &stored, nil
}

// GetRelationshipByID retrieves a relationship by ID
func (r *RelationshipRepository) GetRelationshipByID(ctx context.Context, id int64) (*models.Relationship, error) {
	query := "SELECT " + relationshipColumns + " FROM relationships WHERE id = ?"
	rel, err := scanRelationship(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, nil
}

// GetFamilyRelationships retrieves every relationship of a family ordered by ID
func (r *RelationshipRepository) GetFamilyRelationships(ctx context.Context, familyID int64) ([]models.Relationship, error) {
	query := "SELECT " + relationshipColumns + " FROM relationships WHERE family_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var relationships []models.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		relationships = append(relationships, *rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate relationships: %w", err)
	}

	return relationships, nil
}

// DeleteRelationship removes a relationship
func (r *RelationshipRepository) DeleteRelationship(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}
	return nil
}

func scanRelationship(s scanner) (*models.Relationship, error) {
	var (
		rel         models.Relationship
		relType     string
		customLabel sql.NullString
		description sql.NullString
	)
	if err := s.Scan(&rel.ID, &rel.FamilyID, &rel.FromMemberID, &rel.ToMemberID, &relType, &customLabel, &description, &rel.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if rel.Type, err = models.ParseRelationshipType(relType); err != nil {
		return nil, err
	}
	rel.CustomLabel = stringPtr(customLabel)
	rel.Description = stringPtr(description)

	return &rel, nil
}
