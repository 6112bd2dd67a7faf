package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"familytree/internal/database"
	"familytree/internal/models"
	"familytree/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Users         []UserBackup         `json:"users"`
	Families      []FamilyBackup       `json:"families"`
	Members       []MemberBackup       `json:"members"`
	Relationships []RelationshipBackup `json:"relationships"`
	JoinRequests  []JoinRequestBackup  `json:"join_requests"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FamilyBackup represents a family record for backup
type FamilyBackup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberBackup represents a member record for backup
type MemberBackup struct {
	ID        int64      `json:"id"`
	FamilyID  int64      `json:"family_id"`
	Name      string     `json:"name"`
	UserID    *int64     `json:"user_id"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Birthday  *time.Time `json:"birthday"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RelationshipBackup represents a relationship record for backup
type RelationshipBackup struct {
	ID           int64     `json:"id"`
	FamilyID     int64     `json:"family_id"`
	FromMemberID int64     `json:"from_member_id"`
	ToMemberID   int64     `json:"to_member_id"`
	Type         string    `json:"type"`
	CustomLabel  *string   `json:"custom_label"`
	Description  *string   `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

// JoinRequestBackup represents a join request record for backup
type JoinRequestBackup struct {
	ID         int64      `json:"id"`
	FamilyID   int64      `json:"family_id"`
	UserID     int64      `json:"user_id"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	ReviewedBy *int64     `json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// backupTables lists tables in dependency order; clearing walks it backwards
var backupTables = []string{"users", "families", "members", "relationships", "join_requests"}

// BackupService handles database backup and restore operations
type BackupService struct {
	db            *database.DB
	users         *repository.UserRepository
	families      *repository.FamilyRepository
	members       *repository.MemberRepository
	relationships *repository.RelationshipRepository
	joinRequests  *repository.JoinRequestRepository
	logger        *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{
		db:            db,
		users:         repository.NewUserRepository(db),
		families:      repository.NewFamilyRepository(db),
		members:       repository.NewMemberRepository(db),
		relationships: repository.NewRelationshipRepository(db),
		joinRequests:  repository.NewJoinRequestRepository(db),
		logger:        logger,
	}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}

	s.logger.Info("database exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter writes a complete backup of the database as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("export summary",
		zap.Int("users", len(backup.Users)),
		zap.Int("families", len(backup.Families)),
		zap.Int("members", len(backup.Members)),
		zap.Int("relationships", len(backup.Relationships)),
		zap.Int("join_requests", len(backup.JoinRequests)))
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{Version: backupVersion, ExportedAt: time.Now().UTC()}

	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup(u))
	}

	families, err := s.families.GetAllFamilies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export families: %w", err)
	}
	for _, f := range families {
		backup.Families = append(backup.Families, FamilyBackup(f))

		members, err := s.members.GetFamilyMembers(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export members of family %d: %w", f.ID, err)
		}
		for _, m := range members {
			backup.Members = append(backup.Members, memberBackup(m))
		}

		relationships, err := s.relationships.GetFamilyRelationships(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export relationships of family %d: %w", f.ID, err)
		}
		for _, r := range relationships {
			backup.Relationships = append(backup.Relationships, relationshipBackup(r))
		}
	}

	requests, err := s.joinRequests.GetAllJoinRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export join requests: %w", err)
	}
	for _, j := range requests {
		backup.JoinRequests = append(backup.JoinRequests, JoinRequestBackup{
			ID:         j.ID,
			FamilyID:   j.FamilyID,
			UserID:     j.UserID,
			Message:    j.Message,
			Status:     string(j.Status),
			ReviewedBy: j.ReviewedBy,
			ReviewedAt: j.ReviewedAt,
			CreatedAt:  j.CreatedAt,
		})
	}

	return backup, nil
}

func memberBackup(m models.Member) MemberBackup {
	return MemberBackup{
		ID:        m.ID,
		FamilyID:  m.FamilyID,
		Name:      m.Name,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Status:    string(m.Status),
		Birthday:  m.Birthday,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func relationshipBackup(r models.Relationship) RelationshipBackup {
	return RelationshipBackup{
		ID:           r.ID,
		FamilyID:     r.FamilyID,
		FromMemberID: r.FromMemberID,
		ToMemberID:   r.ToMemberID,
		Type:         string(r.Type),
		CustomLabel:  r.CustomLabel,
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
	}
}

// DatabaseStats holds row counts per table
type DatabaseStats struct {
	Users         int `json:"users"`
	Families      int `json:"families"`
	Members       int `json:"members"`
	Relationships int `json:"relationships"`
	JoinRequests  int `json:"joinRequests"`
}

// Stats counts the rows of every backed-up table
func (s *BackupService) Stats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	counts := []*int{&stats.Users, &stats.Families, &stats.Members, &stats.Relationships, &stats.JoinRequests}
	for i, table := range backupTables {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(counts[i]); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return stats, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, clear bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, clear)
}

// ImportFromReader restores a database from a backup reader in one transaction.
// With clear set, existing rows are deleted first.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("starting database import",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt))

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if clear {
			for i := len(backupTables) - 1; i >= 0; i-- {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+backupTables[i]); err != nil {
					return fmt.Errorf("failed to clear %s: %w", backupTables[i], err)
				}
			}
		}
		return importRows(ctx, tx, &backup)
	})
	if err != nil {
		return err
	}

	if s.db.Dialect.DriverName() == "postgres" {
		if err := s.resetSequences(ctx); err != nil {
			return err
		}
	}

	s.logger.Info("database import completed",
		zap.Int("users", len(backup.Users)),
		zap.Int("families", len(backup.Families)),
		zap.Int("members", len(backup.Members)),
		zap.Int("relationships", len(backup.Relationships)),
		zap.Int("join_requests", len(backup.JoinRequests)))
	return nil
}

func importRows(ctx context.Context, tx *database.Tx, backup *BackupData) error {
	for _, u := range backup.Users {
		query := "INSERT INTO users (id, email, password_hash, name, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, u.ID, u.Email, u.PasswordHash, u.Name, u.IsAdmin, u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}

	for _, f := range backup.Families {
		query := "INSERT INTO families (id, name, description, created_by, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, f.ID, f.Name, f.Description, f.CreatedBy, f.CreatedAt, f.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}

	for _, m := range backup.Members {
		query := "INSERT INTO members (id, family_id, name, user_id, role, status, birthday, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, m.ID, m.FamilyID, m.Name, m.UserID, m.Role, m.Status, m.Birthday, m.CreatedAt, m.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import member %d: %w", m.ID, err)
		}
	}

	for _, r := range backup.Relationships {
		query := "INSERT INTO relationships (id, family_id, from_member_id, to_member_id, type, custom_label, description, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, r.ID, r.FamilyID, r.FromMemberID, r.ToMemberID, r.Type, r.CustomLabel, r.Description, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to import relationship %d: %w", r.ID, err)
		}
	}

	for _, j := range backup.JoinRequests {
		query := "INSERT INTO join_requests (id, family_id, user_id, message, status, reviewed_by, reviewed_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, j.ID, j.FamilyID, j.UserID, j.Message, j.Status, j.ReviewedBy, j.ReviewedAt, j.CreatedAt); err != nil {
			return fmt.Errorf("failed to import join request %d: %w", j.ID, err)
		}
	}

	return nil
}

// resetSequences moves PostgreSQL id sequences past the imported ids
func (s *BackupService) resetSequences(ctx context.Context) error {
	for _, table := range backupTables {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
