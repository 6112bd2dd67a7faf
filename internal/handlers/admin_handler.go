package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"familytree/internal/familytree"
	"familytree/internal/service"
)

// BackupService is the database backup API the admin handler needs
type BackupService interface {
	Stats(ctx context.Context) (*service.DatabaseStats, error)
	ExportToWriter(ctx context.Context, w io.Writer) error
	ImportFromReader(ctx context.Context, r io.Reader, clear bool) error
}

// AdminHandler handles site administration for accounts flagged as admin
type AdminHandler struct {
	backupService BackupService
	logger        *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(backupService BackupService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		backupService: backupService,
		logger:        logger,
	}
}

// RequireAdmin rejects authenticated users that are not site admins
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			respondWithError(w, h.logger, http.StatusForbidden, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns row counts of the main tables
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.backupService.Stats(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to get database stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("familytree_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.ExportToWriter(r.Context(), w); err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to export database", err)
		return
	}

	h.logger.Info("database exported", zap.String("admin", user.Email))
}

// ImportDatabase restores a backup sent as the request body. ?clear=true empties the
// tables first.
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	clear := false
	if raw := r.URL.Query().Get("clear"); raw != "" {
		var err error
		if clear, err = strconv.ParseBool(raw); err != nil {
			respondWithServiceError(w, h.logger, fmt.Errorf("%w: clear must be a boolean", familytree.ErrInvalidArgument))
			return
		}
	}

	if err := h.backupService.ImportFromReader(r.Context(), r.Body, clear); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, "Failed to import database", err)
		return
	}

	h.logger.Info("database imported", zap.String("admin", user.Email), zap.Bool("clear", clear))
	stats, err := h.backupService.Stats(r.Context())
	if err != nil {
		respondWithError(w, h.logger, http.StatusInternalServerError, "Failed to get database stats", err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
