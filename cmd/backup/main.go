package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"familytree/internal/config"
	"familytree/internal/database"
	"familytree/internal/logging"
	"familytree/internal/service"
)

var (
	exportOutput string
	importInput  string
	importClear  bool
	assumeYes    bool

	rootCmd = &cobra.Command{
		Use:           "backup",
		Short:         "Export and import the family tree database as JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write every user, family, member, relationship and join request to a JSON file",
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Restore a JSON backup written by export",
		RunE:  runImport,
	}
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "input file path")
	importCmd.Flags().BoolVar(&importClear, "clear", false, "delete existing data before import (destructive)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation with --clear")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openBackupService connects to the configured database and brings its schema up to date
func openBackupService(ctx context.Context) (*service.BackupService, *zap.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(ctx, cfg.MigrationsPath, logger); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		db.Close()
		_ = logger.Sync()
	}
	return service.NewBackupService(db, logger), logger, cleanup, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	backupService, logger, cleanup, err := openBackupService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	outputPath := exportOutput
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := backupService.Export(cmd.Context(), outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		logger.Info("export complete", zap.String("path", outputPath), zap.Int64("bytes", info.Size()))
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(importInput); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	if importClear && !assumeYes {
		fmt.Fprint(cmd.OutOrStdout(), "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
			return nil
		}
	}

	backupService, logger, cleanup, err := openBackupService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if err := backupService.Import(cmd.Context(), importInput, importClear); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	stats, err := backupService.Stats(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("import complete",
		zap.String("path", importInput),
		zap.Int("users", stats.Users),
		zap.Int("families", stats.Families),
		zap.Int("members", stats.Members),
		zap.Int("relationships", stats.Relationships),
		zap.Int("join_requests", stats.JoinRequests))
	return nil
}
