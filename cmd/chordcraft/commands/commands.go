package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/chordcraft/core/internal/adapters/repository"
	"github.com/chordcraft/core/internal/application/services"
	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/config"
	"github.com/chordcraft/core/internal/infrastructure/database"
	"github.com/chordcraft/core/internal/infrastructure/idgen"
	"github.com/chordcraft/core/internal/infrastructure/logger"
	"github.com/chordcraft/core/internal/infrastructure/server"
	"github.com/chordcraft/core/internal/ports"
)

// Build information, set with -ldflags at release time
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewRootCommand assembles the chordcraft command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chordcraft",
		Short:         "ChordCraft API Server",
		Long:          `ChordCraft stores chord progressions and guitar chord shapes in a single self-healing JSON document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewNormalizeCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ChordCraft API server",
		Long:  "Start the ChordCraft API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "SQLite storage migration commands",
		Long:  "Manage the schema of the SQLite storage backend (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context(), cmd.OutOrStdout(), "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context(), cmd.OutOrStdout(), "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd.Context(), cmd.OutOrStdout())
		},
	})

	return migrateCmd
}

// NewNormalizeCommand creates the normalize command
func NewNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Repair the stored document and print what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "list <progressions|shapes>",
		Short:     "Print a collection as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(entities.KindProgression), string(entities.KindShape)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd.OutOrStdout(), entities.Kind(args[0]))
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print ChordCraft version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ChordCraft v%s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

// app bundles what every storage-touching command needs
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	gateway ports.DocumentGateway
}

func (a *app) Close() {
	if err := a.gateway.Close(); err != nil {
		a.logger.Warnw("Failed to close storage", "error", err)
	}
	_ = a.logger.Close()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	gateway, err := repository.NewGateway(ctx, cfg.Storage, appLogger)
	if err != nil {
		_ = appLogger.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: appLogger, gateway: gateway}, nil
}

func (a *app) store() (*services.Store, ports.IDGenerator) {
	ids := idgen.New()
	return services.NewStore(a.gateway, services.NewNormalizer(ids), nil, a.logger), ids
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(a.cfg, a.gateway, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	a.logger.Infow("Starting ChordCraft API server",
		"port", a.cfg.Server.Port,
		"environment", a.cfg.App.Environment,
		"storage", a.cfg.Storage.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runNormalize(ctx context.Context, out io.Writer) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	store, _ := a.store()
	report, err := store.Repair(ctx)
	if err != nil {
		return err
	}

	if !report.Changed() {
		fmt.Fprintln(out, "Document already normalized")
		return nil
	}

	fmt.Fprintf(out, "Created collections: %d\n", len(report.CreatedCollections))
	for _, kind := range report.CreatedCollections {
		fmt.Fprintf(out, "  %s\n", kind.Collection())
	}
	fmt.Fprintf(out, "Reassigned IDs: %d\n", len(report.ReassignedIDs))
	for _, change := range report.ReassignedIDs {
		previous := change.Previous
		if previous == "" {
			previous = "(none)"
		}
		fmt.Fprintf(out, "  %s[%d]: %s -> %s\n", change.Kind.Collection(), change.Index, previous, change.Current)
	}
	fmt.Fprintf(out, "Repaired fields: %d\n", len(report.RepairedFields))
	for _, repair := range report.RepairedFields {
		fmt.Fprintf(out, "  %s %s: %s\n", repair.Kind.Collection(), repair.ID, repair.Field)
	}
	return nil
}

func runList(ctx context.Context, out io.Writer, kind entities.Kind) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	store, ids := a.store()
	validate := services.NewValidator()

	var items any
	switch kind {
	case entities.KindProgression:
		items, err = services.NewProgressionService(store, ids, validate, a.logger).ListProgressions(ctx)
	case entities.KindShape:
		items, err = services.NewShapeService(store, ids, validate, a.logger).ListShapes(ctx)
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	if err != nil {
		return err
	}

	payload, err := entities.EncodeValue(items, "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind.Collection(), err)
	}
	_, err = out.Write(payload)
	return err
}

func openMigrationDB(ctx context.Context) (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Storage.Backend != config.StorageSQLite {
		return nil, fmt.Errorf("migrations apply to the sqlite backend, configured backend is %q", cfg.Storage.Backend)
	}
	return database.New(ctx, cfg.Storage.SQLitePath)
}

func runMigration(ctx context.Context, out io.Writer, direction string) error {
	db, err := openMigrationDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.Migrator()
	if err != nil {
		return err
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintln(out, "No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintf(out, "Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion(ctx context.Context, out io.Writer) error {
	db, err := openMigrationDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.Migrator()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(out, "No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Fprintf(out, "Current migration version: %d\n", version)
	fmt.Fprintf(out, "Dirty: %t\n", dirty)
	return nil
}
