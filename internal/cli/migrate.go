package cli

import (
	"context"
	"database/sql"
	"fmt"

	"artquiz-service/internal/config"
	"artquiz-service/internal/infra/file"
	"artquiz-service/internal/infra/postgres"
	pgmigrations "artquiz-service/internal/infra/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// NewMigrateCmd applies database migrations and optionally imports the definitions file.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "import quiz.definitions_path into Postgres after migrating")
	return cmd
}

func runMigrations(ctx context.Context, configPath string, seed bool) error {
	d, err := loadDeps(ctx, configPath)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := runMigrationsWithConfig(ctx, d.cfg, d.logger); err != nil {
		return err
	}
	if !seed {
		return nil
	}

	quizzes, err := file.NewQuizLoader(d.cfg.Quiz.DefinitionsPath).LoadQuizzes(ctx)
	if err != nil {
		return err
	}
	if err := postgres.ImportQuizzes(ctx, d.pool, quizzes); err != nil {
		return err
	}
	d.logger.Info("quiz definitions imported", zap.Int("quizzes", len(quizzes)))
	return nil
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
		return nil
	}
	log.Info("migrations applied", zap.String("group", group.String()))
	return nil
}
