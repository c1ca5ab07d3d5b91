package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Manage the dispatch calculation database",
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the calc run tables if they do not exist",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runSchema,
			},
			{
				Name:   "reset",
				Usage:  "Drop all recorded runs and their rows",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runReset,
			},
			{
				Name:  "pull-archive",
				Usage: "Download archived run artifacts from the archive bucket",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "prefix",
						Usage:   "Object key prefix to download (e.g. 2026/08/28)",
						EnvVars: []string{"ARCHIVE_PULL_PREFIX"},
					},
					&cli.StringFlag{
						Name:    "dest",
						Usage:   "Local destination directory",
						Value:   "./data/tmp/archive",
						EnvVars: []string{"ARCHIVE_PULL_DEST"},
					},
				},
				Action: runPullArchive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDB(c *cli.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func runSchema(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	log.Println("Creating calc run tables...")
	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Schema ready")
	return nil
}

func runReset(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	query := "TRUNCATE dispatch_detail, dispatch_summary, run_warnings, calc_runs RESTART IDENTITY"
	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to reset tables: %w", err)
	}

	log.Println("All recorded runs removed")
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS calc_runs (
		id BIGSERIAL PRIMARY KEY,
		inventory_file TEXT NOT NULL,
		promotion_file TEXT NOT NULL,
		output_file TEXT,
		lead_time_days INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		detail_rows INT NOT NULL DEFAULT 0,
		summary_rows INT NOT NULL DEFAULT 0,
		warning_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS run_warnings (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		position INT NOT NULL,
		message TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dispatch_detail (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		group_no TEXT NOT NULL DEFAULT '',
		article TEXT NOT NULL,
		site TEXT NOT NULL,
		rp_type TEXT NOT NULL DEFAULT '',
		supply_source INT NOT NULL DEFAULT 0,
		is_promo_sku BOOLEAN NOT NULL DEFAULT FALSE,
		net_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
		pending DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_demand DOUBLE PRECISION NOT NULL DEFAULT 0,
		net_demand DOUBLE PRECISION NOT NULL DEFAULT 0,
		dispatch_qty INT NOT NULL DEFAULT 0,
		dn_qty INT NOT NULL DEFAULT 0,
		dispatch_type TEXT NOT NULL DEFAULT '',
		remark TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_detail_run ON dispatch_detail (run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_detail_article ON dispatch_detail (run_id, article)`,
	`CREATE TABLE IF NOT EXISTS dispatch_summary (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES calc_runs(id) ON DELETE CASCADE,
		group_no TEXT NOT NULL DEFAULT '',
		article TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		total_demand DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_pending DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_dispatch INT NOT NULL DEFAULT 0,
		total_dn_qty INT NOT NULL DEFAULT 0,
		dc_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
		effective_inventory DOUBLE PRECISION NOT NULL DEFAULT 0,
		inventory_status TEXT NOT NULL DEFAULT '',
		inventory_difference DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dispatch_summary_run ON dispatch_summary (run_id)`,
}
