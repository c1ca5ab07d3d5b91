package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hkretail/promo-dispatch/internal/domain"
)

type RunRepository interface {
	CreateRun(ctx context.Context, run *domain.CalcRun) (int64, error)
	CompleteRun(ctx context.Context, run *domain.CalcRun) error
	FailRun(ctx context.Context, runID int64, message string) error
	GetRun(ctx context.Context, runID int64) (*domain.CalcRun, error)
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.CalcRun, int, error)
	SaveWarnings(ctx context.Context, runID int64, warnings []string) error
	GetWarnings(ctx context.Context, runID int64) ([]domain.RunWarning, error)
}

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) CreateRun(ctx context.Context, run *domain.CalcRun) (int64, error) {
	query := `
        INSERT INTO calc_runs (inventory_file, promotion_file, lead_time_days, status, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		run.InventoryFile, run.PromotionFile, run.LeadTimeDays, domain.RunStatusRunning, time.Now())
	if err != nil {
		return 0, fmt.Errorf("error creating calc run: %w", err)
	}

	return id, nil
}

func (r *runRepository) CompleteRun(ctx context.Context, run *domain.CalcRun) error {
	query := `
        UPDATE calc_runs
        SET status = $2, output_file = $3, detail_rows = $4, summary_rows = $5,
            warning_count = $6, completed_at = $7
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query,
		run.ID, domain.RunStatusCompleted, run.OutputFile,
		run.DetailRows, run.SummaryRows, run.WarningCount, time.Now())
	if err != nil {
		return fmt.Errorf("error completing calc run %d: %w", run.ID, err)
	}

	return nil
}

func (r *runRepository) FailRun(ctx context.Context, runID int64, message string) error {
	query := `
        UPDATE calc_runs
        SET status = $2, error_message = $3, completed_at = $4
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, runID, domain.RunStatusFailed, message, time.Now())
	if err != nil {
		return fmt.Errorf("error failing calc run %d: %w", runID, err)
	}

	return nil
}

func (r *runRepository) GetRun(ctx context.Context, runID int64) (*domain.CalcRun, error) {
	query := `
        SELECT id, inventory_file, promotion_file, COALESCE(output_file, '') AS output_file,
            lead_time_days, status, COALESCE(error_message, '') AS error_message,
            detail_rows, summary_rows, warning_count,
            created_at, COALESCE(completed_at, created_at) AS completed_at
        FROM calc_runs
        WHERE id = $1
    `

	var run domain.CalcRun
	if err := r.db.GetContext(ctx, &run, query, runID); err != nil {
		return nil, fmt.Errorf("error getting calc run %d: %w", runID, err)
	}

	return &run, nil
}

func (r *runRepository) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.CalcRun, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM calc_runs
        WHERE 1=1
    `

	query := `
        SELECT id, inventory_file, promotion_file, COALESCE(output_file, '') AS output_file,
            lead_time_days, status, COALESCE(error_message, '') AS error_message,
            detail_rows, summary_rows, warning_count,
            created_at, COALESCE(completed_at, created_at) AS completed_at
        FROM calc_runs
        WHERE 1=1
    `

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, filter.Status)
		argCounter++
	}

	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting calc runs: %w", err)
	}

	query += " ORDER BY created_at DESC"

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var runs []domain.CalcRun
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error listing calc runs: %w", err)
	}

	return runs, total, nil
}

func (r *runRepository) SaveWarnings(ctx context.Context, runID int64, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}

	query := `
        INSERT INTO run_warnings (run_id, position, message)
        VALUES (:run_id, :position, :message)
    `

	records := make([]domain.RunWarning, 0, len(warnings))
	for i, w := range warnings {
		records = append(records, domain.RunWarning{RunID: runID, Position: i, Message: w})
	}

	if _, err := r.db.NamedExecContext(ctx, query, records); err != nil {
		return fmt.Errorf("error saving warnings for run %d: %w", runID, err)
	}

	return nil
}

func (r *runRepository) GetWarnings(ctx context.Context, runID int64) ([]domain.RunWarning, error) {
	query := `
        SELECT id, run_id, position, message
        FROM run_warnings
        WHERE run_id = $1
        ORDER BY position
    `

	var warnings []domain.RunWarning
	if err := r.db.SelectContext(ctx, &warnings, query, runID); err != nil {
		return nil, fmt.Errorf("error getting warnings for run %d: %w", runID, err)
	}

	return warnings, nil
}
