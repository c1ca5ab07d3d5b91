package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hkretail/promo-dispatch/internal/domain"
	"github.com/hkretail/promo-dispatch/internal/repository/postgres"
)

type DispatchRepository interface {
	SaveDetail(ctx context.Context, runID int64, rows []domain.DispatchDetail) error
	SaveSummary(ctx context.Context, runID int64, rows []domain.DispatchSummary) error
	GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, error)
	GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, error)
}

type dispatchRepository struct {
	db *postgres.DB
}

func NewDispatchRepository(db *postgres.DB) DispatchRepository {
	return &dispatchRepository{db: db}
}

// insertBatchSize keeps a NamedExec under Postgres's 65535-parameter limit.
const insertBatchSize = 500

func (r *dispatchRepository) SaveDetail(ctx context.Context, runID int64, rows []domain.DispatchDetail) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
        INSERT INTO dispatch_detail (
            run_id, group_no, article, site, rp_type, supply_source, is_promo_sku,
            net_stock, pending, total_demand, net_demand,
            dispatch_qty, dn_qty, dispatch_type, remark
        ) VALUES (
            :run_id, :group_no, :article, :site, :rp_type, :supply_source, :is_promo_sku,
            :net_stock, :pending, :total_demand, :net_demand,
            :dispatch_qty, :dn_qty, :dispatch_type, :remark
        )
    `

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			batch := rows[start:end]
			for i := range batch {
				batch[i].RunID = runID
			}
			if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving dispatch detail for run %d: %w", runID, err)
	}

	return nil
}

func (r *dispatchRepository) SaveSummary(ctx context.Context, runID int64, rows []domain.DispatchSummary) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
        INSERT INTO dispatch_summary (
            run_id, group_no, article, description,
            total_demand, total_stock, total_pending, total_dispatch, total_dn_qty,
            dc_stock, effective_inventory, inventory_status, inventory_difference
        ) VALUES (
            :run_id, :group_no, :article, :description,
            :total_demand, :total_stock, :total_pending, :total_dispatch, :total_dn_qty,
            :dc_stock, :effective_inventory, :inventory_status, :inventory_difference
        )
    `

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			batch := rows[start:end]
			for i := range batch {
				batch[i].RunID = runID
			}
			if _, err := tx.NamedExecContext(ctx, query, batch); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error saving dispatch summary for run %d: %w", runID, err)
	}

	return nil
}

func (r *dispatchRepository) GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, error) {
	countQuery := `
        SELECT COUNT(*)
        FROM dispatch_detail
        WHERE run_id = $1
    `

	query := `
        SELECT id, run_id, group_no, article, site, rp_type, supply_source, is_promo_sku,
            net_stock, pending, total_demand, net_demand,
            dispatch_qty, dn_qty, dispatch_type, remark
        FROM dispatch_detail
        WHERE run_id = $1
    `

	args := []interface{}{runID}
	var conditions []string
	argCounter := 2

	if filter.Article != "" {
		conditions = append(conditions, fmt.Sprintf("article = $%d", argCounter))
		args = append(args, filter.Article)
		argCounter++
	}

	if filter.Site != "" {
		conditions = append(conditions, fmt.Sprintf("site = $%d", argCounter))
		args = append(args, filter.Site)
		argCounter++
	}

	if filter.DispatchType != "" {
		conditions = append(conditions, fmt.Sprintf("dispatch_type = $%d", argCounter))
		args = append(args, filter.DispatchType)
		argCounter++
	}

	if filter.PromoOnly {
		conditions = append(conditions, "is_promo_sku")
	}

	if len(conditions) > 0 {
		whereClause := " AND " + strings.Join(conditions, " AND ")
		query += whereClause
		countQuery += whereClause
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("error counting dispatch detail: %w", err)
	}

	query += " ORDER BY article, site"

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.PageSize, offset)
	}

	var items []domain.DispatchDetail
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("error getting dispatch detail: %w", err)
	}

	return items, total, nil
}

func (r *dispatchRepository) GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, error) {
	query := `
        SELECT id, run_id, group_no, article, description,
            total_demand, total_stock, total_pending, total_dispatch, total_dn_qty,
            dc_stock, effective_inventory, inventory_status, inventory_difference
        FROM dispatch_summary
        WHERE run_id = $1
        ORDER BY group_no, article
    `

	var rows []domain.DispatchSummary
	if err := r.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, fmt.Errorf("error getting dispatch summary for run %d: %w", runID, err)
	}

	return rows, nil
}
