package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hkretail/promo-dispatch/internal/cache"
	"github.com/hkretail/promo-dispatch/internal/calc"
	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/domain"
	"github.com/hkretail/promo-dispatch/internal/repository"
	"github.com/hkretail/promo-dispatch/internal/storage"
	"github.com/hkretail/promo-dispatch/internal/xlsxio"
)

// RunRequest describes one calculation to execute.
type RunRequest struct {
	InventoryPath string
	PromotionPath string
	OutputDir     string
	OutputName    string
	LeadTimeDays  int
}

// RunReport is what the caller gets back: the run record (ID 0 when no
// database is attached), the output path and the in-memory result.
type RunReport struct {
	RunID      int64
	OutputPath string
	Result     *calc.Result
}

// CalcService orchestrates a full calculation: load the workbooks, run the
// rule engine, write the result workbook, persist the run and archive the
// artifacts. The repositories, cache and archive are all optional; a nil
// repository means file-only operation (the CLI's default).
type CalcService struct {
	engine  calc.Config
	runs    repository.RunRepository
	rows    repository.DispatchRepository
	cache   cache.RunCache
	archive storage.ObjectStorage
}

func NewCalcService(appCfg *config.Config, runs repository.RunRepository, rows repository.DispatchRepository, runCache cache.RunCache, archive storage.ObjectStorage) *CalcService {
	if runCache == nil {
		runCache = cache.NewNoopRunCache()
	}
	return &CalcService{
		engine:  EngineConfig(appCfg.Calc),
		runs:    runs,
		rows:    rows,
		cache:   runCache,
		archive: archive,
	}
}

// EngineConfig applies the environment policies on top of the production
// defaults of the rule engine.
func EngineConfig(cfg config.CalcConfig) calc.Config {
	engine := calc.DefaultConfig()
	if cfg.DefaultCoverDays > 0 {
		engine.DefaultCoverDays = cfg.DefaultCoverDays
	}
	if cfg.DefaultLeadTime > 0 {
		engine.DefaultLeadTime = cfg.DefaultLeadTime
	}
	if cfg.DCSiteCode != "" {
		engine.DCSiteCode = cfg.DCSiteCode
	}
	if cfg.DNCapQty > 0 {
		engine.DNCapQty = cfg.DNCapQty
	}
	if cfg.DNCapPromoDays > 0 {
		engine.DNCapPromoDays = cfg.DNCapPromoDays
	}
	if cfg.MissingMOQAsOne {
		engine.MissingMOQPolicy = calc.MOQPolicyOne
	}
	engine.UseNegativeNetForDispatch = cfg.AllowNegativeNet
	return engine
}

// Run executes the calculation end to end.
func (s *CalcService) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	leadTime := req.LeadTimeDays
	if leadTime <= 0 {
		leadTime = s.engine.DefaultLeadTime
	}

	log.Info().
		Str("inventory", req.InventoryPath).
		Str("promotion", req.PromotionPath).
		Int("lead_time_days", leadTime).
		Msg("starting dispatch calculation")

	runID, err := s.createRun(ctx, req, leadTime)
	if err != nil {
		return nil, err
	}

	report, err := s.execute(ctx, req, runID, leadTime)
	if err != nil {
		s.markFailed(ctx, runID, err)
		return nil, err
	}

	return report, nil
}

func (s *CalcService) execute(ctx context.Context, req RunRequest, runID int64, leadTime int) (*RunReport, error) {
	inventory, err := xlsxio.ReadInventory(req.InventoryPath)
	if err != nil {
		return nil, err
	}
	targets, allocations, err := xlsxio.ReadPromotion(req.PromotionPath)
	if err != nil {
		return nil, err
	}

	result, err := calc.Run(inventory, targets, allocations, leadTime, s.engine)
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		log.Warn().Str("warning", w).Msg("data quality")
	}

	outputName := req.OutputName
	if outputName == "" {
		outputName = "Promotion_Planning_Result.xlsx"
	}
	outputPath := filepath.Join(req.OutputDir, xlsxio.TimestampedName(outputName, time.Now()))

	inputs := xlsxio.RunInputs{Inventory: inventory, Targets: targets, Allocations: allocations}
	if err := xlsxio.WriteResult(outputPath, inputs, result, s.engine); err != nil {
		return nil, err
	}

	if err := s.persist(ctx, runID, outputPath, result); err != nil {
		return nil, err
	}
	s.archiveArtifacts(ctx, req, outputPath)

	log.Info().
		Int64("run_id", runID).
		Str("output", outputPath).
		Int("detail_rows", len(result.Detail)).
		Int("summary_rows", len(result.Summary)).
		Int("warnings", len(result.Warnings)).
		Msg("dispatch calculation completed")

	return &RunReport{RunID: runID, OutputPath: outputPath, Result: result}, nil
}

func (s *CalcService) createRun(ctx context.Context, req RunRequest, leadTime int) (int64, error) {
	if s.runs == nil {
		return 0, nil
	}

	runID, err := s.runs.CreateRun(ctx, &domain.CalcRun{
		InventoryFile: filepath.Base(req.InventoryPath),
		PromotionFile: filepath.Base(req.PromotionPath),
		LeadTimeDays:  leadTime,
	})
	if err != nil {
		return 0, fmt.Errorf("recording calc run: %w", err)
	}
	return runID, nil
}

func (s *CalcService) persist(ctx context.Context, runID int64, outputPath string, result *calc.Result) error {
	if s.runs == nil {
		return nil
	}

	if s.rows != nil {
		if err := s.rows.SaveDetail(ctx, runID, detailRecords(result.Detail)); err != nil {
			return err
		}
		if err := s.rows.SaveSummary(ctx, runID, summaryRecords(result.Summary)); err != nil {
			return err
		}
	}
	if err := s.runs.SaveWarnings(ctx, runID, result.Warnings); err != nil {
		return err
	}

	err := s.runs.CompleteRun(ctx, &domain.CalcRun{
		ID:           runID,
		OutputFile:   filepath.Base(outputPath),
		DetailRows:   len(result.Detail),
		SummaryRows:  len(result.Summary),
		WarningCount: len(result.Warnings),
	})
	if err != nil {
		return err
	}

	if err := s.cache.InvalidateRun(ctx, runID); err != nil {
		log.Warn().Err(err).Int64("run_id", runID).Msg("cache invalidation failed")
	}
	return nil
}

func (s *CalcService) markFailed(ctx context.Context, runID int64, runErr error) {
	if s.runs == nil || runID == 0 {
		return
	}
	if err := s.runs.FailRun(ctx, runID, runErr.Error()); err != nil {
		log.Error().Err(err).Int64("run_id", runID).Msg("could not mark run as failed")
	}
}

// archiveArtifacts pushes the inputs and the result workbook to the archive
// bucket. Archive failures never fail the run.
func (s *CalcService) archiveArtifacts(ctx context.Context, req RunRequest, outputPath string) {
	if s.archive == nil {
		return
	}

	stamp := time.Now().Format("2006/01/02")
	for _, path := range []string{req.InventoryPath, req.PromotionPath, outputPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("archive read failed")
			continue
		}
		key := fmt.Sprintf("%s/%s", stamp, filepath.Base(path))
		if err := s.archive.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("archive upload failed")
		}
	}
}

// GetRun returns one run record.
func (s *CalcService) GetRun(ctx context.Context, runID int64) (*domain.CalcRun, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run history requires a database")
	}
	return s.runs.GetRun(ctx, runID)
}

// ListRuns returns the run history page described by the filter.
func (s *CalcService) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.CalcRun, int, error) {
	if s.runs == nil {
		return nil, 0, fmt.Errorf("run history requires a database")
	}
	return s.runs.ListRuns(ctx, filter)
}

// GetWarnings returns the data-quality warnings of one run, in stage order.
func (s *CalcService) GetWarnings(ctx context.Context, runID int64) ([]domain.RunWarning, error) {
	if s.runs == nil {
		return nil, fmt.Errorf("run history requires a database")
	}
	return s.runs.GetWarnings(ctx, runID)
}

// GetDetail returns a filtered page of persisted detail rows, cache first.
func (s *CalcService) GetDetail(ctx context.Context, runID int64, filter domain.DetailFilter) ([]domain.DispatchDetail, int, error) {
	if s.rows == nil {
		return nil, 0, fmt.Errorf("run history requires a database")
	}

	if rows, total, ok, err := s.cache.GetDetail(ctx, runID, filter); err == nil && ok {
		return rows, total, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("cache get detail failed")
	}

	rows, total, err := s.rows.GetDetail(ctx, runID, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.SetDetail(ctx, runID, filter, rows, total); err != nil {
		log.Warn().Err(err).Msg("cache set detail failed")
	}

	return rows, total, nil
}

// GetSummary returns the persisted summary of one run, cache first.
func (s *CalcService) GetSummary(ctx context.Context, runID int64) ([]domain.DispatchSummary, error) {
	if s.rows == nil {
		return nil, fmt.Errorf("run history requires a database")
	}

	if rows, ok, err := s.cache.GetSummary(ctx, runID); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("cache get summary failed")
	}

	rows, err := s.rows.GetSummary(ctx, runID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSummary(ctx, runID, rows); err != nil {
		log.Warn().Err(err).Msg("cache set summary failed")
	}

	return rows, nil
}

func detailRecords(detail []calc.DetailRow) []domain.DispatchDetail {
	out := make([]domain.DispatchDetail, 0, len(detail))
	for i := range detail {
		d := &detail[i]
		out = append(out, domain.DispatchDetail{
			GroupNo:      d.GroupNo,
			Article:      d.Article,
			Site:         d.Site,
			RPType:       d.RPType,
			SupplySource: d.SupplySource,
			IsPromoSKU:   d.IsPromoSKU,
			NetStock:     d.NetStock,
			Pending:      d.Pending,
			TotalDemand:  d.TotalDemand,
			NetDemand:    d.NetDemandDispatch,
			DispatchQty:  d.SuggestedDispatchQty,
			DNQty:        d.SuggestedDNQty,
			DispatchType: d.DispatchType,
			Remark:       d.DispatchRemark,
		})
	}
	return out
}

func summaryRecords(summary []calc.SummaryRow) []domain.DispatchSummary {
	out := make([]domain.DispatchSummary, 0, len(summary))
	for i := range summary {
		s := &summary[i]
		out = append(out, domain.DispatchSummary{
			GroupNo:             s.GroupNo,
			Article:             s.Article,
			Description:         s.Description,
			TotalDemand:         s.TotalDemand,
			TotalStock:          s.TotalStock,
			TotalPending:        s.TotalPending,
			TotalDispatch:       s.TotalDispatch,
			TotalDNQty:          s.TotalDNQty,
			DCStock:             s.DCStock,
			EffectiveInventory:  s.EffectiveInventory,
			InventoryStatus:     s.InventoryStatus,
			InventoryDifference: s.InventoryDifference,
		})
	}
	return out
}
