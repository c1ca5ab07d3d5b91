package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hkretail/promo-dispatch/internal/calc"
	"github.com/hkretail/promo-dispatch/internal/domain"
	"github.com/hkretail/promo-dispatch/internal/service"
)

type CalcHandler struct {
	calcService *service.CalcService
	uploadDir   string
	outputDir   string
}

func NewCalcHandler(calcService *service.CalcService, uploadDir, outputDir string) *CalcHandler {
	return &CalcHandler{
		calcService: calcService,
		uploadDir:   uploadDir,
		outputDir:   outputDir,
	}
}

// CreateRun accepts the two input workbooks as a multipart upload and runs
// the calculation synchronously.
func (h *CalcHandler) CreateRun(c *gin.Context) {
	inventory, err := c.FormFile("inventory")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inventory file is required"})
		return
	}
	promotion, err := c.FormFile("promotion")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "promotion file is required"})
		return
	}

	leadTime := 0
	if v := strings.TrimSpace(c.PostForm("lead_time_days")); v != "" {
		leadTime, err = strconv.Atoi(v)
		if err != nil || leadTime < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lead_time_days must be a non-negative integer"})
			return
		}
	}

	inventoryPath := filepath.Join(h.uploadDir, filepath.Base(inventory.Filename))
	if err := c.SaveUploadedFile(inventory, inventoryPath); err != nil {
		log.Error().Err(err).Str("filename", inventory.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store inventory file"})
		return
	}
	promotionPath := filepath.Join(h.uploadDir, filepath.Base(promotion.Filename))
	if err := c.SaveUploadedFile(promotion, promotionPath); err != nil {
		log.Error().Err(err).Str("filename", promotion.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store promotion file"})
		return
	}

	report, err := h.calcService.Run(c.Request.Context(), service.RunRequest{
		InventoryPath: inventoryPath,
		PromotionPath: promotionPath,
		OutputDir:     h.outputDir,
		LeadTimeDays:  leadTime,
	})
	if err != nil {
		var schemaErr *calc.SchemaError
		if errors.As(err, &schemaErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": schemaErr.Error()})
			return
		}
		log.Error().Err(err).Msg("calculation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calculation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run_id":       report.RunID,
		"output_file":  filepath.Base(report.OutputPath),
		"detail_rows":  len(report.Result.Detail),
		"summary_rows": len(report.Result.Summary),
		"warnings":     report.Result.Warnings,
	})
}

// ListRuns returns the run history page.
func (h *CalcHandler) ListRuns(c *gin.Context) {
	filter := domain.RunFilter{Page: 1, PageSize: 50}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !domain.ValidRunStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + status})
			return
		}
		filter.Status = strings.ToLower(status)
	}

	runs, total, err := h.calcService.ListRuns(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":      runs,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetRun returns one run record.
func (h *CalcHandler) GetRun(c *gin.Context) {
	runID, ok := h.runID(c)
	if !ok {
		return
	}

	run, err := h.calcService.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetWarnings returns the data-quality warnings of one run.
func (h *CalcHandler) GetWarnings(c *gin.Context) {
	runID, ok := h.runID(c)
	if !ok {
		return
	}

	warnings, err := h.calcService.GetWarnings(c.Request.Context(), runID)
	if err != nil {
		log.Error().Err(err).Int64("run_id", runID).Msg("failed to get warnings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get warnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"warnings": warnings})
}

// GetDetail returns a filtered page of a run's detail rows.
func (h *CalcHandler) GetDetail(c *gin.Context) {
	runID, ok := h.runID(c)
	if !ok {
		return
	}

	filter := domain.DetailFilter{Page: 1, PageSize: 100}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "100")); err == nil && size > 0 {
		filter.PageSize = size
	}
	filter.Article = strings.TrimSpace(c.Query("article"))
	filter.Site = strings.ToUpper(strings.TrimSpace(c.Query("site")))
	filter.DispatchType = strings.TrimSpace(c.Query("dispatch_type"))
	filter.PromoOnly = c.Query("promo_only") == "true"

	rows, total, err := h.calcService.GetDetail(c.Request.Context(), runID, filter)
	if err != nil {
		log.Error().Err(err).Int64("run_id", runID).Msg("failed to get detail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get detail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detail":    rows,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetSummary returns a run's per-(group, article) summary.
func (h *CalcHandler) GetSummary(c *gin.Context) {
	runID, ok := h.runID(c)
	if !ok {
		return
	}

	rows, err := h.calcService.GetSummary(c.Request.Context(), runID)
	if err != nil {
		log.Error().Err(err).Int64("run_id", runID).Msg("failed to get summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": rows})
}

// Download streams a run's result workbook.
func (h *CalcHandler) Download(c *gin.Context) {
	runID, ok := h.runID(c)
	if !ok {
		return
	}

	run, err := h.calcService.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if !domain.RunFinished(run.Status) || run.OutputFile == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "run has no output file"})
		return
	}

	c.FileAttachment(filepath.Join(h.outputDir, run.OutputFile), run.OutputFile)
}

func (h *CalcHandler) runID(c *gin.Context) (int64, bool) {
	runID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || runID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return 0, false
	}
	return runID, true
}
