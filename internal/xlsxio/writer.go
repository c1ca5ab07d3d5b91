package xlsxio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hkretail/promo-dispatch/internal/calc"
	"github.com/hkretail/promo-dispatch/internal/table"
)

// Output sheet names of the result workbook.
const (
	FinalOrderSheet = "Final Order Report"
	PromoSheet1     = "Promo_Sheet1"
	PromoSheet2     = "Promo_Sheet2"
	DetailSheet     = "Detail_Calculation"
	SummarySheet    = "Summary_Report"
)

// RunInputs carries the cleaned-up input tables so the result workbook can
// echo them back for traceability.
type RunInputs struct {
	Inventory   *table.Table
	Targets     *table.Table
	Allocations *table.Table
}

// WriteResult writes the full five-sheet result workbook: the order report
// (the inventory extract with the dispatch decision appended per row), the
// two promotion sheets echoed verbatim, and the simplified detail and
// summary views.
func WriteResult(path string, inputs RunInputs, result *calc.Result, cfg calc.Config) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeFinalOrderReport(f, inputs.Inventory, result.Detail, cfg); err != nil {
		return err
	}
	if err := writeTable(f, PromoSheet1, inputs.Targets); err != nil {
		return err
	}
	if err := writeTable(f, PromoSheet2, inputs.Allocations); err != nil {
		return err
	}
	if err := writeDetailSheet(f, result.Detail); err != nil {
		return err
	}
	if err := writeSummarySheet(f, result.Summary); err != nil {
		return err
	}

	// Drop the default sheet excelize creates.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save result workbook %s: %w", path, err)
	}
	return nil
}

// writeFinalOrderReport re-emits the inventory columns and appends the
// decision columns, matched to each source row by (Article, Site). Input
// duplicates on that key are collapsed to the first occurrence, mirroring
// the deduplication the engine applies before computing decisions.
func writeFinalOrderReport(f *excelize.File, inventory *table.Table, detail []calc.DetailRow, cfg calc.Config) error {
	type decision struct {
		dispatchQty  int
		dnQty        int
		dispatchType string
		skuTarget    float64
		sitePct      float64
		totalDemand  float64
	}
	byKey := make(map[string]decision, len(detail))
	for i := range detail {
		d := &detail[i]
		k := d.Article + "\x00" + d.Site
		if _, ok := byKey[k]; ok {
			continue
		}
		byKey[k] = decision{
			dispatchQty:  d.SuggestedDispatchQty,
			dnQty:        d.SuggestedDNQty,
			dispatchType: d.DispatchType,
			skuTarget:    d.SKUTarget,
			sitePct:      d.SitePct,
			totalDemand:  d.TotalDemand,
		}
	}

	header := make([]interface{}, 0, len(inventory.Columns)+6)
	for _, c := range inventory.Columns {
		header = append(header, c)
	}
	header = append(header,
		"Suggested_Dispatch_Qty", "Suggested_DN_Qty", "Dispatch_Type",
		"SKU_Target", "Site_Target_%", "Total_Demand")

	rows := make([][]interface{}, 0, inventory.Len()+1)
	rows = append(rows, header)

	idxArticle := inventory.ColumnIndex(cfg.Columns.AArticle)
	idxSite := inventory.ColumnIndex(cfg.Columns.ASite)
	seen := make(map[string]struct{}, inventory.Len())
	for i := 0; i < inventory.Len(); i++ {
		// Site was uppercased during cleaning; match the same way here.
		k := inventory.Cell(i, idxArticle) + "\x00" + strings.ToUpper(inventory.Cell(i, idxSite))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		row := make([]interface{}, 0, len(header))
		for c := range inventory.Columns {
			row = append(row, inventory.Cell(i, c))
		}

		if d, ok := byKey[k]; ok {
			row = append(row, d.dispatchQty, d.dnQty, d.dispatchType, d.skuTarget, d.sitePct, d.totalDemand)
		} else {
			row = append(row, nil, nil, nil, nil, nil, nil)
		}
		rows = append(rows, row)
	}

	return writeRows(f, FinalOrderSheet, rows)
}

// writeTable echoes an input table verbatim onto its own sheet.
func writeTable(f *excelize.File, sheet string, tbl *table.Table) error {
	rows := make([][]interface{}, 0, tbl.Len()+1)

	header := make([]interface{}, len(tbl.Columns))
	for i, c := range tbl.Columns {
		header[i] = c
	}
	rows = append(rows, header)

	for i := 0; i < tbl.Len(); i++ {
		row := make([]interface{}, len(tbl.Columns))
		for c := range tbl.Columns {
			row[c] = tbl.Cell(i, c)
		}
		rows = append(rows, row)
	}

	return writeRows(f, sheet, rows)
}

func writeDetailSheet(f *excelize.File, detail []calc.DetailRow) error {
	rows := make([][]interface{}, 0, len(detail)+1)
	rows = append(rows, []interface{}{
		"Group_No", "Article", "Site", "RP_Type", "Supply_source", "Is_Promo_SKU",
		"SaSa_Net_Stock", "Pending_Received", "Safety_Stock",
		"Last_Month_Sold_Qty_capped", "Daily_Sales_Rate",
		"Effective_Target_Cover_Days", "Base_Demand", "Site_Promo_Demand",
		"Total_Demand", "Net_Demand_raw", "Net_Demand_for_Dispatch", "MOQ",
		"Promotion_Days", "Suggested_Dispatch_Qty", "Suggested_DN_Qty",
		"Dispatch_Type", "Dispatch_Remark",
	})

	for i := range detail {
		d := &detail[i]
		rows = append(rows, []interface{}{
			d.GroupNo, d.Article, d.Site, d.RPType, d.SupplySource, d.IsPromoSKU,
			d.NetStock, d.Pending, d.SafetyStock,
			d.LastMonthSold, d.DailySalesRate,
			d.EffectiveCoverDays, d.BaseDemand, d.PromoDemand,
			d.TotalDemand, d.NetDemandRaw, d.NetDemandDispatch, d.MOQ,
			d.PromoDays, d.SuggestedDispatchQty, d.SuggestedDNQty,
			d.DispatchType, d.DispatchRemark,
		})
	}

	return writeRows(f, DetailSheet, rows)
}

func writeSummarySheet(f *excelize.File, summary []calc.SummaryRow) error {
	rows := make([][]interface{}, 0, len(summary)+1)
	rows = append(rows, []interface{}{
		"Group_No", "Article",
		"Article Description", "Product Hierarchy",
		"Article Long Text (60 Chars)", "Description p. group",
		"Total_Demand", "Total_Stock_Available", "Total_Stock", "Total_Pending",
		"Total_Dispatch", "Total_Suggested_DN_Qty",
		"D001_SaSa_Net_Stock", "Effective_Inventory",
		"Enhanced_Inventory_Status", "Inventory_Difference",
	})

	for i := range summary {
		s := &summary[i]
		rows = append(rows, []interface{}{
			s.GroupNo, s.Article,
			s.Description, s.Hierarchy, s.LongText, s.DescPGroup,
			s.TotalDemand, s.TotalStockAvailable, s.TotalStock, s.TotalPending,
			s.TotalDispatch, s.TotalDNQty,
			s.DCStock, s.EffectiveInventory,
			s.InventoryStatus, s.InventoryDifference,
		})
	}

	return writeRows(f, SummarySheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d on %s: %w", i+1, sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

// WriteDetailCSV exports the detail rows as a flat CSV, for pipelines that
// post-process the result outside a spreadsheet.
func WriteDetailCSV(path string, detail []calc.DetailRow) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{
		"Group_No", "Article", "Site", "RP_Type", "Supply_source", "Is_Promo_SKU",
		"Total_Demand", "Net_Demand_for_Dispatch",
		"Suggested_Dispatch_Qty", "Suggested_DN_Qty", "Dispatch_Type", "Dispatch_Remark",
	}); err != nil {
		return fmt.Errorf("failed to write csv header to %s: %w", path, err)
	}

	for i := range detail {
		d := &detail[i]
		record := []string{
			d.GroupNo, d.Article, d.Site, d.RPType,
			strconv.Itoa(d.SupplySource), strconv.FormatBool(d.IsPromoSKU),
			formatFloat(d.TotalDemand), formatFloat(d.NetDemandDispatch),
			strconv.Itoa(d.SuggestedDispatchQty), strconv.Itoa(d.SuggestedDNQty),
			d.DispatchType, d.DispatchRemark,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row to %s: %w", path, err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TimestampedName inserts a YYYYMMDDHHMM stamp before the file extension,
// unless the name already carries one.
func TimestampedName(name string, now time.Time) string {
	if strings.Contains(name, "_20") {
		return name
	}
	stamp := now.Format("200601021504")
	if dot := strings.LastIndex(name, "."); dot > 0 {
		return name[:dot] + "_" + stamp + name[dot:]
	}
	return name + "_" + stamp + ".xlsx"
}
