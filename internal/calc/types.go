package calc

import (
	"fmt"
	"strings"
)

// InventoryRecord is one cleaned File A row, unique per (Article, Site) after
// deduplication. All numeric fields are non-negative once normalization has
// run; downstream stages do plain arithmetic on them.
type InventoryRecord struct {
	Article string
	Site    string
	RPType  string

	NetStock      float64
	Pending       float64
	SafetyStock   float64
	LastMonthSold float64 // capped at Config.LastMonthSoldCap
	MOQ           float64
	SupplySource  int
	InQualityInsp float64
	Blocked       float64

	// Optional descriptive columns, empty when the extract does not carry them.
	Description string
	Hierarchy   string
	LongText    string
	DescPGroup  string
}

// PromotionTarget is one cleaned File B Sheet 1 row, unique per Article.
type PromotionTarget struct {
	GroupNo    string
	Article    string
	SKUTarget  float64
	TargetType string  // HK | MO | ALL (or any free text; non-HK/MO falls back to ALL)
	CoverDays  float64 // 0 means not provided
	PromoDays  float64 // 0 means not provided
}

// SiteAllocation is one cleaned File B Sheet 2 row, unique per Site. All
// three percentages are on the [0,1] scale after normalization.
type SiteAllocation struct {
	Site   string
	PctHK  float64
	PctMO  float64
	PctALL float64
}

// WorkingRow is the join of an InventoryRecord with its promotion target and
// site allocation. Unmatched joins are explicit: HasTarget / HasAllocation
// are false and the promotion fields hold their documented zero defaults
// (target 0, type ALL, cover days 0, percentages 0).
type WorkingRow struct {
	InventoryRecord

	HasTarget  bool
	GroupNo    string
	SKUTarget  float64
	TargetType string
	CoverDays  float64
	PromoDays  float64

	HasAllocation bool
	PctHK         float64
	PctMO         float64
	PctALL        float64

	// SitePct is the single percentage picked by TargetType.
	SitePct float64

	// IsPromoSKU requires both SKUTarget > 0 and SitePct > 0.
	IsPromoSKU bool
}

// DetailRow is one fully calculated output row: the working row plus every
// derived demand and dispatch figure.
type DetailRow struct {
	WorkingRow

	DailySalesRate     float64
	EffectiveCoverDays float64
	BaseDemand         float64
	PromoDemand        float64
	TotalDemand        float64
	NetDemandRaw       float64 // may be negative (surplus)
	NetDemandDispatch  float64 // clamped to >= 0 unless configured otherwise

	// EffectiveMOQ is MOQ after the missing-MOQ policy has been applied.
	EffectiveMOQ float64

	SuggestedDispatchQty int
	SuggestedDNQty       int
	DispatchType         string
	DispatchRemark       string
}

// SummaryRow aggregates DetailRows per (GroupNo, Article) across non-DC
// sites, with the DC's own figures joined back in by Article.
type SummaryRow struct {
	GroupNo string
	Article string

	Description string
	Hierarchy   string
	LongText    string
	DescPGroup  string

	TotalDemand   float64
	TotalStock    float64
	TotalPending  float64
	TotalDispatch int
	TotalDNQty    int
	SupplySource  int

	TotalStockAvailable float64

	DCStock       float64
	DCQualityInsp float64
	DCBlocked     float64
	DCPending     float64

	EffectiveInventory  float64
	InventoryStatus     string
	InventoryDifference float64 // EffectiveInventory - TotalDemand, signed
}

// Result is the complete outcome of one calculation run. Warnings are ordered
// by stage (File A cleaning, File B cleaning, join diagnostics) and are never
// fatal; the only fatal condition is a SchemaError.
type Result struct {
	Detail   []DetailRow
	Summary  []SummaryRow
	Warnings []string
}

// SchemaError reports a structurally unusable input: required columns absent
// from a table, or a required sheet absent from a workbook. It aborts the run.
type SchemaError struct {
	Input   string   // which input: "File A", "File B Sheet1", ...
	Missing []string // missing column names, if any
	// AvailableSheets lists the workbook's sheets when the expected sheet
	// itself could not be found, to aid operator diagnosis.
	AvailableSheets []string
}

func (e *SchemaError) Error() string {
	if len(e.AvailableSheets) > 0 {
		return fmt.Sprintf("%s missing required sheet. Available sheets: [%s]",
			e.Input, strings.Join(e.AvailableSheets, ", "))
	}
	return fmt.Sprintf("%s missing required columns: [%s]",
		e.Input, strings.Join(e.Missing, ", "))
}
