package calc

import (
	"fmt"
	"sort"
	"strings"
)

// unmatchedListCap limits how many File A-only articles the join diagnostic
// names before truncating.
const unmatchedListCap = 10

// BuildWorkingRows left-joins inventory to promotion targets (by Article) and
// site allocations (by Site). No inventory row is ever dropped: unmatched
// rows get the explicit zero defaults documented on WorkingRow. The returned
// warnings are join diagnostics only, never fatal.
func BuildWorkingRows(inventory []InventoryRecord, targets []PromotionTarget, allocations []SiteAllocation, cfg Config) ([]WorkingRow, []string) {
	targetsByArticle := make(map[string]PromotionTarget, len(targets))
	for _, t := range targets {
		if _, ok := targetsByArticle[t.Article]; !ok {
			targetsByArticle[t.Article] = t
		}
	}
	allocationsBySite := make(map[string]SiteAllocation, len(allocations))
	for _, a := range allocations {
		if _, ok := allocationsBySite[a.Site]; !ok {
			allocationsBySite[a.Site] = a
		}
	}

	warnings := joinDiagnostics(inventory, targets)

	rows := make([]WorkingRow, 0, len(inventory))
	promoCount := 0
	for _, rec := range inventory {
		row := WorkingRow{
			InventoryRecord: rec,
			TargetType:      "ALL",
		}

		if t, ok := targetsByArticle[rec.Article]; ok {
			row.HasTarget = true
			row.GroupNo = t.GroupNo
			row.SKUTarget = t.SKUTarget
			row.TargetType = t.TargetType
			row.CoverDays = t.CoverDays
			row.PromoDays = t.PromoDays
		}

		if a, ok := allocationsBySite[rec.Site]; ok {
			row.HasAllocation = true
			row.PctHK = a.PctHK
			row.PctMO = a.PctMO
			row.PctALL = a.PctALL
		}

		row.SitePct = resolveSitePct(row)
		row.IsPromoSKU = row.SKUTarget > 0 && row.SitePct > 0
		if row.IsPromoSKU {
			promoCount++
		}

		rows = append(rows, row)
	}

	warnings = append(warnings, fmt.Sprintf(
		"Promo SKU detection: %d out of %d rows flagged as promotion SKUs",
		promoCount, len(rows)))

	return rows, warnings
}

// resolveSitePct picks the allocation percentage matching the target type.
// ALL is the designed fallback for both "ALL" and unrecognized type values.
func resolveSitePct(row WorkingRow) float64 {
	switch strings.ToUpper(row.TargetType) {
	case "HK":
		return row.PctHK
	case "MO":
		return row.PctMO
	default:
		return row.PctALL
	}
}

// joinDiagnostics reports how the two files' Article sets overlap. Zero
// overlap is flagged at critical level because it means no promotion target
// will apply to any row.
func joinDiagnostics(inventory []InventoryRecord, targets []PromotionTarget) []string {
	inA := make(map[string]struct{}, len(inventory))
	for _, rec := range inventory {
		inA[rec.Article] = struct{}{}
	}
	inB := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		inB[t.Article] = struct{}{}
	}

	matched := 0
	var onlyA, onlyB []string
	for a := range inA {
		if _, ok := inB[a]; ok {
			matched++
		} else {
			onlyA = append(onlyA, a)
		}
	}
	for b := range inB {
		if _, ok := inA[b]; !ok {
			onlyB = append(onlyB, b)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	var warnings []string
	if matched == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"CRITICAL: NO Articles from File A matched with File B Sheet1! "+
				"File A has %d unique Articles, File B Sheet1 has %d unique Articles. "+
				"This means NO promotion targets will be applied.",
			len(inA), len(inB)))
	} else {
		warnings = append(warnings, fmt.Sprintf(
			"Article match summary: %d matched, %d in File A only, %d in File B only.",
			matched, len(onlyA), len(onlyB)))
	}

	if len(onlyA) > 0 {
		shown := onlyA
		if len(shown) > unmatchedListCap {
			shown = shown[:unmatchedListCap]
		}
		warnings = append(warnings, fmt.Sprintf(
			"Articles in File A but not in File B (no promo targets): [%s]",
			strings.Join(shown, " ")))
	}
	if len(onlyB) > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Articles in File B but not in File A (unused promo targets): [%s]",
			strings.Join(onlyB, " ")))
	}

	return warnings
}
