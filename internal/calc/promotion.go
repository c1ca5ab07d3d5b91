package calc

import (
	"strings"

	"github.com/hkretail/promo-dispatch/internal/table"
)

// PrepareTargets cleans File B Sheet 1 into PromotionTargets. Target type
// defaults to ALL, and the optional cover-days / promotion-days columns
// normalize non-positive values to 0, meaning "not provided". Duplicate
// Articles keep the first occurrence (the table is defined as one row per SKU).
func PrepareTargets(tbl *table.Table, cfg Config) ([]PromotionTarget, []string, error) {
	cols := cfg.Columns

	missing := tbl.MissingColumns(cols.B1GroupNo, cols.B1Article, cols.B1SKUTarget)
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Input: "File B Sheet1", Missing: missing}
	}

	var warnings []string

	idxGroup := tbl.ColumnIndex(cols.B1GroupNo)
	idxArticle := tbl.ColumnIndex(cols.B1Article)
	idxType := tbl.ColumnIndex(cols.B1TargetType)
	hasType := tbl.HasColumn(cols.B1TargetType)
	hasCover := tbl.HasColumn(cols.B1CoverDays)
	hasPromo := tbl.HasColumn(cols.B1PromoDays)

	target := &numericColumn{name: cols.B1SKUTarget, idx: tbl.ColumnIndex(cols.B1SKUTarget)}
	cover := &numericColumn{name: cols.B1CoverDays, idx: tbl.ColumnIndex(cols.B1CoverDays)}
	promo := &numericColumn{name: cols.B1PromoDays, idx: tbl.ColumnIndex(cols.B1PromoDays)}

	seen := make(map[string]struct{}, tbl.Len())
	targets := make([]PromotionTarget, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		t := PromotionTarget{
			GroupNo:    tbl.Cell(i, idxGroup),
			Article:    tbl.Cell(i, idxArticle),
			SKUTarget:  target.parse(tbl, i),
			TargetType: "ALL",
		}
		if hasType {
			t.TargetType = strings.ToUpper(tbl.Cell(i, idxType))
		}
		if hasCover {
			t.CoverDays = cover.parse(tbl, i)
		}
		if hasPromo {
			t.PromoDays = promo.parse(tbl, i)
		}

		if _, dup := seen[t.Article]; dup {
			continue
		}
		seen[t.Article] = struct{}{}
		targets = append(targets, t)
	}

	target.flush(&warnings)
	if hasCover {
		cover.flush(&warnings)
	}
	if hasPromo {
		promo.flush(&warnings)
	}

	return targets, warnings, nil
}

// PrepareAllocations cleans File B Sheet 2 into SiteAllocations. Each
// percentage column is rescaled independently: a value above 1 is read as
// percentage points and divided by 100, so 75 and 0.75 both mean 75%.
func PrepareAllocations(tbl *table.Table, cfg Config) ([]SiteAllocation, []string, error) {
	cols := cfg.Columns

	missing := tbl.MissingColumns(cols.B2Site, cols.B2HK, cols.B2MO, cols.B2ALL)
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Input: "File B Sheet2", Missing: missing}
	}

	idxSite := tbl.ColumnIndex(cols.B2Site)
	idxHK := tbl.ColumnIndex(cols.B2HK)
	idxMO := tbl.ColumnIndex(cols.B2MO)
	idxALL := tbl.ColumnIndex(cols.B2ALL)

	seen := make(map[string]struct{}, tbl.Len())
	allocations := make([]SiteAllocation, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		a := SiteAllocation{
			Site:   strings.ToUpper(tbl.Cell(i, idxSite)),
			PctHK:  normalizePct(tbl.Cell(i, idxHK)),
			PctMO:  normalizePct(tbl.Cell(i, idxMO)),
			PctALL: normalizePct(tbl.Cell(i, idxALL)),
		}
		if _, dup := seen[a.Site]; dup {
			continue
		}
		seen[a.Site] = struct{}{}
		allocations = append(allocations, a)
	}

	return allocations, nil, nil
}

// normalizePct accepts both fractional (0.75) and percentage-point (75)
// input scales.
func normalizePct(v string) float64 {
	f := parseNumber(v)
	if f > 1 {
		return f / 100
	}
	return f
}
