package calc

import (
	"fmt"
	"strings"

	"github.com/hkretail/promo-dispatch/internal/table"
)

// numericColumn coerces one column across all rows, clamping negatives to 0.
// It appends a single per-column warning with the clamp count, mirroring the
// data-quality contract: malformed values never abort, only missing columns do.
type numericColumn struct {
	name      string
	idx       int
	negatives int
}

func (c *numericColumn) parse(tbl *table.Table, row int) float64 {
	v := parseNumber(tbl.Cell(row, c.idx))
	if v < 0 {
		c.negatives++
		return 0
	}
	return v
}

func (c *numericColumn) flush(warnings *[]string) {
	if c.negatives > 0 {
		*warnings = append(*warnings, fmt.Sprintf("%s: %d negative values set to 0", c.name, c.negatives))
	}
}

// PrepareInventory cleans the raw File A table into InventoryRecords:
// required-column validation, numeric coercion, outlier capping and
// (Article, Site) deduplication by summation.
func PrepareInventory(tbl *table.Table, cfg Config) ([]InventoryRecord, []string, error) {
	cols := cfg.Columns

	missing := tbl.MissingColumns(
		cols.AArticle,
		cols.ASite,
		cols.ARPType,
		cols.ANetStock,
		cols.APending,
		cols.ASafetyStock,
		cols.ALastMonthSold,
		cols.AMOQ,
		cols.ASupplySource,
	)
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Input: "File A", Missing: missing}
	}

	var warnings []string

	idxArticle := tbl.ColumnIndex(cols.AArticle)
	idxSite := tbl.ColumnIndex(cols.ASite)
	idxRPType := tbl.ColumnIndex(cols.ARPType)
	idxSupply := tbl.ColumnIndex(cols.ASupplySource)
	idxDesc := tbl.ColumnIndex(cols.ADescription)
	idxHier := tbl.ColumnIndex(cols.AHierarchy)
	idxLong := tbl.ColumnIndex(cols.ALongText)
	idxPGrp := tbl.ColumnIndex(cols.ADescPGroup)

	netStock := &numericColumn{name: cols.ANetStock, idx: tbl.ColumnIndex(cols.ANetStock)}
	pending := &numericColumn{name: cols.APending, idx: tbl.ColumnIndex(cols.APending)}
	safety := &numericColumn{name: cols.ASafetyStock, idx: tbl.ColumnIndex(cols.ASafetyStock)}
	lastSold := &numericColumn{name: cols.ALastMonthSold, idx: tbl.ColumnIndex(cols.ALastMonthSold)}
	moq := &numericColumn{name: cols.AMOQ, idx: tbl.ColumnIndex(cols.AMOQ)}
	inQlty := &numericColumn{name: cols.AInQualityInsp, idx: tbl.ColumnIndex(cols.AInQualityInsp)}
	blocked := &numericColumn{name: cols.ABlocked, idx: tbl.ColumnIndex(cols.ABlocked)}

	hasInQlty := tbl.HasColumn(cols.AInQualityInsp)
	hasBlocked := tbl.HasColumn(cols.ABlocked)

	records := make([]InventoryRecord, 0, tbl.Len())
	capped := 0
	for i := 0; i < tbl.Len(); i++ {
		rec := InventoryRecord{
			Article:       tbl.Cell(i, idxArticle),
			Site:          strings.ToUpper(tbl.Cell(i, idxSite)),
			RPType:        strings.ToUpper(tbl.Cell(i, idxRPType)),
			NetStock:      netStock.parse(tbl, i),
			Pending:       pending.parse(tbl, i),
			SafetyStock:   safety.parse(tbl, i),
			LastMonthSold: lastSold.parse(tbl, i),
			MOQ:           moq.parse(tbl, i),
			Description:   tbl.Cell(i, idxDesc),
			Hierarchy:     tbl.Cell(i, idxHier),
			LongText:      tbl.Cell(i, idxLong),
			DescPGroup:    tbl.Cell(i, idxPGrp),
		}

		// Supply source: integer-like code, invalid or negative becomes 0.
		// Unlike the stock columns this clamps silently.
		if supply := parseNumber(tbl.Cell(i, idxSupply)); supply > 0 {
			rec.SupplySource = int(supply)
		}

		if hasInQlty {
			rec.InQualityInsp = inQlty.parse(tbl, i)
		}
		if hasBlocked {
			rec.Blocked = blocked.parse(tbl, i)
		}

		if rec.LastMonthSold > cfg.LastMonthSoldCap {
			rec.LastMonthSold = cfg.LastMonthSoldCap
			capped++
		}

		records = append(records, rec)
	}

	netStock.flush(&warnings)
	pending.flush(&warnings)
	safety.flush(&warnings)
	lastSold.flush(&warnings)
	moq.flush(&warnings)
	if hasInQlty {
		inQlty.flush(&warnings)
	}
	if hasBlocked {
		blocked.flush(&warnings)
	}

	if capped > 0 {
		warnings = append(warnings, fmt.Sprintf("Last Month Sold Qty: %d values capped at %.0f", capped, cfg.LastMonthSoldCap))
	}

	records, hadDuplicates := dedupeInventory(records)
	if hadDuplicates {
		warnings = append(warnings, "Duplicates found in File A on (Article, Site); aggregated by sum for numerics.")
	}

	return records, warnings, nil
}

// dedupeInventory merges rows sharing (Article, Site): additive fields sum,
// non-additive fields keep the first occurrence. Input order is preserved for
// the surviving rows.
func dedupeInventory(records []InventoryRecord) ([]InventoryRecord, bool) {
	type key struct{ article, site string }

	seen := make(map[key]int, len(records))
	out := make([]InventoryRecord, 0, len(records))
	hadDuplicates := false

	for _, rec := range records {
		k := key{rec.Article, rec.Site}
		if pos, ok := seen[k]; ok {
			hadDuplicates = true
			merged := &out[pos]
			merged.NetStock += rec.NetStock
			merged.Pending += rec.Pending
			merged.SafetyStock += rec.SafetyStock
			merged.LastMonthSold += rec.LastMonthSold
			merged.MOQ += rec.MOQ
			merged.InQualityInsp += rec.InQualityInsp
			merged.Blocked += rec.Blocked
			continue
		}
		seen[k] = len(out)
		out = append(out, rec)
	}

	return out, hadDuplicates
}
