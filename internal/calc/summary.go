package calc

import "sort"

// articleFacts holds the per-Article figures the sufficiency verdict needs:
// DC totals plus the H-tier store totals and the resolved supply source.
type articleFacts struct {
	dcStock       float64
	dcQualityInsp float64
	dcBlocked     float64
	dcPending     float64

	hStock   float64
	hPending float64

	hSupply      int
	hasHSite     bool
	nonDCSupply  int
	hasNonDCSite bool
}

// Summarize aggregates the detail rows into one row per (GroupNo, Article)
// across non-DC sites, with the DC's own stock figures joined back in by
// Article. Rows with no matched promotion target carry no group and are
// excluded from the aggregation.
func Summarize(detail []DetailRow, cfg Config) []SummaryRow {
	facts := collectArticleFacts(detail, cfg)

	type key struct{ group, article string }
	index := make(map[key]int)
	var rows []SummaryRow

	for i := range detail {
		d := &detail[i]
		if d.Site == cfg.DCSiteCode || !d.HasTarget {
			continue
		}
		k := key{d.GroupNo, d.Article}
		pos, ok := index[k]
		if !ok {
			pos = len(rows)
			index[k] = pos
			rows = append(rows, SummaryRow{
				GroupNo:      d.GroupNo,
				Article:      d.Article,
				SupplySource: d.SupplySource,
			})
		}
		row := &rows[pos]
		row.TotalDemand += d.TotalDemand
		row.TotalStock += d.NetStock
		row.TotalPending += d.Pending
		row.TotalDispatch += d.SuggestedDispatchQty
		row.TotalDNQty += d.SuggestedDNQty
		if row.Description == "" {
			row.Description = d.Description
		}
		if row.Hierarchy == "" {
			row.Hierarchy = d.Hierarchy
		}
		if row.LongText == "" {
			row.LongText = d.LongText
		}
		if row.DescPGroup == "" {
			row.DescPGroup = d.DescPGroup
		}
	}

	for i := range rows {
		row := &rows[i]
		row.TotalStockAvailable = row.TotalStock + row.TotalPending

		f := facts[row.Article]
		row.DCStock = f.dcStock
		row.DCQualityInsp = f.dcQualityInsp
		row.DCBlocked = f.dcBlocked
		row.DCPending = f.dcPending

		// Effective inventory: DC stock plus the H-tier stores' on-hand and
		// pending receipts.
		row.EffectiveInventory = f.dcStock + f.hStock + f.hPending
		row.InventoryStatus = inventoryStatus(row, f, cfg)
		row.InventoryDifference = row.EffectiveInventory - row.TotalDemand
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].GroupNo != rows[j].GroupNo {
			return rows[i].GroupNo < rows[j].GroupNo
		}
		return rows[i].Article < rows[j].Article
	})

	return rows
}

func collectArticleFacts(detail []DetailRow, cfg Config) map[string]articleFacts {
	facts := make(map[string]articleFacts)
	for i := range detail {
		d := &detail[i]
		f := facts[d.Article]

		if d.Site == cfg.DCSiteCode {
			f.dcStock += d.NetStock
			f.dcQualityInsp += d.InQualityInsp
			f.dcBlocked += d.Blocked
			f.dcPending += d.Pending
		} else {
			if !f.hasNonDCSite {
				f.hasNonDCSite = true
				f.nonDCSupply = d.SupplySource
			}
			if isHSite(d.Site) {
				f.hStock += d.NetStock
				f.hPending += d.Pending
				if !f.hasHSite {
					f.hasHSite = true
					f.hSupply = d.SupplySource
				}
			}
		}

		facts[d.Article] = f
	}
	return facts
}

// isHSite matches the store-tier naming convention: an H followed by one of
// A, B, C or D.
func isHSite(site string) bool {
	if len(site) < 2 || site[0] != 'H' {
		return false
	}
	switch site[1] {
	case 'A', 'B', 'C', 'D':
		return true
	}
	return false
}

// inventoryStatus derives the sufficiency verdict. The supply source used for
// the decision comes from the first H-tier row of the article when one
// exists, else the first non-DC row, else 0 (legacy fallback path).
func inventoryStatus(row *SummaryRow, f articleFacts, cfg Config) string {
	supply := 0
	if f.hasHSite {
		supply = f.hSupply
	} else if f.hasNonDCSite {
		supply = f.nonDCSupply
	}

	switch supply {
	case 2:
		if row.EffectiveInventory >= row.TotalDemand {
			if f.dcStock > cfg.DCStockThreshold {
				return cfg.Labels.StatusLotForLot
			}
			return cfg.Labels.StatusConsolidation
		}
		return cfg.Labels.StatusBuyerAttention
	case 1, 4:
		if row.EffectiveInventory >= row.TotalDemand {
			return cfg.Labels.StatusSufficient
		}
		return cfg.Labels.StatusBuyerPO
	default:
		if float64(row.TotalDispatch) > f.dcStock {
			return cfg.Labels.StatusDCShortage
		}
		if row.TotalDemand > row.TotalStockAvailable {
			return cfg.Labels.StatusShortageFlag
		}
		return cfg.Labels.StatusOKFlag
	}
}
