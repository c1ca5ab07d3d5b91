package calc

// ApplyDemand derives the demand columns for every working row. Each row is
// independent; the stage is a pure function of (rows, leadTime, cfg).
//
// Base demand treats last month's sales as a steady daily rate (no
// seasonality adjustment): rate × (effective cover days + lead time).
func ApplyDemand(rows []WorkingRow, leadTime int, cfg Config) []DetailRow {
	if leadTime < 0 {
		leadTime = 0
	}

	out := make([]DetailRow, 0, len(rows))
	for _, row := range rows {
		d := DetailRow{WorkingRow: row}

		d.DailySalesRate = row.LastMonthSold / float64(cfg.DaysInMonthForRate)

		d.EffectiveCoverDays = row.CoverDays
		if d.EffectiveCoverDays <= 0 {
			d.EffectiveCoverDays = float64(cfg.DefaultCoverDays)
		}

		d.BaseDemand = d.DailySalesRate * (d.EffectiveCoverDays + float64(leadTime))

		if row.IsPromoSKU {
			d.PromoDemand = row.SKUTarget * row.SitePct
		}

		d.TotalDemand = d.BaseDemand + d.PromoDemand
		d.NetDemandRaw = d.TotalDemand - (row.NetStock + row.Pending)

		if cfg.UseNegativeNetForDispatch {
			d.NetDemandDispatch = d.NetDemandRaw
		} else if d.NetDemandRaw > 0 {
			d.NetDemandDispatch = d.NetDemandRaw
		}

		d.EffectiveMOQ = row.MOQ
		if d.EffectiveMOQ <= 0 && cfg.MissingMOQPolicy == MOQPolicyOne {
			d.EffectiveMOQ = 1
		}

		out = append(out, d)
	}

	return out
}
