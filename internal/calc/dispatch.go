package calc

// Classify fills the dispatch columns of every detail row: the suggested
// dispatch quantity, the cap-adjusted DN quantity, the dispatch type label and
// the remark. Rows are classified independently, in place.
func Classify(rows []DetailRow, cfg Config) {
	for i := range rows {
		r := &rows[i]
		r.SuggestedDispatchQty = suggestedDispatchQty(r, cfg)
		r.SuggestedDNQty = suggestedDNQty(r, cfg)
		r.DispatchType = dispatchType(r, cfg)
		r.DispatchRemark = dispatchRemark(r, cfg)
	}
}

// suggestedDispatchQty computes the MOQ-rounded order quantity. The two
// replenishment paths diverge deliberately when MOQ is invalid: the
// direct-to-store path falls back to the unrounded promotional demand, the
// standard path dispatches nothing.
func suggestedDispatchQty(r *DetailRow, cfg Config) int {
	if r.RPType == cfg.DirectRPType {
		target := r.PromoDemand
		if target <= 0 {
			return 0
		}
		moq := r.EffectiveMOQ
		if moq <= 0 {
			return int(target)
		}
		return ceilToMultiple(target, moq)
	}

	if r.RPType != cfg.DispatchRPType {
		return 0
	}
	net := r.NetDemandDispatch
	if net <= 0 {
		return 0
	}
	moq := r.EffectiveMOQ
	if moq <= 0 {
		return 0
	}
	if net < moq {
		net = moq
	}
	return ceilToMultiple(net, moq)
}

// suggestedDNQty recomputes the quantity for the distribution note, applying
// the promotional cap: when the promotion runs longer than the configured
// number of days, the DN quantity is limited to DNCapQty, snapped down to the
// largest MOQ multiple under the cap. With a short promotion the uncapped
// dispatch quantity is reused, re-snapped up to an MOQ multiple.
func suggestedDNQty(r *DetailRow, cfg Config) int {
	moq := r.EffectiveMOQ

	if r.RPType == cfg.DirectRPType {
		target := r.PromoDemand
		if target <= 0 {
			return 0
		}
		if moq <= 0 {
			// Same unrounded fallback as the dispatch quantity; the cap only
			// applies when a valid MOQ lets it snap to a multiple.
			return int(target)
		}
		return capDNQty(float64(r.SuggestedDispatchQty), r.PromoDays, moq, cfg)
	}

	if r.RPType != cfg.DispatchRPType {
		return 0
	}
	if r.NetDemandDispatch <= 0 || moq <= 0 {
		return 0
	}
	return capDNQty(float64(r.SuggestedDispatchQty), r.PromoDays, moq, cfg)
}

func capDNQty(dispatchQty, promoDays, moq float64, cfg Config) int {
	if promoDays > cfg.DNCapPromoDays {
		if dispatchQty <= cfg.DNCapQty {
			return ceilToMultiple(dispatchQty, moq)
		}
		return floorToMultiple(cfg.DNCapQty, moq)
	}
	return ceilToMultiple(dispatchQty, moq)
}

// dispatchType walks the priority ladder: the DC site always wins, then the
// direct-to-store branch keyed on the DN quantity, then the supply-source
// fallback. A direct-to-store row with a zero DN quantity is always "no
// replenishment needed", regardless of supply source.
func dispatchType(r *DetailRow, cfg Config) string {
	if r.Site == cfg.DCSiteCode {
		return cfg.DCSiteCode
	}

	if r.RPType == cfg.DirectRPType {
		if r.SuggestedDNQty > 0 {
			switch r.SupplySource {
			case 1, 4:
				return cfg.Labels.BuyerOrder
			case 2:
				return cfg.Labels.GenerateDN
			default:
				return cfg.Labels.DirectDispatch
			}
		}
		return cfg.Labels.NoReplenishment
	}

	switch r.SupplySource {
	case 1, 4:
		return cfg.Labels.BuyerOrder
	case 2:
		return cfg.Labels.GenerateDN
	default:
		return cfg.Labels.NotApplicable
	}
}

func dispatchRemark(r *DetailRow, cfg Config) string {
	if r.RPType == cfg.DirectRPType && (r.SuggestedDispatchQty > 0 || r.SuggestedDNQty > 0) {
		return cfg.Labels.DirectRemark
	}
	return ""
}
