package calc

import "github.com/hkretail/promo-dispatch/internal/table"

// Run executes the full calculation over the three raw input tables:
//
//	1. clean the inventory extract        (PrepareInventory)
//	2. clean targets and allocations      (PrepareTargets / PrepareAllocations)
//	3. join into working rows             (BuildWorkingRows)
//	4. derive demand figures              (ApplyDemand)
//	5. classify dispatch per row          (Classify)
//	6. aggregate the summary              (Summarize)
//
// The run is deterministic and has no side effects: identical inputs produce
// identical outputs. Warnings accumulate in stage order and are returned to
// the caller; the only fatal outcome is a SchemaError from stages 1–2.
func Run(inventory, targets, allocations *table.Table, leadTime int, cfg Config) (*Result, error) {
	records, warnA, err := PrepareInventory(inventory, cfg)
	if err != nil {
		return nil, err
	}

	promoTargets, warnB1, err := PrepareTargets(targets, cfg)
	if err != nil {
		return nil, err
	}

	siteAllocations, warnB2, err := PrepareAllocations(allocations, cfg)
	if err != nil {
		return nil, err
	}

	working, warnJoin := BuildWorkingRows(records, promoTargets, siteAllocations, cfg)

	detail := ApplyDemand(working, leadTime, cfg)
	Classify(detail, cfg)
	summary := Summarize(detail, cfg)

	warnings := make([]string, 0, len(warnA)+len(warnB1)+len(warnB2)+len(warnJoin))
	warnings = append(warnings, warnA...)
	warnings = append(warnings, warnB1...)
	warnings = append(warnings, warnB2...)
	warnings = append(warnings, warnJoin...)

	return &Result{
		Detail:   detail,
		Summary:  summary,
		Warnings: warnings,
	}, nil
}
