package calc

import "testing"

func TestApplyDemand_BaseDemand(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{
			Article: "A1", Site: "S1", RPType: "RF",
			NetStock: 10, LastMonthSold: 300, MOQ: 5,
		},
	}}

	detail := ApplyDemand(rows, 0, DefaultConfig())
	d := detail[0]

	if d.DailySalesRate != 10 {
		t.Errorf("DailySalesRate = %v, want 10 (300/30)", d.DailySalesRate)
	}
	if d.EffectiveCoverDays != 7 {
		t.Errorf("EffectiveCoverDays = %v, want default 7", d.EffectiveCoverDays)
	}
	if d.BaseDemand != 70 {
		t.Errorf("BaseDemand = %v, want 70", d.BaseDemand)
	}
	if d.PromoDemand != 0 {
		t.Errorf("PromoDemand = %v, want 0 for a non-promo row", d.PromoDemand)
	}
	if d.NetDemandRaw != 60 {
		t.Errorf("NetDemandRaw = %v, want 60 (70 - 10)", d.NetDemandRaw)
	}
	if d.NetDemandDispatch != 60 {
		t.Errorf("NetDemandDispatch = %v, want 60", d.NetDemandDispatch)
	}
}

func TestApplyDemand_PromoDemand(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{
			Article: "A1", Site: "S1", RPType: "RF",
			NetStock: 10, LastMonthSold: 300, MOQ: 5,
		},
		HasTarget:  true,
		SKUTarget:  100,
		SitePct:    0.5,
		IsPromoSKU: true,
	}}

	d := ApplyDemand(rows, 0, DefaultConfig())[0]

	if d.PromoDemand != 50 {
		t.Errorf("PromoDemand = %v, want 50 (100 × 0.5)", d.PromoDemand)
	}
	if d.TotalDemand != 120 {
		t.Errorf("TotalDemand = %v, want 120", d.TotalDemand)
	}
	if d.NetDemandDispatch != 110 {
		t.Errorf("NetDemandDispatch = %v, want 110", d.NetDemandDispatch)
	}
}

func TestApplyDemand_PromoFlagGatesPromoDemand(t *testing.T) {
	// SKUTarget and SitePct are set, but the flag is off: no promo demand.
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{Article: "A1", Site: "S1"},
		SKUTarget:       100,
		SitePct:         0.5,
		IsPromoSKU:      false,
	}}

	d := ApplyDemand(rows, 0, DefaultConfig())[0]
	if d.PromoDemand != 0 {
		t.Errorf("PromoDemand = %v, want 0 when the promo flag is off", d.PromoDemand)
	}
}

func TestApplyDemand_CoverDaysOverrideAndLeadTime(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{Article: "A1", Site: "S1", LastMonthSold: 300},
		HasTarget:       true,
		CoverDays:       10,
	}}

	d := ApplyDemand(rows, 4, DefaultConfig())[0]
	if d.EffectiveCoverDays != 10 {
		t.Errorf("EffectiveCoverDays = %v, want explicit 10", d.EffectiveCoverDays)
	}
	if d.BaseDemand != 140 {
		t.Errorf("BaseDemand = %v, want 140 (10 × (10 + 4))", d.BaseDemand)
	}
}

func TestApplyDemand_NegativeLeadTimeTreatedAsZero(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{Article: "A1", Site: "S1", LastMonthSold: 300},
	}}

	d := ApplyDemand(rows, -5, DefaultConfig())[0]
	if d.BaseDemand != 70 {
		t.Errorf("BaseDemand = %v, want 70 (lead time clamped to 0)", d.BaseDemand)
	}
}

func TestApplyDemand_SurplusClampAndOverride(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{
			Article: "A1", Site: "S1",
			NetStock: 500, Pending: 100, LastMonthSold: 300,
		},
	}}

	cfg := DefaultConfig()
	d := ApplyDemand(rows, 0, cfg)[0]
	if d.NetDemandRaw != -530 {
		t.Errorf("NetDemandRaw = %v, want -530 (surplus stays signed)", d.NetDemandRaw)
	}
	if d.NetDemandDispatch != 0 {
		t.Errorf("NetDemandDispatch = %v, want clamped 0", d.NetDemandDispatch)
	}

	cfg.UseNegativeNetForDispatch = true
	d = ApplyDemand(rows, 0, cfg)[0]
	if d.NetDemandDispatch != -530 {
		t.Errorf("NetDemandDispatch = %v, want -530 with clamp disabled", d.NetDemandDispatch)
	}
}

func TestApplyDemand_MissingMOQPolicy(t *testing.T) {
	rows := []WorkingRow{{
		InventoryRecord: InventoryRecord{Article: "A1", Site: "S1", MOQ: 0},
	}}

	cfg := DefaultConfig()
	if d := ApplyDemand(rows, 0, cfg)[0]; d.EffectiveMOQ != 0 {
		t.Errorf("EffectiveMOQ = %v, want 0 under the zero policy", d.EffectiveMOQ)
	}

	cfg.MissingMOQPolicy = MOQPolicyOne
	if d := ApplyDemand(rows, 0, cfg)[0]; d.EffectiveMOQ != 1 {
		t.Errorf("EffectiveMOQ = %v, want 1 under the one policy", d.EffectiveMOQ)
	}
}
