package calc

import "testing"

func classifyOne(t *testing.T, row DetailRow, cfg Config) DetailRow {
	t.Helper()
	rows := []DetailRow{row}
	Classify(rows, cfg)
	return rows[0]
}

func rfRow(net, moq float64) DetailRow {
	return DetailRow{
		WorkingRow: WorkingRow{
			InventoryRecord: InventoryRecord{Article: "A1", Site: "S1", RPType: "RF", SupplySource: 2},
		},
		NetDemandDispatch: net,
		EffectiveMOQ:      moq,
	}
}

func ndRow(promo, moq float64) DetailRow {
	return DetailRow{
		WorkingRow: WorkingRow{
			InventoryRecord: InventoryRecord{Article: "A1", Site: "S1", RPType: "ND", SupplySource: 2},
		},
		PromoDemand:  promo,
		EffectiveMOQ: moq,
	}
}

func TestClassify_StandardPath(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name string
		net  float64
		moq  float64
		want int
	}{
		{name: "exact multiple", net: 60, moq: 5, want: 60},
		{name: "rounded up", net: 61, moq: 5, want: 65},
		{name: "below MOQ lifts to MOQ", net: 3, moq: 5, want: 5},
		{name: "no demand", net: 0, moq: 5, want: 0},
		{name: "surplus", net: -10, moq: 5, want: 0},
		{name: "invalid MOQ suppresses dispatch", net: 60, moq: 0, want: 0},
	}
	for _, tc := range cases {
		got := classifyOne(t, rfRow(tc.net, tc.moq), cfg)
		if got.SuggestedDispatchQty != tc.want {
			t.Errorf("%s: SuggestedDispatchQty = %d, want %d", tc.name, got.SuggestedDispatchQty, tc.want)
		}
	}
}

func TestClassify_DirectPath(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name  string
		promo float64
		moq   float64
		want  int
	}{
		{name: "exact multiple", promo: 50, moq: 10, want: 50},
		{name: "rounded up", promo: 37.5, moq: 10, want: 40},
		{name: "invalid MOQ falls back to unrounded target", promo: 37.5, moq: 0, want: 37},
		{name: "no target", promo: 0, moq: 10, want: 0},
	}
	for _, tc := range cases {
		got := classifyOne(t, ndRow(tc.promo, tc.moq), cfg)
		if got.SuggestedDispatchQty != tc.want {
			t.Errorf("%s: SuggestedDispatchQty = %d, want %d", tc.name, got.SuggestedDispatchQty, tc.want)
		}
	}
}

func TestClassify_OtherRPTypeDispatchesNothing(t *testing.T) {
	row := rfRow(60, 5)
	row.RPType = "XX"

	got := classifyOne(t, row, DefaultConfig())
	if got.SuggestedDispatchQty != 0 || got.SuggestedDNQty != 0 {
		t.Errorf("RP type XX should dispatch nothing, got %d / %d",
			got.SuggestedDispatchQty, got.SuggestedDNQty)
	}
}

func TestClassify_DNCapLongPromotion(t *testing.T) {
	cfg := DefaultConfig()

	// Promotion over 4 days, dispatch above 50: snap down to MOQ multiple under 50.
	row := rfRow(60, 7)
	row.PromoDays = 5
	got := classifyOne(t, row, cfg)
	if got.SuggestedDispatchQty != 63 {
		t.Fatalf("SuggestedDispatchQty = %d, want 63", got.SuggestedDispatchQty)
	}
	if got.SuggestedDNQty != 49 {
		t.Errorf("SuggestedDNQty = %d, want 49 (floor of the 50 cap to a multiple of 7)", got.SuggestedDNQty)
	}

	// Promotion over 4 days but dispatch already under the cap: no change.
	row = rfRow(20, 7)
	row.PromoDays = 5
	got = classifyOne(t, row, cfg)
	if got.SuggestedDNQty != got.SuggestedDispatchQty {
		t.Errorf("SuggestedDNQty = %d, want uncapped %d", got.SuggestedDNQty, got.SuggestedDispatchQty)
	}

	// Short promotion: cap never applies.
	row = rfRow(60, 7)
	row.PromoDays = 4
	got = classifyOne(t, row, cfg)
	if got.SuggestedDNQty != 63 {
		t.Errorf("SuggestedDNQty = %d, want 63 with promotion at the cap boundary", got.SuggestedDNQty)
	}
}

func TestClassify_DNCapDirectPath(t *testing.T) {
	row := ndRow(100, 10)
	row.PromoDays = 6

	got := classifyOne(t, row, DefaultConfig())
	if got.SuggestedDispatchQty != 100 {
		t.Fatalf("SuggestedDispatchQty = %d, want 100", got.SuggestedDispatchQty)
	}
	if got.SuggestedDNQty != 50 {
		t.Errorf("SuggestedDNQty = %d, want capped 50", got.SuggestedDNQty)
	}
}

func TestClassify_DirectInvalidMOQSkipsCap(t *testing.T) {
	row := ndRow(80, 0)
	row.PromoDays = 6

	got := classifyOne(t, row, DefaultConfig())
	if got.SuggestedDNQty != 80 {
		t.Errorf("SuggestedDNQty = %d, want unrounded 80 (cap needs a valid MOQ)", got.SuggestedDNQty)
	}
}

func TestClassify_DispatchTypeLadder(t *testing.T) {
	cfg := DefaultConfig()

	cases := []struct {
		name string
		row  DetailRow
		want string
	}{
		{
			name: "DC site wins over everything",
			row: func() DetailRow {
				r := ndRow(100, 10)
				r.Site = "D001"
				return r
			}(),
			want: "D001",
		},
		{
			name: "ND with DN, supply 1: buyer order",
			row: func() DetailRow {
				r := ndRow(100, 10)
				r.SupplySource = 1
				return r
			}(),
			want: cfg.Labels.BuyerOrder,
		},
		{
			name: "ND with DN, supply 4: buyer order",
			row: func() DetailRow {
				r := ndRow(100, 10)
				r.SupplySource = 4
				return r
			}(),
			want: cfg.Labels.BuyerOrder,
		},
		{
			name: "ND with DN, supply 2: generate DN",
			row:  ndRow(100, 10),
			want: cfg.Labels.GenerateDN,
		},
		{
			name: "ND with DN, other supply: direct dispatch",
			row: func() DetailRow {
				r := ndRow(100, 10)
				r.SupplySource = 3
				return r
			}(),
			want: cfg.Labels.DirectDispatch,
		},
		{
			name: "ND without DN: no replenishment regardless of supply",
			row:  ndRow(0, 10),
			want: cfg.Labels.NoReplenishment,
		},
		{
			name: "RF supply 2: generate DN",
			row:  rfRow(60, 5),
			want: cfg.Labels.GenerateDN,
		},
		{
			name: "RF supply 1: buyer order",
			row: func() DetailRow {
				r := rfRow(60, 5)
				r.SupplySource = 1
				return r
			}(),
			want: cfg.Labels.BuyerOrder,
		},
		{
			name: "RF other supply: not applicable",
			row: func() DetailRow {
				r := rfRow(60, 5)
				r.SupplySource = 0
				return r
			}(),
			want: cfg.Labels.NotApplicable,
		},
	}
	for _, tc := range cases {
		got := classifyOne(t, tc.row, cfg)
		if got.DispatchType != tc.want {
			t.Errorf("%s: DispatchType = %q, want %q", tc.name, got.DispatchType, tc.want)
		}
	}
}

func TestClassify_Remark(t *testing.T) {
	cfg := DefaultConfig()

	got := classifyOne(t, ndRow(100, 10), cfg)
	if got.DispatchRemark != cfg.Labels.DirectRemark {
		t.Errorf("DispatchRemark = %q, want %q", got.DispatchRemark, cfg.Labels.DirectRemark)
	}

	got = classifyOne(t, ndRow(0, 10), cfg)
	if got.DispatchRemark != "" {
		t.Errorf("DispatchRemark = %q, want empty for a zero-quantity direct row", got.DispatchRemark)
	}

	got = classifyOne(t, rfRow(60, 5), cfg)
	if got.DispatchRemark != "" {
		t.Errorf("DispatchRemark = %q, want empty on the standard path", got.DispatchRemark)
	}
}
