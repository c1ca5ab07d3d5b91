package calc

import "testing"

// detailRow builds a minimal classified detail row for summary tests.
func detailRow(group, article, site string, opts func(*DetailRow)) DetailRow {
	d := DetailRow{
		WorkingRow: WorkingRow{
			InventoryRecord: InventoryRecord{Article: article, Site: site, SupplySource: 2},
			HasTarget:       group != "",
			GroupNo:         group,
		},
	}
	if opts != nil {
		opts(&d)
	}
	return d
}

func TestSummarize_GroupsAndSums(t *testing.T) {
	detail := []DetailRow{
		detailRow("G1", "A1", "S1", func(d *DetailRow) {
			d.TotalDemand = 100
			d.NetStock = 10
			d.Pending = 5
			d.SuggestedDispatchQty = 60
			d.SuggestedDNQty = 50
			d.Description = "Lipstick"
		}),
		detailRow("G1", "A1", "S2", func(d *DetailRow) {
			d.TotalDemand = 40
			d.NetStock = 20
			d.Pending = 0
			d.SuggestedDispatchQty = 20
			d.SuggestedDNQty = 20
		}),
		detailRow("G2", "A2", "S1", func(d *DetailRow) {
			d.TotalDemand = 10
		}),
	}

	rows := Summarize(detail, DefaultConfig())
	if len(rows) != 2 {
		t.Fatalf("got %d summary rows, want 2", len(rows))
	}

	r := rows[0]
	if r.GroupNo != "G1" || r.Article != "A1" {
		t.Fatalf("first row = (%s, %s), want (G1, A1)", r.GroupNo, r.Article)
	}
	if r.TotalDemand != 140 || r.TotalStock != 30 || r.TotalPending != 5 {
		t.Errorf("sums wrong: demand %v stock %v pending %v", r.TotalDemand, r.TotalStock, r.TotalPending)
	}
	if r.TotalDispatch != 80 || r.TotalDNQty != 70 {
		t.Errorf("dispatch sums wrong: %d / %d", r.TotalDispatch, r.TotalDNQty)
	}
	if r.TotalStockAvailable != 35 {
		t.Errorf("TotalStockAvailable = %v, want 35", r.TotalStockAvailable)
	}
	if r.Description != "Lipstick" {
		t.Errorf("Description = %q, want first non-empty value", r.Description)
	}
}

func TestSummarize_ExcludesDCAndUntargetedRows(t *testing.T) {
	detail := []DetailRow{
		detailRow("G1", "A1", "S1", func(d *DetailRow) { d.TotalDemand = 10 }),
		// DC row: excluded from the group sums, merged back as DC figures.
		detailRow("G1", "A1", "D001", func(d *DetailRow) {
			d.TotalDemand = 999
			d.NetStock = 200
			d.InQualityInsp = 3
			d.Blocked = 4
			d.Pending = 7
		}),
		// No matched target: contributes no summary row.
		detailRow("", "A9", "S1", func(d *DetailRow) { d.TotalDemand = 999 }),
	}

	rows := Summarize(detail, DefaultConfig())
	if len(rows) != 1 {
		t.Fatalf("got %d summary rows, want 1", len(rows))
	}

	r := rows[0]
	if r.TotalDemand != 10 {
		t.Errorf("TotalDemand = %v, want 10 (DC and untargeted rows excluded)", r.TotalDemand)
	}
	if r.DCStock != 200 || r.DCQualityInsp != 3 || r.DCBlocked != 4 || r.DCPending != 7 {
		t.Errorf("DC figures not merged back: %+v", r)
	}
}

func TestSummarize_EffectiveInventoryIncludesHSites(t *testing.T) {
	detail := []DetailRow{
		detailRow("G1", "A1", "S1", func(d *DetailRow) { d.TotalDemand = 50 }),
		detailRow("G1", "A1", "HA01", func(d *DetailRow) {
			d.NetStock = 30
			d.Pending = 10
		}),
		detailRow("G1", "A1", "HB02", func(d *DetailRow) { d.NetStock = 5 }),
		// HZ is not a recognized store tier.
		detailRow("G1", "A1", "HZ99", func(d *DetailRow) { d.NetStock = 100 }),
		detailRow("G1", "A1", "D001", func(d *DetailRow) { d.NetStock = 40 }),
	}

	rows := Summarize(detail, DefaultConfig())
	r := rows[0]
	// 40 DC + (30 + 5) H stock + 10 H pending.
	if r.EffectiveInventory != 85 {
		t.Errorf("EffectiveInventory = %v, want 85", r.EffectiveInventory)
	}
	if r.InventoryDifference != 85-r.TotalDemand {
		t.Errorf("InventoryDifference = %v, want %v", r.InventoryDifference, 85-r.TotalDemand)
	}
}

func TestIsHSite(t *testing.T) {
	cases := map[string]bool{
		"HA01": true,
		"HB":   true,
		"HC99": true,
		"HD0":  true,
		"HE01": false,
		"H":    false,
		"XA01": false,
		"":     false,
	}
	for site, want := range cases {
		if got := isHSite(site); got != want {
			t.Errorf("isHSite(%q) = %v, want %v", site, got, want)
		}
	}
}

func TestSummarize_StatusSupplySource2(t *testing.T) {
	cfg := DefaultConfig()

	build := func(demand, dcStock, hStock float64) []DetailRow {
		return []DetailRow{
			detailRow("G1", "A1", "HA01", func(d *DetailRow) {
				d.TotalDemand = demand
				d.NetStock = hStock
				d.SupplySource = 2
			}),
			detailRow("G1", "A1", "D001", func(d *DetailRow) {
				d.NetStock = dcStock
				d.SupplySource = 2
			}),
		}
	}

	// Enough stock, DC above threshold: lot for lot.
	r := Summarize(build(50, 150, 20), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusLotForLot {
		t.Errorf("status = %q, want lot-for-lot", r.InventoryStatus)
	}

	// Enough stock, DC at or below threshold: consolidation.
	r = Summarize(build(50, 100, 20), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusConsolidation {
		t.Errorf("status = %q, want consolidation", r.InventoryStatus)
	}

	// Not enough stock: buyer attention.
	r = Summarize(build(500, 100, 20), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusBuyerAttention {
		t.Errorf("status = %q, want buyer attention", r.InventoryStatus)
	}
}

func TestSummarize_StatusSupplySource1(t *testing.T) {
	cfg := DefaultConfig()

	build := func(demand float64) []DetailRow {
		return []DetailRow{
			detailRow("G1", "A1", "HA01", func(d *DetailRow) {
				d.TotalDemand = demand
				d.NetStock = 30
				d.SupplySource = 1
			}),
			detailRow("G1", "A1", "D001", func(d *DetailRow) { d.NetStock = 40 }),
		}
	}

	r := Summarize(build(50), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusSufficient {
		t.Errorf("status = %q, want sufficient", r.InventoryStatus)
	}

	r = Summarize(build(500), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusBuyerPO {
		t.Errorf("status = %q, want buyer PO", r.InventoryStatus)
	}
}

func TestSummarize_StatusFallback(t *testing.T) {
	cfg := DefaultConfig()

	build := func(demand, stock, dcStock float64, dispatch int) []DetailRow {
		return []DetailRow{
			detailRow("G1", "A1", "S1", func(d *DetailRow) {
				d.TotalDemand = demand
				d.NetStock = stock
				d.SuggestedDispatchQty = dispatch
				d.SupplySource = 0
			}),
			detailRow("G1", "A1", "D001", func(d *DetailRow) { d.NetStock = dcStock }),
		}
	}

	// Dispatch exceeds DC stock.
	r := Summarize(build(10, 100, 30, 40), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusDCShortage {
		t.Errorf("status = %q, want DC shortage", r.InventoryStatus)
	}

	// Demand exceeds available stock.
	r = Summarize(build(200, 100, 500, 40), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusShortageFlag {
		t.Errorf("status = %q, want %q", r.InventoryStatus, cfg.Labels.StatusShortageFlag)
	}

	// Covered.
	r = Summarize(build(50, 100, 500, 40), cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusOKFlag {
		t.Errorf("status = %q, want %q", r.InventoryStatus, cfg.Labels.StatusOKFlag)
	}
}

func TestSummarize_StatusPrefersHSiteSupplySource(t *testing.T) {
	cfg := DefaultConfig()

	detail := []DetailRow{
		// Non-H store first with supply source 0.
		detailRow("G1", "A1", "S1", func(d *DetailRow) {
			d.TotalDemand = 10
			d.SupplySource = 0
		}),
		// H store with supply source 1: this wins the verdict path.
		detailRow("G1", "A1", "HA01", func(d *DetailRow) {
			d.NetStock = 100
			d.SupplySource = 1
		}),
	}

	r := Summarize(detail, cfg)[0]
	if r.InventoryStatus != cfg.Labels.StatusSufficient {
		t.Errorf("status = %q, want the supply-1 verdict via the H site", r.InventoryStatus)
	}
}

func TestSummarize_SortedByGroupThenArticle(t *testing.T) {
	detail := []DetailRow{
		detailRow("G2", "A1", "S1", nil),
		detailRow("G1", "A2", "S1", nil),
		detailRow("G1", "A1", "S1", nil),
	}

	rows := Summarize(detail, DefaultConfig())
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.GroupNo + "/" + r.Article
	}
	want := []string{"G1/A1", "G1/A2", "G2/A1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
