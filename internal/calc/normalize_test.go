package calc

import (
	"errors"
	"strings"
	"testing"

	"github.com/hkretail/promo-dispatch/internal/table"
)

func inventoryHeader() []string {
	return []string{
		"Article", "Site", "RP Type", "SaSa Net Stock", "Pending Received",
		"Safety Stock", "Last Month Sold Qty", "MOQ", "Supply source",
	}
}

func TestPrepareInventory_MissingColumns(t *testing.T) {
	tbl := table.New([]string{"Article", "Site"}, nil)

	_, _, err := PrepareInventory(tbl, DefaultConfig())
	if err == nil {
		t.Fatal("expected schema error for missing columns")
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if schemaErr.Input != "File A" {
		t.Errorf("Input = %q, want File A", schemaErr.Input)
	}
	for _, want := range []string{"RP Type", "SaSa Net Stock", "MOQ", "Supply source"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name missing column %q", err.Error(), want)
		}
	}
}

func TestPrepareInventory_CoercionAndNormalization(t *testing.T) {
	tbl := table.New(inventoryHeader(), [][]string{
		{" A1 ", " s001 ", " rf ", "10", "abc", "-3", "1,200", "5", "2.0"},
	})

	records, warnings, err := PrepareInventory(tbl, DefaultConfig())
	if err != nil {
		t.Fatalf("PrepareInventory: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Article != "A1" {
		t.Errorf("Article = %q, want trimmed A1", rec.Article)
	}
	if rec.Site != "S001" {
		t.Errorf("Site = %q, want uppercased S001", rec.Site)
	}
	if rec.RPType != "RF" {
		t.Errorf("RPType = %q, want RF", rec.RPType)
	}
	if rec.NetStock != 10 {
		t.Errorf("NetStock = %v, want 10", rec.NetStock)
	}
	if rec.Pending != 0 {
		t.Errorf("Pending = %v, want 0 for non-numeric input", rec.Pending)
	}
	if rec.SafetyStock != 0 {
		t.Errorf("SafetyStock = %v, want 0 after negative clamp", rec.SafetyStock)
	}
	if rec.LastMonthSold != 1200 {
		t.Errorf("LastMonthSold = %v, want 1200 (comma separator)", rec.LastMonthSold)
	}
	if rec.SupplySource != 2 {
		t.Errorf("SupplySource = %v, want 2", rec.SupplySource)
	}
	if rec.InQualityInsp != 0 || rec.Blocked != 0 {
		t.Errorf("optional columns should default to 0, got %v / %v", rec.InQualityInsp, rec.Blocked)
	}

	foundClampWarning := false
	for _, w := range warnings {
		if strings.Contains(w, "Safety Stock") && strings.Contains(w, "1 negative") {
			foundClampWarning = true
		}
	}
	if !foundClampWarning {
		t.Errorf("expected a Safety Stock clamp warning, got %v", warnings)
	}
}

func TestPrepareInventory_InvalidSupplySource(t *testing.T) {
	for _, raw := range []string{"-1", "junk", ""} {
		tbl := table.New(inventoryHeader(), [][]string{
			{"A1", "S1", "RF", "0", "0", "0", "0", "0", raw},
		})
		records, _, err := PrepareInventory(tbl, DefaultConfig())
		if err != nil {
			t.Fatalf("PrepareInventory(%q): %v", raw, err)
		}
		if records[0].SupplySource != 0 {
			t.Errorf("SupplySource(%q) = %d, want 0", raw, records[0].SupplySource)
		}
	}
}

func TestPrepareInventory_LastMonthSoldCap(t *testing.T) {
	tbl := table.New(inventoryHeader(), [][]string{
		{"A1", "S1", "RF", "0", "0", "0", "250000", "1", "1"},
		{"A2", "S1", "RF", "0", "0", "0", "99999", "1", "1"},
	})

	records, warnings, err := PrepareInventory(tbl, DefaultConfig())
	if err != nil {
		t.Fatalf("PrepareInventory: %v", err)
	}
	if records[0].LastMonthSold != 100000 {
		t.Errorf("LastMonthSold = %v, want capped 100000", records[0].LastMonthSold)
	}
	if records[1].LastMonthSold != 99999 {
		t.Errorf("LastMonthSold = %v, want untouched 99999", records[1].LastMonthSold)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "capped") && strings.Contains(w, "1 values") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected one cap warning, got %v", warnings)
	}
}

func TestPrepareInventory_DedupSumsAdditiveFields(t *testing.T) {
	tbl := table.New(append(inventoryHeader(), "In Quality Insp.", "Blocked"), [][]string{
		{"A2", "S2", "RF", "10", "1", "2", "30", "5", "2", "1", "0"},
		{"A2", "s2", "ND", "15", "2", "3", "40", "5", "1", "2", "4"},
		{"A3", "S2", "RF", "7", "0", "0", "0", "5", "2", "0", "0"},
	})

	records, warnings, err := PrepareInventory(tbl, DefaultConfig())
	if err != nil {
		t.Fatalf("PrepareInventory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records after dedup, want 2", len(records))
	}

	merged := records[0]
	if merged.NetStock != 25 {
		t.Errorf("NetStock = %v, want summed 25", merged.NetStock)
	}
	if merged.Pending != 3 || merged.SafetyStock != 5 || merged.LastMonthSold != 70 || merged.MOQ != 10 {
		t.Errorf("additive fields not summed: %+v", merged)
	}
	if merged.InQualityInsp != 3 || merged.Blocked != 4 {
		t.Errorf("optional additive fields not summed: %+v", merged)
	}
	// Non-additive fields keep the first occurrence.
	if merged.RPType != "RF" || merged.SupplySource != 2 {
		t.Errorf("non-additive fields should keep first value, got %q / %d", merged.RPType, merged.SupplySource)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "Duplicates") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a duplicates warning, got %v", warnings)
	}
}

func TestPrepareInventory_NoDuplicateKeysAfterDedup(t *testing.T) {
	tbl := table.New(inventoryHeader(), [][]string{
		{"A1", "S1", "RF", "1", "0", "0", "0", "1", "1"},
		{"A1", "S2", "RF", "2", "0", "0", "0", "1", "1"},
		{"A1", "S1", "RF", "3", "0", "0", "0", "1", "1"},
	})

	records, _, err := PrepareInventory(tbl, DefaultConfig())
	if err != nil {
		t.Fatalf("PrepareInventory: %v", err)
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		k := rec.Article + "|" + rec.Site
		if seen[k] {
			t.Fatalf("duplicate key %s survived dedup", k)
		}
		seen[k] = true
	}
}
