package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/service"
)

func writePairDir(t *testing.T, dir string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	csv := "Article,Site,RP Type,SaSa Net Stock,Pending Received,Safety Stock,Last Month Sold Qty,MOQ,Supply source\n" +
		"A1,S001,RF,10,0,0,300,5,2\n"
	if err := os.WriteFile(filepath.Join(dir, "Promotion Target File A.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Sheet 1")
	f.SetSheetRow("Sheet 1", "A1", &[]interface{}{"Group No.", "Article", "SKU Target", "Promotion Days"})
	f.SetSheetRow("Sheet 1", "A2", &[]interface{}{"G1", "A1", 100, 3})
	if _, err := f.NewSheet("Sheet 2"); err != nil {
		t.Fatal(err)
	}
	f.SetSheetRow("Sheet 2", "A1", &[]interface{}{"Site", "Shop Target(HK)", "Shop Target(MO)", "Shop Target(ALL)"})
	f.SetSheetRow("Sheet 2", "A2", &[]interface{}{"S001", 0, 0, 0.5})
	if err := f.SaveAs(filepath.Join(dir, "Promotion Target File B.xlsx")); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverPairs(t *testing.T) {
	root := t.TempDir()

	writePairDir(t, filepath.Join(root, "week34"))

	// Incomplete pair: inventory only.
	partial := filepath.Join(root, "week35")
	if err := os.MkdirAll(partial, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(partial, "Promotion Target File A.csv"), []byte("Article\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Stray file at root is ignored.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	pairs, err := DiscoverPairs(root)
	if err != nil {
		t.Fatalf("DiscoverPairs: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Name != "week34" {
		t.Errorf("pair name = %q, want week34", pairs[0].Name)
	}
	if filepath.Base(pairs[0].InventoryPath) != "Promotion Target File A.csv" {
		t.Errorf("unexpected inventory path %q", pairs[0].InventoryPath)
	}
	if filepath.Base(pairs[0].PromotionPath) != "Promotion Target File B.xlsx" {
		t.Errorf("unexpected promotion path %q", pairs[0].PromotionPath)
	}
}

func TestRunnerRun(t *testing.T) {
	root := t.TempDir()
	outputDir := t.TempDir()

	writePairDir(t, filepath.Join(root, "week34"))
	writePairDir(t, filepath.Join(root, "week35"))

	pairs, err := DiscoverPairs(root)
	if err != nil {
		t.Fatalf("DiscoverPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}

	svc := service.NewCalcService(&config.Config{}, nil, nil, nil, nil)
	runner := NewRunner(svc, 2)

	outcomes, err := runner.Run(context.Background(), pairs, outputDir, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for _, out := range outcomes {
		if out.Err != nil {
			t.Errorf("pair %s failed: %v", out.Pair.Name, out.Err)
			continue
		}
		if _, err := os.Stat(out.OutputPath); err != nil {
			t.Errorf("pair %s output missing: %v", out.Pair.Name, err)
		}
	}
}

func TestRunnerRunBadInput(t *testing.T) {
	outputDir := t.TempDir()

	svc := service.NewCalcService(&config.Config{}, nil, nil, nil, nil)
	runner := NewRunner(svc, 1)

	outcomes, err := runner.Run(context.Background(), []Pair{{
		Name:          "broken",
		InventoryPath: filepath.Join(outputDir, "missing.csv"),
		PromotionPath: filepath.Join(outputDir, "missing.xlsx"),
	}}, outputDir, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].Err == nil {
		t.Fatal("expected the broken pair to report an error")
	}
}
