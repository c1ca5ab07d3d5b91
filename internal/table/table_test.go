package table

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"SaSa Net Stock":     "sasanetstock",
		"sasa_net_stock":     "sasanetstock",
		" SaSa Net Stock ":   "sasanetstock",
		"In Quality Insp.":   "inqualityinsp",
		"Shop Target(HK)":    "shoptargethk",
		"Shop Target (HK) %": "shoptargethk",
		"Group No.":          "groupno",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColumnLookup(t *testing.T) {
	tbl := New([]string{"Article", "SaSa Net Stock", "MOQ"}, nil)

	if got := tbl.ColumnIndex("sasa_net_stock"); got != 1 {
		t.Errorf("ColumnIndex = %d, want 1", got)
	}
	if got := tbl.ColumnIndex("Nope"); got != -1 {
		t.Errorf("ColumnIndex for absent column = %d, want -1", got)
	}
	if !tbl.HasColumn("MOQ") || tbl.HasColumn("Site") {
		t.Error("HasColumn misreported column presence")
	}
}

func TestColumnLookup_DuplicateHeaderKeepsFirst(t *testing.T) {
	tbl := New([]string{"Article", "article"}, nil)
	if got := tbl.ColumnIndex("Article"); got != 0 {
		t.Errorf("ColumnIndex = %d, want first occurrence 0", got)
	}
}

func TestMissingColumns(t *testing.T) {
	tbl := New([]string{"Article", "Site"}, nil)

	missing := tbl.MissingColumns("Article", "MOQ", "Site", "RP Type")
	if len(missing) != 2 || missing[0] != "MOQ" || missing[1] != "RP Type" {
		t.Errorf("MissingColumns = %v, want [MOQ, RP Type] in ask order", missing)
	}
}

func TestCell(t *testing.T) {
	tbl := New([]string{"A", "B"}, [][]string{
		{" x ", "y"},
		{"only-a"},
	})

	if got := tbl.Cell(0, 0); got != "x" {
		t.Errorf("Cell(0,0) = %q, want trimmed x", got)
	}
	if got := tbl.Cell(1, 1); got != "" {
		t.Errorf("Cell on a ragged row = %q, want empty", got)
	}
	if got := tbl.Cell(5, 0); got != "" {
		t.Errorf("Cell out of range = %q, want empty", got)
	}
	if got := tbl.Cell(0, -1); got != "" {
		t.Errorf("Cell with negative column = %q, want empty", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2", tbl.Len())
	}
}
