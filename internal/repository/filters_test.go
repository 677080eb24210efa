package repository

import (
	"reflect"
	"testing"
)

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []int
	}{
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"single", "7", []int{7}},
		{"multiple with spaces", "1, 2 ,3", []int{1, 2, 3}},
		{"skips garbage", "1,x,3", []int{1, 3}},
		{"skips non-positive", "0,-2,5", []int{5}},
		{"trailing comma", "4,5,", []int{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseIDList(tt.csv); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseIDList(%q) = %v, want %v", tt.csv, got, tt.want)
			}
		})
	}
}

func TestWhereBuilderEmpty(t *testing.T) {
	var w whereBuilder
	if got := w.clause(); got != "" {
		t.Errorf("clause() on empty builder = %q, want empty", got)
	}
	if got := w.and(); got != "" {
		t.Errorf("and() on empty builder = %q, want empty", got)
	}
}

func TestWhereBuilderNumbersPlaceholders(t *testing.T) {
	var w whereBuilder
	w.add("m.purchase_date >= ?", "2026-01-01")
	w.add("m.purchase_date <= ?", "2026-01-31")
	w.addIDList("m.supplier_id", "3,5")
	w.add("m.document_no = ?", "SF20260101001")

	wantClause := " WHERE m.purchase_date >= $1 AND m.purchase_date <= $2" +
		" AND m.supplier_id IN ($3, $4) AND m.document_no = $5"
	if got := w.clause(); got != wantClause {
		t.Fatalf("clause() = %q, want %q", got, wantClause)
	}

	wantArgs := []any{"2026-01-01", "2026-01-31", 3, 5, "SF20260101001"}
	if !reflect.DeepEqual(w.args, wantArgs) {
		t.Fatalf("args = %v, want %v", w.args, wantArgs)
	}
}

func TestWhereBuilderEmptyIDListAddsNothing(t *testing.T) {
	var w whereBuilder
	w.addIDList("supplier_id", "x, ,0")
	if got := w.clause(); got != "" {
		t.Fatalf("clause() = %q, want empty after unusable ID list", got)
	}
}

func TestWhereBuilderNextArg(t *testing.T) {
	var w whereBuilder
	w.add("direction = ?", "OUT")
	if got := w.nextArg(50); got != "$2" {
		t.Fatalf("nextArg = %q, want $2", got)
	}
	if len(w.args) != 2 || w.args[1] != 50 {
		t.Fatalf("args = %v, want the limit appended", w.args)
	}
}
