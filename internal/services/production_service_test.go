package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func bomLine(materialID int, qtyPerUnit string) *models.CostFileLineDetail {
	return &models.CostFileLineDetail{
		CostFileLine: models.CostFileLine{
			MaterialID:      materialID,
			QuantityPerUnit: dec(qtyPerUnit),
		},
	}
}

func TestTheoreticalConsumption(t *testing.T) {
	bom := []*models.CostFileLineDetail{
		bomLine(1, "2.5"),
		bomLine(2, "0.75"),
		bomLine(3, "0"),   // skipped
		bomLine(1, "0.5"), // same material twice accumulates
	}

	got := theoreticalConsumption(bom, dec("10"))

	if len(got) != 2 {
		t.Fatalf("expected 2 materials, got %d: %v", len(got), got)
	}
	if !got[1].Equal(dec("30")) {
		t.Errorf("material 1 consumption = %s, want 30", got[1])
	}
	if !got[2].Equal(dec("7.5")) {
		t.Errorf("material 2 consumption = %s, want 7.5", got[2])
	}
}

func TestTheoreticalConsumptionEmptyBOM(t *testing.T) {
	if got := theoreticalConsumption(nil, dec("5")); len(got) != 0 {
		t.Fatalf("expected no consumption without a cost file, got %v", got)
	}
}

func TestAdvanceReconciliation(t *testing.T) {
	tests := []struct {
		name            string
		sent            string
		alreadyConsumed string
		consumed        string
		wantCumulative  string
		wantYieldLoss   string
	}{
		{"first batch", "100", "0", "30", "30", "70"},
		{"second batch", "100", "30", "50", "80", "20"},
		{"fully consumed", "100", "80", "20", "100", "0"},
		{"over consumption goes negative", "100", "80", "35", "115", "-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cumulative, yieldLoss := advanceReconciliation(dec(tt.sent), dec(tt.alreadyConsumed), dec(tt.consumed))
			if !cumulative.Equal(dec(tt.wantCumulative)) {
				t.Errorf("cumulative = %s, want %s", cumulative, tt.wantCumulative)
			}
			if !yieldLoss.Equal(dec(tt.wantYieldLoss)) {
				t.Errorf("yield loss = %s, want %s", yieldLoss, tt.wantYieldLoss)
			}
		})
	}
}

func TestValidateDispatchLines(t *testing.T) {
	materialLine := models.DispatchLineRequest{
		ItemKind:   models.ItemMaterial,
		MaterialID: 1,
		Quantity:   dec("10"),
	}
	productLine := models.DispatchLineRequest{
		ItemKind:  models.ItemProduct,
		ProductID: 2,
		Quantity:  dec("4"),
	}

	tests := []struct {
		name    string
		req     *models.DispatchRequest
		wantErr bool
	}{
		{
			"outbound with materials",
			&models.DispatchRequest{Direction: models.DirectionOut, Lines: []models.DispatchLineRequest{materialLine}},
			false,
		},
		{
			"inbound with products",
			&models.DispatchRequest{Direction: models.DirectionIn, Lines: []models.DispatchLineRequest{productLine}},
			false,
		},
		{
			"outbound rejects product lines",
			&models.DispatchRequest{Direction: models.DirectionOut, Lines: []models.DispatchLineRequest{productLine}},
			true,
		},
		{
			"inbound rejects material lines",
			&models.DispatchRequest{Direction: models.DirectionIn, Lines: []models.DispatchLineRequest{materialLine}},
			true,
		},
		{
			"zero quantity",
			&models.DispatchRequest{Direction: models.DirectionOut, Lines: []models.DispatchLineRequest{{
				ItemKind: models.ItemMaterial, MaterialID: 1, Quantity: decimal.Zero,
			}}},
			true,
		},
		{
			"unknown direction",
			&models.DispatchRequest{Direction: "SIDEWAYS", Lines: []models.DispatchLineRequest{materialLine}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDispatchLines(tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected a validation error")
				}
				if apperr.KindOf(err) != apperr.KindValidation {
					t.Fatalf("expected a validation kind, got %v", apperr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
