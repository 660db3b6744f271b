package mrp

import (
	"testing"

	"github.com/nexusmrp/mrpkernel/internal/calendar"
	"github.com/shopspring/decimal"
)

func qty(v int64) Quantity { return decimal.NewFromInt(v) }

func qtyPtr(v int64) *Quantity {
	q := decimal.NewFromInt(v)
	return &q
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		cfg  ItemConfig
		want Quantity
	}{
		{"raises to min", qty(30), ItemConfig{MinOrderQty: qtyPtr(50)}, qty(50)},
		{"rounds to multiple", qty(75), ItemConfig{OrderMultiple: qtyPtr(10)}, qty(80)},
		{"already on multiple", qty(80), ItemConfig{OrderMultiple: qtyPtr(10)}, qty(80)},
		{"caps at max", qty(600), ItemConfig{MaxOrderQty: qtyPtr(500)}, qty(500)},
		{"multiple only, 123 to 200", qty(123), ItemConfig{OrderMultiple: qtyPtr(100)}, qty(200)},
		{"min then multiple, 123 to 125", qty(123), ItemConfig{MinOrderQty: qtyPtr(50), OrderMultiple: qtyPtr(25)}, qty(125)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.q, tt.cfg)
			if !got.Equal(tt.want) {
				t.Errorf("normalize(%s) = %s, want %s", tt.q, got, tt.want)
			}
		})
	}
}

func stdCfg(lead int, rule LotSizingRule) ItemConfig {
	return ItemConfig{
		Item:          "Y",
		LeadTimeDays:  lead,
		LotSizingRule: rule,
		Procurement:   Buy,
	}
}

func TestLotForLot_OneOrderPerPositiveBucket(t *testing.T) {
	cfg := stdCfg(5, LotForLot)
	cal := calendar.New24x7()
	series := []NetRequirement{
		{Date: date(2025, 11, 20), NetRequirement: qty(100)},
	}
	orders, err := applyLotSizing("X", series, cfg, cal.SubtractWorkingDays)
	if err != nil {
		t.Fatalf("applyLotSizing: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	o := orders[0]
	if !o.Quantity.Equal(qty(100)) {
		t.Errorf("quantity = %s, want 100", o.Quantity)
	}
	if !o.RequiredDate.Equal(date(2025, 11, 20)) {
		t.Errorf("required date = %v, want 2025-11-20", o.RequiredDate)
	}
	if !o.OrderDate.Equal(date(2025, 11, 15)) {
		t.Errorf("order date = %v, want 2025-11-15", o.OrderDate)
	}
}

func TestFixedOrderQuantity_MissingLotSizeError(t *testing.T) {
	cfg := stdCfg(5, FixedOrderQuantity)
	cal := calendar.New24x7()
	series := []NetRequirement{{Date: date(2025, 11, 20), NetRequirement: qty(50)}}
	_, err := applyLotSizing("Y", series, cfg, cal.SubtractWorkingDays)
	var kernelErr *Error
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kernelErr, _ = err.(*Error); kernelErr == nil || kernelErr.Kind != MissingLotSize {
		t.Errorf("expected MissingLotSize error, got %v", err)
	}
}

func TestFixedOrderQuantity_Shortage(t *testing.T) {
	// S5: demand 150 of Y, FOQ lot 100, no inventory -> one order of 200.
	cfg := stdCfg(5, FixedOrderQuantity)
	cfg.FixedLotSize = qtyPtr(100)
	cal := calendar.New24x7()
	series := []NetRequirement{
		{Date: date(2025, 11, 20), GrossRequirement: qty(150), NetRequirement: qty(150)},
	}
	orders, err := applyLotSizing("Y", series, cfg, cal.SubtractWorkingDays)
	if err != nil {
		t.Fatalf("applyLotSizing: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if !orders[0].Quantity.Equal(qty(200)) {
		t.Errorf("quantity = %s, want 200", orders[0].Quantity)
	}
}

func TestPeriodOrderQuantity_Aggregation(t *testing.T) {
	// S4: net requirements 50 on 11-01, 30 on 11-03, 40 on 11-10, period 7.
	cfg := stdCfg(0, PeriodOrderQuantity)
	cal := calendar.New24x7()
	series := []NetRequirement{
		{Date: date(2025, 11, 1), NetRequirement: qty(50)},
		{Date: date(2025, 11, 3), NetRequirement: qty(30)},
		{Date: date(2025, 11, 10), NetRequirement: qty(40)},
	}
	orders, err := applyLotSizing("X", series, cfg, cal.SubtractWorkingDays)
	if err != nil {
		t.Fatalf("applyLotSizing: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if !orders[0].Quantity.Equal(qty(80)) || !orders[0].RequiredDate.Equal(date(2025, 11, 1)) {
		t.Errorf("order 1 = %s @ %v, want 80 @ 2025-11-01", orders[0].Quantity, orders[0].RequiredDate)
	}
	if !orders[1].Quantity.Equal(qty(40)) || !orders[1].RequiredDate.Equal(date(2025, 11, 10)) {
		t.Errorf("order 2 = %s @ %v, want 40 @ 2025-11-10", orders[1].Quantity, orders[1].RequiredDate)
	}
}

func TestMinMax_EmitsWhenBelowMinLevel(t *testing.T) {
	cfg := stdCfg(0, MinMax)
	cfg.MinOrderQty = qtyPtr(20)
	cfg.MaxOrderQty = qtyPtr(100)
	cal := calendar.New24x7()
	series := []NetRequirement{
		{Date: date(2025, 11, 1), GrossRequirement: qty(90)},
	}
	orders, err := applyLotSizing("X", series, cfg, cal.SubtractWorkingDays)
	if err != nil {
		t.Fatalf("applyLotSizing: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	// running = 0 - 90 = -90 < min(20) -> order = normalize(max(100) - (-90))
	// = normalize(190), which caps at max_qty 100.
	if !orders[0].Quantity.Equal(qty(100)) {
		t.Errorf("quantity = %s, want 100", orders[0].Quantity)
	}
}

func TestEconomicOrderQuantity_UsesFixedLotWhenPresent(t *testing.T) {
	cfg := stdCfg(0, EconomicOrderQuantity)
	cfg.FixedLotSize = qtyPtr(50)
	cal := calendar.New24x7()
	series := []NetRequirement{
		{Date: date(2025, 11, 1), GrossRequirement: qty(120)},
	}
	orders, err := applyLotSizing("X", series, cfg, cal.SubtractWorkingDays)
	if err != nil {
		t.Fatalf("applyLotSizing: %v", err)
	}
	if len(orders) == 0 {
		t.Fatal("expected at least one order")
	}
	for _, o := range orders {
		rem := o.Quantity.Mod(qty(50))
		if !rem.IsZero() {
			t.Errorf("order quantity %s is not a multiple of the fixed lot 50", o.Quantity)
		}
	}
}
