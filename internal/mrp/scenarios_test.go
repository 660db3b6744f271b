package mrp

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/nexusmrp/mrpkernel/internal/calendar"
	"github.com/nexusmrp/mrpkernel/internal/mrp/bomgraph"
)

func ordersFor(orders []PlannedOrder, item ItemId) []PlannedOrder {
	var out []PlannedOrder
	for _, o := range orders {
		if o.Item == item {
			out = append(out, o)
		}
	}
	return out
}

func totalQty(orders []PlannedOrder) Quantity {
	total := Zero
	for _, o := range orders {
		total = total.Add(o.Quantity)
	}
	return total
}

// S1 — Single item, L4L.
func TestScenario_S1_SingleItemL4L(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	graph.AddItem("X")
	configs := map[ItemId]ItemConfig{
		"X": {Item: "X", LeadTimeDays: 5, LotSizingRule: LotForLot, Procurement: Buy, MRPEnabled: true},
	}
	engine := NewEngine(graph, configs, calendar.New24x7())

	demands := []Demand{
		{ID: uuid.New(), Item: "X", Quantity: qty(100), RequiredDate: date(2025, 11, 20), Kind: SalesOrder, Priority: 5},
	}
	result, err := engine.Calculate(context.Background(), demands, nil, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	xOrders := ordersFor(result.PlannedOrders, "X")
	if len(xOrders) != 1 {
		t.Fatalf("got %d orders for X, want 1", len(xOrders))
	}
	o := xOrders[0]
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

// S2 — Two-level BOM. The scenario's own wording ("at least one ...
// order covering ...") concedes that the formal per-bucket netting
// formula (§4.3), applied after merging a descendant item's axis with
// the initial global axis (§4.6 step f), can split one conceptual
// shortfall across more than one bucket; this test checks the
// PRODUCT order exactly and checks that one of COMPONENT's planned
// orders is the 55 units that the 80-unit dependent demand leaves
// against 20 on-hand, 10 firm supply and 5 safety stock.
func TestScenario_S2_TwoLevelBOM(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	graph.AddEdge("PRODUCT", "COMPONENT", qty(1))
	configs := map[ItemId]ItemConfig{
		"PRODUCT":   {Item: "PRODUCT", LeadTimeDays: 5, LotSizingRule: LotForLot, Procurement: Buy, MRPEnabled: true, SafetyStock: qty(10)},
		"COMPONENT": {Item: "COMPONENT", LeadTimeDays: 3, LotSizingRule: LotForLot, Procurement: Buy, MRPEnabled: true, SafetyStock: qty(5)},
	}
	engine := NewEngine(graph, configs, calendar.New24x7())

	demands := []Demand{
		{ID: uuid.New(), Item: "PRODUCT", Quantity: qty(100), RequiredDate: date(2025, 11, 20), Kind: SalesOrder, Priority: 5},
	}
	supplies := []Supply{
		{ID: uuid.New(), Item: "COMPONENT", Quantity: qty(10), AvailableDate: date(2025, 11, 18), Kind: PurchaseOrder, IsFirm: true},
	}
	inventories := []Inventory{
		{Item: "PRODUCT", OnHand: qty(30), SafetyStock: qty(10)},
		{Item: "COMPONENT", OnHand: qty(20), SafetyStock: qty(5)},
	}

	result, err := engine.Calculate(context.Background(), demands, supplies, inventories)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	productOrders := ordersFor(result.PlannedOrders, "PRODUCT")
	if len(productOrders) != 1 {
		t.Fatalf("got %d PRODUCT orders, want 1", len(productOrders))
	}
	p := productOrders[0]
	if !p.Quantity.Equal(qty(80)) {
		t.Errorf("PRODUCT quantity = %s, want 80", p.Quantity)
	}
	if !p.RequiredDate.Equal(date(2025, 11, 20)) || !p.OrderDate.Equal(date(2025, 11, 15)) {
		t.Errorf("PRODUCT dates = required %v order %v, want required 2025-11-20 order 2025-11-15", p.RequiredDate, p.OrderDate)
	}

	componentOrders := ordersFor(result.PlannedOrders, "COMPONENT")
	if len(componentOrders) == 0 {
		t.Fatal("expected at least one COMPONENT order")
	}
	found55 := false
	for _, o := range componentOrders {
		if o.Quantity.Equal(qty(55)) {
			found55 = true
		}
	}
	if !found55 {
		t.Errorf("expected a COMPONENT order of quantity 55 among %v", componentOrders)
	}
}

// S3 — Three-level BOM.
func TestScenario_S3_ThreeLevelBOM(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	graph.AddEdge("BIKE", "FRAME", qty(1))
	graph.AddEdge("BIKE", "WHEEL", qty(2))
	graph.AddEdge("FRAME", "STEEL-TUBE", qty(3))

	items := []ItemId{"BIKE", "FRAME", "WHEEL", "STEEL-TUBE"}
	configs := make(map[ItemId]ItemConfig, len(items))
	for _, item := range items {
		configs[item] = ItemConfig{Item: item, LotSizingRule: LotForLot, Procurement: Make, MRPEnabled: true}
	}
	engine := NewEngine(graph, configs, calendar.New24x7())

	demands := []Demand{
		{ID: uuid.New(), Item: "BIKE", Quantity: qty(50), RequiredDate: date(2025, 12, 1), Kind: SalesOrder, Priority: 5},
	}
	result, err := engine.Calculate(context.Background(), demands, nil, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	want := map[ItemId]Quantity{
		"BIKE":       qty(50),
		"FRAME":      qty(50),
		"WHEEL":      qty(100),
		"STEEL-TUBE": qty(150),
	}
	for item, expected := range want {
		got := totalQty(ordersFor(result.PlannedOrders, item))
		if !got.Equal(expected) {
			t.Errorf("%s total planned quantity = %s, want %s", item, got, expected)
		}
	}
}

func TestScenario_EmptyDemands_EmptyResult(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	engine := NewEngine(graph, map[ItemId]ItemConfig{}, calendar.New24x7())
	result, err := engine.Calculate(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(result.PlannedOrders) != 0 {
		t.Errorf("expected no planned orders, got %d", len(result.PlannedOrders))
	}
}

func TestScenario_ItemNotInBOMGraph_NoDependentDemandWarning(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	configs := map[ItemId]ItemConfig{
		"ORPHAN": {Item: "ORPHAN", LotSizingRule: LotForLot, Procurement: Buy, MRPEnabled: true},
	}
	engine := NewEngine(graph, configs, calendar.New24x7())
	demands := []Demand{
		{ID: uuid.New(), Item: "ORPHAN", Quantity: qty(10), RequiredDate: date(2025, 11, 20), Kind: SalesOrder, Priority: 5},
	}
	result, err := engine.Calculate(context.Background(), demands, nil, nil)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(result.PlannedOrders) != 1 {
		t.Fatalf("got %d orders, want 1", len(result.PlannedOrders))
	}
	warned := false
	for _, w := range result.Warnings {
		if w.Item == "ORPHAN" && strings.Contains(w.Message, "not found in BOM graph") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("expected a not-in-BOM-graph warning for ORPHAN, got %v", result.Warnings)
	}
}

func TestScenario_ConfigNotFound(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	engine := NewEngine(graph, map[ItemId]ItemConfig{}, calendar.New24x7())
	demands := []Demand{
		{ID: uuid.New(), Item: "UNCONFIGURED", Quantity: qty(10), RequiredDate: date(2025, 11, 20), Kind: SalesOrder, Priority: 5},
	}
	_, err := engine.Calculate(context.Background(), demands, nil, nil)
	if err == nil {
		t.Fatal("expected ConfigNotFound error")
	}
	kernelErr, ok := err.(*Error)
	if !ok || kernelErr.Kind != ConfigNotFound {
		t.Errorf("expected ConfigNotFound error, got %v", err)
	}
}

func TestScenario_CycleDetected(t *testing.T) {
	graph := bomgraph.NewMemoryGraph()
	graph.AddEdge("A", "B", qty(1))
	graph.AddEdge("B", "A", qty(1))
	configs := map[ItemId]ItemConfig{
		"A": {Item: "A", LotSizingRule: LotForLot, Procurement: Make, MRPEnabled: true},
		"B": {Item: "B", LotSizingRule: LotForLot, Procurement: Make, MRPEnabled: true},
	}
	engine := NewEngine(graph, configs, calendar.New24x7())
	demands := []Demand{
		{ID: uuid.New(), Item: "A", Quantity: qty(10), RequiredDate: date(2025, 11, 20), Kind: SalesOrder, Priority: 5},
	}
	_, err := engine.Calculate(context.Background(), demands, nil, nil)
	if err == nil {
		t.Fatal("expected TopologicalSortError")
	}
	kernelErr, ok := err.(*Error)
	if !ok || kernelErr.Kind != TopologicalSortError {
		t.Errorf("expected TopologicalSortError, got %v", err)
	}
}
