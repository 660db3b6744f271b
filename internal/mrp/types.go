// Package mrp implements the planning kernel: bucketing, netting, lot
// sizing, BOM explosion, topological traversal and pegging over a set
// of demands, supplies and inventories.
package mrp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemId identifies a manufactured or purchased item. Equality is
// exact string comparison.
type ItemId string

// Quantity is the fixed-precision decimal type used for all quantity
// arithmetic in the kernel. No floating point is used in decision
// logic, with the single documented exception of the EOQ fallback in
// lotsizing.go.
type Quantity = decimal.Decimal

// Zero is the zero Quantity constant.
var Zero = decimal.Zero

// DemandKind tags the origin of a Demand.
type DemandKind int

const (
	SalesOrder DemandKind = iota
	Forecast
	SafetyStockDemand
	Dependent
)

func (k DemandKind) String() string {
	switch k {
	case SalesOrder:
		return "SalesOrder"
	case Forecast:
		return "Forecast"
	case SafetyStockDemand:
		return "SafetyStock"
	case Dependent:
		return "Dependent"
	default:
		return "Unknown"
	}
}

// SupplyKind tags the origin of a Supply.
type SupplyKind int

const (
	OnHand SupplyKind = iota
	PurchaseOrder
	WorkOrder
	Transfer
	PlannedOrderSupply
)

func (k SupplyKind) String() string {
	switch k {
	case OnHand:
		return "OnHand"
	case PurchaseOrder:
		return "PurchaseOrder"
	case WorkOrder:
		return "WorkOrder"
	case Transfer:
		return "Transfer"
	case PlannedOrderSupply:
		return "PlannedOrder"
	default:
		return "Unknown"
	}
}

// ProcurementType drives the PlannedOrder.Type derivation.
type ProcurementType int

const (
	Buy ProcurementType = iota
	Make
	TransferProcurement
)

func (p ProcurementType) String() string {
	switch p {
	case Buy:
		return "Buy"
	case Make:
		return "Make"
	case TransferProcurement:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// OrderType is the tag carried by a PlannedOrder, derived from the
// item's ProcurementType.
type OrderType int

const (
	Purchase OrderType = iota
	Production
	TransferOrder
)

func (o OrderType) String() string {
	switch o {
	case Purchase:
		return "Purchase"
	case Production:
		return "Production"
	case TransferOrder:
		return "Transfer"
	default:
		return "Unknown"
	}
}

func orderTypeFor(p ProcurementType) OrderType {
	switch p {
	case Make:
		return Production
	case TransferProcurement:
		return TransferOrder
	default:
		return Purchase
	}
}

// LotSizingRule selects the policy applied in lotsizing.go.
type LotSizingRule int

const (
	LotForLot LotSizingRule = iota
	FixedOrderQuantity
	EconomicOrderQuantity
	PeriodOrderQuantity
	MinMax
)

func (r LotSizingRule) String() string {
	switch r {
	case LotForLot:
		return "LotForLot"
	case FixedOrderQuantity:
		return "FixedOrderQuantity"
	case EconomicOrderQuantity:
		return "EconomicOrderQuantity"
	case PeriodOrderQuantity:
		return "PeriodOrderQuantity"
	case MinMax:
		return "MinMax"
	default:
		return "Unknown"
	}
}

// Demand is a requirement for an item by a given date. Dependent
// demands are generated internally by BOM explosion; all other kinds
// are independent (caller-supplied).
type Demand struct {
	ID           uuid.UUID
	Item         ItemId
	Quantity     Quantity
	RequiredDate time.Time
	Kind         DemandKind
	SourceRef    string // "<parent_item>:<parent_order_id>" for Dependent
	Priority     int    // 1..10
	Plant        string
}

// IsIndependent reports whether this demand originates outside the
// kernel (anything but Dependent).
func (d Demand) IsIndependent() bool {
	return d.Kind != Dependent
}

// Supply is an existing or planned source of an item becoming
// available on a date. Only PlannedOrderSupply with IsFirm=false is
// mutable by the kernel — in practice the kernel never mutates
// caller-supplied supplies at all; this field documents the
// constraint for callers feeding kernel output back in as input to a
// subsequent run.
type Supply struct {
	ID            uuid.UUID
	Item          ItemId
	Quantity      Quantity
	AvailableDate time.Time
	Kind          SupplyKind
	SourceRef     string
	IsFirm        bool
}

// Inventory seeds the initial projected-on-hand for an item.
type Inventory struct {
	Item         ItemId
	OnHand       Quantity
	SafetyStock  Quantity
	Allocated    Quantity
	Warehouse    string
}

// Available returns on-hand less allocated quantity.
func (i Inventory) Available() Quantity {
	return i.OnHand.Sub(i.Allocated)
}

// ItemConfig carries per-item planning parameters.
type ItemConfig struct {
	Item                   ItemId
	LeadTimeDays           int
	LotSizingRule          LotSizingRule
	FixedLotSize           *Quantity
	MinOrderQty            *Quantity
	MaxOrderQty            *Quantity
	OrderMultiple          *Quantity
	SafetyStock            Quantity
	PlanningHorizonDays    int
	Procurement            ProcurementType
	MRPEnabled             bool
	AllowNegativeInventory bool
}

// PlannedOrder is a kernel-generated order covering a net requirement.
type PlannedOrder struct {
	ID           uuid.UUID
	Item         ItemId
	Quantity     Quantity
	RequiredDate time.Time
	OrderDate    time.Time
	Type         OrderType
	Source       string
	Pegging      []PeggingRecord
}

// PeggingRecord traces a quantity of a PlannedOrder back to a single
// originating Demand.
type PeggingRecord struct {
	DemandID uuid.UUID
	Quantity Quantity
	Path     []ItemId
}

// Depth returns the number of ancestor items recorded in Path beyond
// the pegged item itself.
func (p PeggingRecord) Depth() int {
	if len(p.Path) == 0 {
		return 0
	}
	return len(p.Path) - 1
}

// Severity classifies a non-fatal Warning.
type Severity int

const (
	Info Severity = iota
	WarningSeverity
	ErrorSeverity
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case WarningSeverity:
		return "Warning"
	case ErrorSeverity:
		return "Error"
	default:
		return "Unknown"
	}
}

// Warning is a non-fatal condition surfaced on Result rather than
// failing the run.
type Warning struct {
	Item     ItemId
	Message  string
	Severity Severity
}

// Result is the output of Engine.Calculate.
type Result struct {
	PlannedOrders     []PlannedOrder
	Pegging           map[uuid.UUID][]PeggingRecord
	Warnings          []Warning
	CalculationTimeMs *int64
}

func newResult() *Result {
	return &Result{
		Pegging: make(map[uuid.UUID][]PeggingRecord),
	}
}

func (r *Result) addWarning(item ItemId, message string, sev Severity) {
	r.Warnings = append(r.Warnings, Warning{Item: item, Message: message, Severity: sev})
}
