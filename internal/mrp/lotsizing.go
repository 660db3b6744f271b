package mrp

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const periodOrderQuantityWindowDays = 7

// applyLotSizing dispatches to the configured policy and returns
// planned orders for one item's net requirement series.
// subtractWorkingDays converts required_date to order_date via the
// item's lead time.
func applyLotSizing(item ItemId, series []NetRequirement, cfg ItemConfig, subtractWorkingDays func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	switch cfg.LotSizingRule {
	case LotForLot:
		return lotForLot(item, series, cfg, subtractWorkingDays)
	case FixedOrderQuantity:
		return fixedOrderQuantity(item, series, cfg, subtractWorkingDays)
	case EconomicOrderQuantity:
		return economicOrderQuantity(item, series, cfg, subtractWorkingDays)
	case PeriodOrderQuantity:
		return periodOrderQuantity(item, series, cfg, subtractWorkingDays)
	case MinMax:
		return minMax(item, series, cfg, subtractWorkingDays)
	default:
		return nil, newError(Other, item, "unknown lot sizing rule %v", cfg.LotSizingRule)
	}
}

func newPlannedOrder(item ItemId, qty Quantity, requiredDate time.Time, cfg ItemConfig, subtractWorkingDays func(time.Time, int) time.Time) PlannedOrder {
	orderDate := subtractWorkingDays(requiredDate, cfg.LeadTimeDays)
	return PlannedOrder{
		ID:           uuid.New(),
		Item:         item,
		Quantity:     qty,
		RequiredDate: requiredDate,
		OrderDate:    orderDate,
		Type:         orderTypeFor(cfg.Procurement),
	}
}

// normalize applies min_qty (raise), then rounds up to the next
// multiple, then caps at max_qty, in that order (§4.4).
func normalize(q Quantity, cfg ItemConfig) Quantity {
	if cfg.MinOrderQty != nil && q.LessThan(*cfg.MinOrderQty) {
		q = *cfg.MinOrderQty
	}
	if cfg.OrderMultiple != nil && !cfg.OrderMultiple.IsZero() {
		m := *cfg.OrderMultiple
		rem := q.Mod(m)
		if !rem.IsZero() {
			q = q.Add(m.Sub(rem))
		}
	}
	if cfg.MaxOrderQty != nil && q.GreaterThan(*cfg.MaxOrderQty) {
		q = *cfg.MaxOrderQty
	}
	return q
}

func lotForLot(item ItemId, series []NetRequirement, cfg ItemConfig, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	var orders []PlannedOrder
	for _, nr := range series {
		if nr.NetRequirement.IsPositive() {
			orders = append(orders, newPlannedOrder(item, normalize(nr.NetRequirement, cfg), nr.Date, cfg, sub))
		}
	}
	return orders, nil
}

func fixedOrderQuantity(item ItemId, series []NetRequirement, cfg ItemConfig, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	if cfg.FixedLotSize == nil || cfg.FixedLotSize.IsZero() {
		return nil, &Error{Kind: MissingLotSize, Item: item}
	}
	return runLotWindow(item, series, cfg, *cfg.FixedLotSize, sub)
}

func economicOrderQuantity(item ItemId, series []NetRequirement, cfg ItemConfig, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	lot := Zero
	if cfg.FixedLotSize != nil && !cfg.FixedLotSize.IsZero() {
		lot = *cfg.FixedLotSize
	} else {
		var total Quantity
		for _, nr := range series {
			total = total.Add(nr.NetRequirement)
		}
		// Placeholder EOQ: a true sqrt(2*D*S/H) formula needs holding
		// and ordering cost fields this config does not carry.
		f, _ := total.Float64()
		lot = decimal.NewFromFloat(10 * math.Sqrt(f))
		if lot.LessThan(decimal.NewFromInt(1)) {
			lot = decimal.NewFromInt(1)
		}
	}
	return runLotWindow(item, series, cfg, lot, sub)
}

func periodOrderQuantity(item ItemId, series []NetRequirement, cfg ItemConfig, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	var orders []PlannedOrder
	var windowStart time.Time
	var windowSum Quantity
	haveWindow := false

	flush := func() {
		if haveWindow && windowSum.IsPositive() {
			orders = append(orders, newPlannedOrder(item, normalize(windowSum, cfg), windowStart, cfg, sub))
		}
		haveWindow = false
		windowSum = Zero
	}

	for _, nr := range series {
		if nr.NetRequirement.IsZero() {
			continue
		}
		if !haveWindow {
			windowStart = nr.Date
			windowSum = Zero
			haveWindow = true
		} else if daysBetween(windowStart, nr.Date) >= periodOrderQuantityWindowDays {
			flush()
			windowStart = nr.Date
			windowSum = Zero
			haveWindow = true
		}
		windowSum = windowSum.Add(nr.NetRequirement)
	}
	flush()
	return orders, nil
}

func minMax(item ItemId, series []NetRequirement, cfg ItemConfig, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	minLevel := cfg.SafetyStock
	if cfg.MinOrderQty != nil {
		minLevel = *cfg.MinOrderQty
	}
	maxLevel := minLevel.Mul(decimal.NewFromInt(2))
	if cfg.MaxOrderQty != nil {
		maxLevel = *cfg.MaxOrderQty
	}

	var orders []PlannedOrder
	running := Zero
	for _, nr := range series {
		running = running.Add(nr.ScheduledReceipt).Sub(nr.GrossRequirement)
		if running.LessThan(minLevel) {
			qty := normalize(maxLevel.Sub(running), cfg)
			orders = append(orders, newPlannedOrder(item, qty, nr.Date, cfg, sub))
			running = running.Add(qty)
		}
	}
	return orders, nil
}

// runLotWindow is the shared FOQ/EOQ running-inventory loop: maintain
// rᵢ, and while below safety stock emit ceil(shortage/lot)*lot.
func runLotWindow(item ItemId, series []NetRequirement, cfg ItemConfig, lot Quantity, sub func(time.Time, int) time.Time) ([]PlannedOrder, error) {
	var orders []PlannedOrder
	running := Zero
	for _, nr := range series {
		running = running.Add(nr.ScheduledReceipt).Sub(nr.GrossRequirement)
		for running.LessThan(cfg.SafetyStock) {
			shortage := cfg.SafetyStock.Sub(running)
			batches := shortage.Div(lot).Ceil()
			qty := normalize(batches.Mul(lot), cfg)
			orders = append(orders, newPlannedOrder(item, qty, nr.Date, cfg, sub))
			running = running.Add(qty)
		}
	}
	return orders, nil
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
