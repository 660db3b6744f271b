package mrp

import "time"

// NetRequirement is one bucket of a netting run: gross requirement,
// scheduled receipt, projected on hand and net requirement for a
// single date.
type NetRequirement struct {
	Date              time.Time
	GrossRequirement  Quantity
	ScheduledReceipt  Quantity
	ProjectedOnHand   Quantity
	NetRequirement    Quantity
}

// netRequirements runs the netting calculation over axis, given
// demands and supplies for one item, an initial on-hand balance, a
// safety stock floor and the allow-negative-inventory policy flag.
//
// Projected on hand is always the raw running balance; lot sizing
// owns satisfying the net requirement and propagating its own
// receipts into its running inventory.
func netRequirements(axis []time.Time, demands []Demand, supplies []Supply, initialOnHand, safetyStock Quantity, allowNegative bool) []NetRequirement {
	gross := make(map[time.Time]Quantity, len(demands))
	for _, d := range demands {
		gross[d.RequiredDate] = gross[d.RequiredDate].Add(d.Quantity)
	}
	receipts := make(map[time.Time]Quantity, len(supplies))
	for _, s := range supplies {
		receipts[s.AvailableDate] = receipts[s.AvailableDate].Add(s.Quantity)
	}

	out := make([]NetRequirement, 0, len(axis))
	projected := initialOnHand
	for _, t := range axis {
		g := gross[t]
		r := receipts[t]
		projected = projected.Add(r).Sub(g)

		var net Quantity
		if allowNegative {
			net = maxQty(Zero, projected.Neg())
		} else {
			net = maxQty(Zero, safetyStock.Sub(projected))
		}

		out = append(out, NetRequirement{
			Date:             t,
			GrossRequirement: g,
			ScheduledReceipt: r,
			ProjectedOnHand:  projected,
			NetRequirement:   net,
		})
	}
	return out
}

func maxQty(a, b Quantity) Quantity {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func minQty(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}
