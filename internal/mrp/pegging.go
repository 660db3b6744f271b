package mrp

import "sort"

// PeggingType selects how far a pegging path reaches up the BOM.
type PeggingType int

const (
	SingleLevel PeggingType = iota
	MultiLevel
)

// peggingContext indexes demands by (item, date) for candidate
// lookup during pegOrder.
type peggingContext struct {
	byItemDate map[ItemId]map[int64][]Demand
}

func buildPeggingContext(demands []Demand) *peggingContext {
	ctx := &peggingContext{
		byItemDate: make(map[ItemId]map[int64][]Demand),
	}
	for _, d := range demands {
		key := d.RequiredDate.Unix()
		if ctx.byItemDate[d.Item] == nil {
			ctx.byItemDate[d.Item] = make(map[int64][]Demand)
		}
		ctx.byItemDate[d.Item][key] = append(ctx.byItemDate[d.Item][key], d)
	}
	// Stable, deterministic order within each bucket: sort by id string.
	for item, byDate := range ctx.byItemDate {
		for date, ds := range byDate {
			sort.Slice(ds, func(i, j int) bool { return ds[i].ID.String() < ds[j].ID.String() })
			ctx.byItemDate[item][date] = ds
		}
	}
	return ctx
}

// pegOrder walks candidate demands matching order's item and required
// date, consuming order.Quantity, and returns one PeggingRecord per
// matched demand. peggingType controls whether the path includes the
// immediate parent item for Dependent demands; depth is passed on to
// buildPath.
func pegOrder(ctx *peggingContext, order PlannedOrder, peggingType PeggingType, depth int) []PeggingRecord {
	candidates := ctx.byItemDate[order.Item][order.RequiredDate.Unix()]
	if len(candidates) == 0 {
		return nil
	}

	remaining := order.Quantity
	var records []PeggingRecord
	for _, d := range candidates {
		if remaining.LessThanOrEqual(Zero) {
			break
		}
		pegQty := minQty(remaining, d.Quantity)
		if pegQty.LessThanOrEqual(Zero) {
			continue
		}
		remaining = remaining.Sub(pegQty)

		path := buildPath(d, order.Item, peggingType, depth)
		records = append(records, PeggingRecord{
			DemandID: d.ID,
			Quantity: pegQty,
			Path:     path,
		})
	}
	return records
}

// buildPath assembles a pegging path for a matched demand. SingleLevel
// paths are just the pegged item. MultiLevel paths prepend the
// immediate parent item when the demand is Dependent (a one-level
// lift). source_ref encodes one ancestor per Dependent demand, so no
// path holds more than the parent and the pegged item, whatever the
// depth; a negative depth gives the pegged item alone.
func buildPath(demand Demand, item ItemId, peggingType PeggingType, depth int) []ItemId {
	if peggingType == SingleLevel || depth < 0 {
		return []ItemId{item}
	}
	if demand.Kind == Dependent && demand.SourceRef != "" {
		if parentItem, ok := parseSourceRefItem(demand.SourceRef); ok {
			return []ItemId{parentItem, item}
		}
	}
	return []ItemId{item}
}

// parseSourceRefItem extracts the parent item id from a
// "<parent_item>:<parent_order_id>" source_ref.
func parseSourceRefItem(sourceRef string) (ItemId, bool) {
	for i := len(sourceRef) - 1; i >= 0; i-- {
		if sourceRef[i] == ':' {
			return ItemId(sourceRef[:i]), true
		}
	}
	return "", false
}
