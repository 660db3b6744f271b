package mrp

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nexusmrp/mrpkernel/internal/calendar"
)

// itemState tracks the per-item state machine of §4.6: Pending ->
// InProgress -> Done. Once Done, an item's orders are final.
type itemState int

const (
	statePending itemState = iota
	stateInProgress
	stateDone
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a zerolog.Logger for per-item trace output.
// Absent a call to WithLogger, the engine logs nothing (zerolog.Nop),
// keeping it silent and pure by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithItemsInParallel sets how many items within one topological
// level may be planned concurrently. The default, 1, is fully
// sequential; values >1 fan out via errgroup with a barrier at the
// end of each level, per §5's concurrency model.
func WithItemsInParallel(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.itemsInParallel = n
		}
	}
}

// WithPeggingType selects single- or multi-level pegging. Default is
// MultiLevel, matching the original source's default.
func WithPeggingType(t PeggingType) Option {
	return func(e *Engine) { e.peggingType = t }
}

// WithPeggingDepth sets the depth value passed to multi-level pegging.
// The kernel's source_ref encoding carries one ancestor per Dependent
// demand, so any depth >= 0 (including 0) yields the same one-level
// lift: the path holds at most the immediate parent. A negative depth
// yields a path of the pegged item alone.
func WithPeggingDepth(depth int) Option {
	return func(e *Engine) { e.peggingDepth = depth }
}

// Engine holds the BOM graph, per-item configuration and calendar for
// one or more Calculate runs. An Engine is safe for concurrent use by
// multiple goroutines calling Calculate on disjoint inputs — all
// mutable state lives in one run's arena (§5).
type Engine struct {
	graph    Graph
	configs  map[ItemId]ItemConfig
	calendar *calendar.Calendar

	logger          zerolog.Logger
	itemsInParallel int
	peggingType     PeggingType
	peggingDepth    int
}

// NewEngine constructs an Engine over a BOM graph, per-item configs
// and a working calendar.
func NewEngine(graph Graph, configs map[ItemId]ItemConfig, cal *calendar.Calendar, opts ...Option) *Engine {
	e := &Engine{
		graph:           graph,
		configs:         configs,
		calendar:        cal,
		logger:          zerolog.Nop(),
		itemsInParallel: 1,
		peggingType:     MultiLevel,
		peggingDepth:    1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState is the mutable arena for one Calculate call. independent,
// supplies, inventory, globalAxis and parents are populated once
// up front and only ever read afterward, so they need no locking.
// depDemands, states and allPlanned are written by processItem as
// items are processed and, once itemsInParallel>1, by more than one
// goroutine within the same level — mu guards every access to them
// from that point on.
type runState struct {
	independent map[ItemId][]Demand
	supplies    map[ItemId][]Supply
	inventory   map[ItemId]Inventory
	globalAxis  []time.Time

	// parents maps each item in the reachable subgraph to the BOM
	// parents whose explosion feeds it dependent demand. Built once by
	// topologicalOrder; used by nextLevel to decide when an item's
	// dependent demand is guaranteed final.
	parents map[ItemId][]ItemId

	mu         sync.Mutex
	depDemands map[ItemId][]Demand
	states     map[ItemId]itemState
	allPlanned []PlannedOrder
}

// Calculate runs the planning kernel once over demands, supplies and
// inventories: a single-threaded, synchronous, deterministic pure
// function of its inputs (§5) unless WithItemsInParallel(n>1) is set,
// in which case items within one topological level may run
// concurrently behind a barrier.
func (e *Engine) Calculate(ctx context.Context, demands []Demand, supplies []Supply, inventories []Inventory) (*Result, error) {
	start := timeNow()
	result := newResult()

	rs := &runState{
		independent: groupDemandsByItem(demands),
		supplies:    groupSuppliesByItem(supplies),
		inventory:   make(map[ItemId]Inventory, len(inventories)),
		depDemands:  make(map[ItemId][]Demand),
		states:      make(map[ItemId]itemState),
	}
	for _, inv := range inventories {
		rs.inventory[inv.Item] = inv
	}
	rs.globalAxis = timeAxis(demands, supplies)

	order, parents, err := e.topologicalOrder(rs.independent)
	if err != nil {
		return nil, err
	}
	rs.parents = parents

	queue := append([]ItemId{}, order...)
	queued := make(map[ItemId]bool, len(queue))
	for _, item := range queue {
		queued[item] = true
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, newError(Other, "", "calculation cancelled: %v", err)
		}

		level := e.nextLevel(queue, rs)
		queue = queue[len(level):]
		for _, item := range level {
			queued[item] = false
		}

		newItems, err := e.processLevel(rs, level, result)
		if err != nil {
			return nil, err
		}
		for _, item := range newItems {
			if rs.states[item] != stateDone && !queued[item] {
				queue = append(queue, item)
				queued[item] = true
			}
		}
	}

	e.runPegging(rs, result)

	elapsed := timeSince(start)
	result.CalculationTimeMs = &elapsed
	return result, nil
}

// nextLevel pops the longest prefix of queue whose items have no
// remaining unprocessed dependency among the items still queued: an
// item is ready once every BOM parent that feeds it dependent demand
// has already reached stateDone, so its depDemands bucket is final
// before anyone reads it. queue is topologically ordered, so that
// prefix is never empty. itemsInParallel then caps how much of the
// ready prefix is handed to processLevel in one round; the remainder
// stays ready (its parents are still Done) and is picked up next
// round. With itemsInParallel=1 this still processes one item at a
// time, matching the simple iterative work-queue model of §4.6 — the
// readiness check is what makes itemsInParallel>1 safe, since a batch
// drawn from the ready prefix can never contain both a parent and its
// own child.
//
// nextLevel is only ever called between processLevel rounds, after
// the previous round's errgroup has fully returned, so it needs no
// locking even though rs.states is otherwise mutex-guarded.
func (e *Engine) nextLevel(queue []ItemId, rs *runState) []ItemId {
	ready := func(item ItemId) bool {
		for _, p := range rs.parents[item] {
			if rs.states[p] != stateDone {
				return false
			}
		}
		return true
	}

	n := 0
	for n < len(queue) && ready(queue[n]) {
		n++
	}
	if n == 0 {
		n = 1
	}
	if e.itemsInParallel > 0 && n > e.itemsInParallel {
		n = e.itemsInParallel
	}
	return queue[:n]
}

// processLevel runs the per-item pipeline (steps 5.b-5.j of §4.6) for
// every item in level, optionally in parallel, and returns the set of
// newly-discovered child items to enqueue.
func (e *Engine) processLevel(rs *runState, level []ItemId, result *Result) ([]ItemId, error) {
	discovered := make([][]ItemId, len(level))

	if e.itemsInParallel <= 1 || len(level) <= 1 {
		for i, item := range level {
			children, err := e.processItem(rs, item, result)
			if err != nil {
				return nil, err
			}
			discovered[i] = children
		}
	} else {
		g := new(errgroup.Group)
		for i, item := range level {
			i, item := i, item
			g.Go(func() error {
				children, err := e.processItem(rs, item, result)
				if err != nil {
					return err
				}
				discovered[i] = children
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var all []ItemId
	for _, d := range discovered {
		all = append(all, d...)
	}
	return all, nil
}

// processItem runs netting, lot sizing and BOM explosion for one
// item, appending orders to result and returning newly-discovered
// child items. Safe to call concurrently for distinct items in the
// same level: every read or write of rs's shared maps/slice is taken
// under rs.mu, while the CPU-bound netting/lot-sizing/explosion work
// runs unlocked so itemsInParallel>1 actually parallelizes it.
func (e *Engine) processItem(rs *runState, item ItemId, result *Result) ([]ItemId, error) {
	rs.mu.Lock()
	if rs.states[item] == stateDone {
		rs.mu.Unlock()
		return nil, nil
	}
	rs.states[item] = stateInProgress
	demandsForItem := append(append([]Demand{}, rs.independent[item]...), rs.depDemands[item]...)
	rs.mu.Unlock()

	if len(demandsForItem) == 0 {
		rs.mu.Lock()
		rs.states[item] = stateDone
		rs.mu.Unlock()
		return nil, nil
	}

	cfg, ok := e.configs[item]
	if !ok {
		return nil, &Error{Kind: ConfigNotFound, Item: item}
	}
	if !cfg.MRPEnabled {
		rs.mu.Lock()
		rs.states[item] = stateDone
		rs.mu.Unlock()
		return nil, nil
	}

	itemSupplies := rs.supplies[item]
	axis := mergeAxes(timeAxis(demandsForItem, itemSupplies), rs.globalAxis)

	initialOnHand := Zero
	if inv, ok := rs.inventory[item]; ok {
		initialOnHand = inv.Available()
	}

	series := netRequirements(axis, demandsForItem, itemSupplies, initialOnHand, cfg.SafetyStock, cfg.AllowNegativeInventory)

	orders, err := applyLotSizing(item, series, cfg, e.calendar.SubtractWorkingDays)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().Str("item", string(item)).Int("orders", len(orders)).Msg("lot sizing complete")

	var allDeps []Demand
	for _, order := range orders {
		deps, err := explodeBOM(e.graph, order)
		if err != nil {
			return nil, err
		}
		allDeps = append(allDeps, deps...)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	warnCappedOrders(item, series, orders, cfg.MaxOrderQty, result)
	if _, inGraph := e.graph.FindNode(item); !inGraph && len(orders) > 0 {
		result.addWarning(item, "item not found in BOM graph; no dependent demands exploded", Info)
	}
	rs.allPlanned = append(rs.allPlanned, orders...)

	var children []ItemId
	for _, dep := range allDeps {
		rs.depDemands[dep.Item] = append(rs.depDemands[dep.Item], dep)
		if rs.states[dep.Item] != stateDone {
			children = append(children, dep.Item)
		}
	}

	rs.states[item] = stateDone
	return children, nil
}

// topologicalOrder produces a Kahn's-algorithm topological order (end
// items first, i.e. items with no other item depending on them appear
// first) over the subgraph reachable from the items named in
// independentByItem, via the BOM graph's parent/child edges. A cycle
// among those items is TopologicalSortError (§4.6 step 3, resolving
// Open Question 2: the original source left this a stub returning
// insertion order). It also returns, for each item in the subgraph,
// the list of BOM parents whose explosion feeds it dependent demand —
// the readiness structure nextLevel needs to batch items safely.
func (e *Engine) topologicalOrder(independentByItem map[ItemId][]Demand) ([]ItemId, map[ItemId][]ItemId, error) {
	roots := make([]ItemId, 0, len(independentByItem))
	for item := range independentByItem {
		roots = append(roots, item)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	// Discover the full reachable subgraph and each node's in-degree
	// (number of parents within the subgraph).
	inDegree := make(map[ItemId]int)
	children := make(map[ItemId][]ItemId)
	parents := make(map[ItemId][]ItemId)
	visited := make(map[ItemId]bool)

	var visit func(item ItemId) error
	visit = func(item ItemId) error {
		if visited[item] {
			return nil
		}
		visited[item] = true
		if _, ok := inDegree[item]; !ok {
			inDegree[item] = 0
		}
		node, ok := e.graph.FindNode(item)
		if !ok {
			return nil
		}
		for _, ce := range e.graph.Children(node) {
			childItem, ok := e.graph.Node(ce.Child)
			if !ok {
				continue
			}
			children[item] = append(children[item], childItem)
			parents[childItem] = append(parents[childItem], item)
			inDegree[childItem]++
			if err := visit(childItem); err != nil {
				return err
			}
		}
		return nil
	}
	for _, item := range roots {
		if err := visit(item); err != nil {
			return nil, nil, err
		}
	}

	// Kahn's algorithm: start from items with in-degree 0 (true end
	// items within the subgraph) and peel off layers. Deterministic
	// tie-break by item id.
	all := make([]ItemId, 0, len(inDegree))
	for item := range inDegree {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	remaining := make(map[ItemId]int, len(inDegree))
	for item, d := range inDegree {
		remaining[item] = d
	}

	var ready []ItemId
	for _, item := range all {
		if remaining[item] == 0 {
			ready = append(ready, item)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var sorted []ItemId
	for len(ready) > 0 {
		item := ready[0]
		ready = ready[1:]
		sorted = append(sorted, item)

		childList := append([]ItemId{}, children[item]...)
		sort.Slice(childList, func(i, j int) bool { return childList[i] < childList[j] })
		for _, child := range childList {
			remaining[child]--
			if remaining[child] == 0 {
				ready = append(ready, child)
			}
		}
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
	}

	if len(sorted) != len(all) {
		return nil, nil, newError(TopologicalSortError, "", "cycle detected among %d items", len(all)-len(sorted))
	}
	return sorted, parents, nil
}

func (e *Engine) runPegging(rs *runState, result *Result) {
	allDemands := make([]Demand, 0)
	for _, ds := range rs.independent {
		allDemands = append(allDemands, ds...)
	}
	for _, ds := range rs.depDemands {
		allDemands = append(allDemands, ds...)
	}
	ctx := buildPeggingContext(allDemands)

	sorted := append([]PlannedOrder{}, rs.allPlanned...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Item != sorted[j].Item {
			return sorted[i].Item < sorted[j].Item
		}
		return sorted[i].RequiredDate.Before(sorted[j].RequiredDate)
	})

	for _, order := range sorted {
		records := pegOrder(ctx, order, e.peggingType, e.peggingDepth)
		if len(records) == 0 {
			result.addWarning(order.Item, fmt.Sprintf("planned order %s has no matching demand at %s", order.ID, order.RequiredDate.Format("2006-01-02")), Info)
		}
		result.Pegging[order.ID] = records
	}
	result.PlannedOrders = sorted
}

func groupDemandsByItem(demands []Demand) map[ItemId][]Demand {
	out := make(map[ItemId][]Demand)
	for _, d := range demands {
		out[d.Item] = append(out[d.Item], d)
	}
	return out
}

func groupSuppliesByItem(supplies []Supply) map[ItemId][]Supply {
	out := make(map[ItemId][]Supply)
	for _, s := range supplies {
		out[s.Item] = append(out[s.Item], s)
	}
	return out
}

// warnCappedOrders surfaces a warning whenever max_qty capped an
// order's quantity below what netting required for that date (§4.4:
// legal, but a downstream shortage).
func warnCappedOrders(item ItemId, series []NetRequirement, orders []PlannedOrder, maxQty *Quantity, result *Result) {
	if maxQty == nil {
		return
	}
	plannedByDate := make(map[int64]Quantity, len(orders))
	cappedDates := make(map[int64]bool)
	for _, o := range orders {
		key := o.RequiredDate.Unix()
		plannedByDate[key] = plannedByDate[key].Add(o.Quantity)
		if o.Quantity.Equal(*maxQty) {
			cappedDates[key] = true
		}
	}
	for _, nr := range series {
		if !nr.NetRequirement.IsPositive() || !cappedDates[nr.Date.Unix()] {
			continue
		}
		planned := plannedByDate[nr.Date.Unix()]
		if planned.LessThan(nr.NetRequirement) {
			result.addWarning(item, fmt.Sprintf(
				"planned quantity %s at %s is below net requirement %s (max_qty cap)",
				planned.String(), nr.Date.Format("2006-01-02"), nr.NetRequirement.String(),
			), WarningSeverity)
		}
	}
}

func timeNow() time.Time {
	return time.Now()
}

func timeSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
