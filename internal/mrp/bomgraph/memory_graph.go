// Package bomgraph provides an in-memory arena implementation of
// mrp.Graph, the kernel's consumed BOM graph interface. It is a
// reference implementation for tests and the CLI, not part of the
// kernel itself.
package bomgraph

import "github.com/nexusmrp/mrpkernel/internal/mrp"

// MemoryGraph is an in-memory arena BOM graph: items live in a slice,
// indexed by a part-number map, with each node's outgoing edges
// stored alongside it. Traversal uses node indices, never shared
// ownership, per the "cyclic graphs" design note.
type MemoryGraph struct {
	items    []mrp.ItemId
	indexOf  map[mrp.ItemId]int
	outgoing [][]mrp.ChildEdge
}

// NewMemoryGraph returns an empty graph ready for AddItem/AddEdge
// calls.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		indexOf: make(map[mrp.ItemId]int),
	}
}

// AddItem registers an item as a node, if not already present, and
// returns its NodeRef.
func (g *MemoryGraph) AddItem(item mrp.ItemId) mrp.NodeRef {
	if idx, ok := g.indexOf[item]; ok {
		return idx
	}
	idx := len(g.items)
	g.items = append(g.items, item)
	g.outgoing = append(g.outgoing, nil)
	g.indexOf[item] = idx
	return idx
}

// AddEdge adds a directed edge parent -> child with the given
// per-assembly quantity, registering either endpoint as a node if
// needed.
func (g *MemoryGraph) AddEdge(parent, child mrp.ItemId, qtyPer mrp.Quantity) {
	g.AddEdgeFull(parent, child, mrp.Edge{QuantityPer: qtyPer})
}

// AddEdgeFull adds a directed edge with the full Edge payload
// (quantity-per, scrap factor, phantom flag).
func (g *MemoryGraph) AddEdgeFull(parent, child mrp.ItemId, edge mrp.Edge) {
	pIdx := g.AddItem(parent).(int)
	cIdx := g.AddItem(child).(int)
	g.outgoing[pIdx] = append(g.outgoing[pIdx], mrp.ChildEdge{Child: cIdx, Edge: edge})
}

// FindNode implements mrp.Graph.
func (g *MemoryGraph) FindNode(item mrp.ItemId) (mrp.NodeRef, bool) {
	idx, ok := g.indexOf[item]
	if !ok {
		return nil, false
	}
	return idx, true
}

// Children implements mrp.Graph.
func (g *MemoryGraph) Children(node mrp.NodeRef) []mrp.ChildEdge {
	idx, ok := node.(int)
	if !ok || idx < 0 || idx >= len(g.outgoing) {
		return nil
	}
	return g.outgoing[idx]
}

// Node implements mrp.Graph.
func (g *MemoryGraph) Node(node mrp.NodeRef) (mrp.ItemId, bool) {
	idx, ok := node.(int)
	if !ok || idx < 0 || idx >= len(g.items) {
		return "", false
	}
	return g.items[idx], true
}

var _ mrp.Graph = (*MemoryGraph)(nil)
