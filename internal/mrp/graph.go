package mrp

// NodeRef is an opaque handle to a node in a Graph, returned by
// FindNode and passed to Children/Node. Implementations are free to
// use array indices, pointers, or any other representation.
type NodeRef any

// Edge describes one outgoing BOM edge: the quantity of the child
// consumed per unit of the parent.
//
// ScrapFactor and Phantom are carried for forward compatibility but
// are not read by the kernel's explosion step (see DESIGN.md Open
// Question 4) — a caller wanting scrap/phantom handling must
// pre-process the BOM before constructing the graph.
type Edge struct {
	QuantityPer Quantity
	ScrapFactor Quantity
	Phantom     bool
}

// ChildEdge pairs a child node reference with the edge data connecting
// it to its parent.
type ChildEdge struct {
	Child NodeRef
	Edge  Edge
}

// Graph is the BOM graph the kernel consumes: read-only, not
// specified here, and must be acyclic. The kernel detects cycles
// among items it actually visits rather than trusting this contract
// blindly (invariant 7).
type Graph interface {
	FindNode(item ItemId) (NodeRef, bool)
	Children(node NodeRef) []ChildEdge
	Node(node NodeRef) (item ItemId, ok bool)
}
