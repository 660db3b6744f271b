package mrp

import (
	"fmt"

	"github.com/google/uuid"
)

// explodeBOM emits dependent demands for every child of order.Item in
// graph. Absent or childless parents emit nothing — this is legal,
// not an error (§4.5 step 1).
func explodeBOM(graph Graph, order PlannedOrder) ([]Demand, error) {
	node, ok := graph.FindNode(order.Item)
	if !ok {
		return nil, nil
	}

	children := graph.Children(node)
	if len(children) == 0 {
		return nil, nil
	}

	demands := make([]Demand, 0, len(children))
	for _, ce := range children {
		childItem, ok := graph.Node(ce.Child)
		if !ok {
			return nil, newError(BomExplosionError, order.Item, "child node lookup failed for %s", order.Item)
		}
		demands = append(demands, Demand{
			ID:           uuid.New(),
			Item:         childItem,
			Quantity:     order.Quantity.Mul(ce.Edge.QuantityPer),
			RequiredDate: order.OrderDate,
			Kind:         Dependent,
			SourceRef:    fmt.Sprintf("%s:%s", order.Item, order.ID),
			Priority:     5,
		})
	}
	return demands, nil
}
