// Package scenario loads a directory of CSV files into the inputs
// Engine.Calculate expects: a BOM graph, per-item configs, demands,
// supplies and inventory records. Column layout is grounded in
// vsinha-mrp's csv.Loader, adapted from its part/BOM-line shape to
// this kernel's item/demand/supply domain.
package scenario

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nexusmrp/mrpkernel/internal/mrp"
	"github.com/nexusmrp/mrpkernel/internal/mrp/bomgraph"
)

// scenarioNamespace seeds the deterministic row ids newDeterministicID
// derives, so re-running the same scenario file produces identical
// demand and supply ids across loads.
var scenarioNamespace = uuid.MustParse("6f3a9e2e-6e8a-4b38-9a9e-2f6a2f6a2f6a")

// Scenario is the fully-loaded set of Engine.Calculate inputs.
type Scenario struct {
	Graph       *bomgraph.MemoryGraph
	Configs     map[mrp.ItemId]mrp.ItemConfig
	Demands     []mrp.Demand
	Supplies    []mrp.Supply
	Inventories []mrp.Inventory
}

// Loader reads a scenario directory's items.csv, bom.csv, demands.csv,
// supplies.csv and inventory.csv files.
type Loader struct{}

// NewLoader returns a ready-to-use Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all five scenario files from dir. Only items.csv is
// required; bom.csv, demands.csv, supplies.csv and inventory.csv are
// optional and their absence is not an error.
func (l *Loader) Load(dir string) (*Scenario, error) {
	configs, err := l.loadItems(filepath.Join(dir, "items.csv"))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	graph := bomgraph.NewMemoryGraph()
	for item := range configs {
		graph.AddItem(item)
	}
	if err := l.loadBOM(filepath.Join(dir, "bom.csv"), graph); err != nil {
		return nil, fmt.Errorf("loading bom: %w", err)
	}

	demands, err := l.loadDemands(filepath.Join(dir, "demands.csv"))
	if err != nil {
		return nil, fmt.Errorf("loading demands: %w", err)
	}

	supplies, err := l.loadSupplies(filepath.Join(dir, "supplies.csv"))
	if err != nil {
		return nil, fmt.Errorf("loading supplies: %w", err)
	}

	inventories, err := l.loadInventory(filepath.Join(dir, "inventory.csv"))
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	return &Scenario{
		Graph:       graph,
		Configs:     configs,
		Demands:     demands,
		Supplies:    supplies,
		Inventories: inventories,
	}, nil
}

var itemsHeader = []string{
	"item_id", "lead_time_days", "lot_sizing_rule", "fixed_lot_size",
	"min_order_qty", "max_order_qty", "order_multiple", "safety_stock",
	"procurement", "mrp_enabled", "allow_negative_inventory",
}

func (l *Loader) loadItems(path string) (map[mrp.ItemId]mrp.ItemConfig, error) {
	records, err := readCSV(path, itemsHeader)
	if err != nil {
		return nil, err
	}

	configs := make(map[mrp.ItemId]mrp.ItemConfig, len(records))
	for i, record := range records {
		cfg := mrp.ItemConfig{Item: mrp.ItemId(record[0])}

		leadTime, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid lead_time_days %q", i+2, record[1])
		}
		cfg.LeadTimeDays = leadTime

		rule, err := parseLotSizingRule(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cfg.LotSizingRule = rule

		if q, ok, err := parseOptionalDecimal(record[3]); err != nil {
			return nil, fmt.Errorf("row %d: invalid fixed_lot_size %q", i+2, record[3])
		} else if ok {
			cfg.FixedLotSize = &q
		}
		if q, ok, err := parseOptionalDecimal(record[4]); err != nil {
			return nil, fmt.Errorf("row %d: invalid min_order_qty %q", i+2, record[4])
		} else if ok {
			cfg.MinOrderQty = &q
		}
		if q, ok, err := parseOptionalDecimal(record[5]); err != nil {
			return nil, fmt.Errorf("row %d: invalid max_order_qty %q", i+2, record[5])
		} else if ok {
			cfg.MaxOrderQty = &q
		}
		if q, ok, err := parseOptionalDecimal(record[6]); err != nil {
			return nil, fmt.Errorf("row %d: invalid order_multiple %q", i+2, record[6])
		} else if ok {
			cfg.OrderMultiple = &q
		}

		safetyStock, err := decimal.NewFromString(emptyToZero(record[7]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid safety_stock %q", i+2, record[7])
		}
		cfg.SafetyStock = safetyStock

		procurement, err := parseProcurement(record[8])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cfg.Procurement = procurement

		mrpEnabled, err := strconv.ParseBool(record[9])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid mrp_enabled %q", i+2, record[9])
		}
		cfg.MRPEnabled = mrpEnabled

		allowNegative, err := strconv.ParseBool(record[10])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid allow_negative_inventory %q", i+2, record[10])
		}
		cfg.AllowNegativeInventory = allowNegative

		configs[cfg.Item] = cfg
	}
	return configs, nil
}

var bomHeader = []string{"parent_item", "child_item", "qty_per"}

func (l *Loader) loadBOM(path string, graph *bomgraph.MemoryGraph) error {
	records, err := readCSVOptional(path, bomHeader)
	if err != nil {
		return err
	}
	for i, record := range records {
		qtyPer, err := decimal.NewFromString(record[2])
		if err != nil {
			return fmt.Errorf("row %d: invalid qty_per %q", i+2, record[2])
		}
		graph.AddEdge(mrp.ItemId(record[0]), mrp.ItemId(record[1]), qtyPer)
	}
	return nil
}

var demandsHeader = []string{"item_id", "quantity", "required_date", "kind", "priority"}

func (l *Loader) loadDemands(path string) ([]mrp.Demand, error) {
	records, err := readCSVOptional(path, demandsHeader)
	if err != nil {
		return nil, err
	}
	demands := make([]mrp.Demand, 0, len(records))
	for i, record := range records {
		quantity, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q", i+2, record[1])
		}
		requiredDate, err := time.Parse("2006-01-02", record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid required_date %q", i+2, record[2])
		}
		kind, err := parseDemandKind(record[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		priority, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid priority %q", i+2, record[4])
		}
		demands = append(demands, mrp.Demand{
			ID:           newDeterministicID(record[0], i),
			Item:         mrp.ItemId(record[0]),
			Quantity:     quantity,
			RequiredDate: requiredDate,
			Kind:         kind,
			Priority:     priority,
		})
	}
	return demands, nil
}

var suppliesHeader = []string{"item_id", "quantity", "available_date", "kind", "is_firm"}

func (l *Loader) loadSupplies(path string) ([]mrp.Supply, error) {
	records, err := readCSVOptional(path, suppliesHeader)
	if err != nil {
		return nil, err
	}
	supplies := make([]mrp.Supply, 0, len(records))
	for i, record := range records {
		quantity, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q", i+2, record[1])
		}
		availableDate, err := time.Parse("2006-01-02", record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid available_date %q", i+2, record[2])
		}
		kind, err := parseSupplyKind(record[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		isFirm, err := strconv.ParseBool(record[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid is_firm %q", i+2, record[4])
		}
		supplies = append(supplies, mrp.Supply{
			ID:            newDeterministicID(record[0], i),
			Item:          mrp.ItemId(record[0]),
			Quantity:      quantity,
			AvailableDate: availableDate,
			Kind:          kind,
			IsFirm:        isFirm,
		})
	}
	return supplies, nil
}

var inventoryHeader = []string{"item_id", "on_hand", "safety_stock", "allocated"}

func (l *Loader) loadInventory(path string) ([]mrp.Inventory, error) {
	records, err := readCSVOptional(path, inventoryHeader)
	if err != nil {
		return nil, err
	}
	inventories := make([]mrp.Inventory, 0, len(records))
	for i, record := range records {
		onHand, err := decimal.NewFromString(record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid on_hand %q", i+2, record[1])
		}
		safetyStock, err := decimal.NewFromString(emptyToZero(record[2]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid safety_stock %q", i+2, record[2])
		}
		allocated, err := decimal.NewFromString(emptyToZero(record[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid allocated %q", i+2, record[3])
		}
		inventories = append(inventories, mrp.Inventory{
			Item:        mrp.ItemId(record[0]),
			OnHand:      onHand,
			SafetyStock: safetyStock,
			Allocated:   allocated,
		})
	}
	return inventories, nil
}

func readCSV(path string, expectedHeader []string) ([][]string, error) {
	records, err := readCSVOptional(path, expectedHeader)
	if err != nil {
		return nil, err
	}
	if records == nil {
		return nil, fmt.Errorf("required file %s does not exist", path)
	}
	return records, nil
}

// readCSVOptional returns nil, nil when path does not exist.
func readCSVOptional(path string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !validateHeader(rows[0], expectedHeader) {
		return nil, fmt.Errorf("%s header mismatch: expected %v, got %v", path, expectedHeader, rows[0])
	}
	return rows[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func emptyToZero(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return s
}

func parseOptionalDecimal(s string) (decimal.Decimal, bool, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Decimal{}, false, nil
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return q, true, nil
}

func parseLotSizingRule(s string) (mrp.LotSizingRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lotforlot":
		return mrp.LotForLot, nil
	case "fixedorderquantity":
		return mrp.FixedOrderQuantity, nil
	case "economicorderquantity":
		return mrp.EconomicOrderQuantity, nil
	case "periodorderquantity":
		return mrp.PeriodOrderQuantity, nil
	case "minmax":
		return mrp.MinMax, nil
	default:
		return 0, fmt.Errorf("invalid lot_sizing_rule %q", s)
	}
}

func parseProcurement(s string) (mrp.ProcurementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return mrp.Buy, nil
	case "make":
		return mrp.Make, nil
	case "transfer":
		return mrp.TransferProcurement, nil
	default:
		return 0, fmt.Errorf("invalid procurement %q", s)
	}
}

func parseDemandKind(s string) (mrp.DemandKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "salesorder":
		return mrp.SalesOrder, nil
	case "forecast":
		return mrp.Forecast, nil
	case "safetystock":
		return mrp.SafetyStockDemand, nil
	default:
		return 0, fmt.Errorf("invalid demand kind %q (dependent demands are kernel-generated, not loaded)", s)
	}
}

func parseSupplyKind(s string) (mrp.SupplyKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onhand":
		return mrp.OnHand, nil
	case "purchaseorder":
		return mrp.PurchaseOrder, nil
	case "workorder":
		return mrp.WorkOrder, nil
	case "transfer":
		return mrp.Transfer, nil
	default:
		return 0, fmt.Errorf("invalid supply kind %q", s)
	}
}

// newDeterministicID derives a stable UUID from an item and row index,
// keeping CLI output reproducible across repeated loads of the same
// scenario file.
func newDeterministicID(item string, row int) uuid.UUID {
	return uuid.NewSHA1(scenarioNamespace, []byte(fmt.Sprintf("%s:%d", item, row)))
}
