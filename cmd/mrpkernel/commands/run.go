package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nexusmrp/mrpkernel/internal/calendar"
	"github.com/nexusmrp/mrpkernel/internal/mrp"
	"github.com/nexusmrp/mrpkernel/internal/scenario"
)

var (
	scenarioDir  string
	outputFormat string
	parallelism  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a planning pass over a scenario directory",
	Long: `run reads items.csv, bom.csv, demands.csv, supplies.csv and
inventory.csv from --scenario, runs the planning kernel once, and
prints a text or JSON report of the resulting planned orders and
warnings. Pegging records are not included in either report.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&scenarioDir, "scenario", "", "directory containing the scenario CSV files (required)")
	runCmd.Flags().StringVar(&outputFormat, "format", "text", "report format: text or json")
	runCmd.Flags().IntVar(&parallelism, "parallel", 1, "items planned concurrently within one BOM level")
	_ = runCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	loader := scenario.NewLoader()
	sc, err := loader.Load(scenarioDir)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	cal := resolveCalendar(cfg.Calendar)

	engine := mrp.NewEngine(sc.Graph, sc.Configs, cal,
		mrp.WithLogger(log.Logger),
		mrp.WithItemsInParallel(parallelism),
		mrp.WithPeggingDepth(cfg.PeggingDepth),
	)

	result, err := engine.Calculate(context.Background(), sc.Demands, sc.Supplies, sc.Inventories)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	switch outputFormat {
	case "text":
		printTextReport(result)
	case "json":
		return printJSONReport(result)
	default:
		return fmt.Errorf("unsupported output format %q (expected text or json)", outputFormat)
	}
	return nil
}

func resolveCalendar(name string) *calendar.Calendar {
	switch name {
	case "", "24x7":
		return calendar.New24x7()
	case "standard", "mon-fri":
		return calendar.NewStandardWeek(name)
	default:
		log.Warn().Str("calendar", name).Msg("unrecognized calendar, falling back to 24x7")
		return calendar.New24x7()
	}
}

func printTextReport(result *mrp.Result) {
	orders := append([]mrp.PlannedOrder{}, result.PlannedOrders...)
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].Item != orders[j].Item {
			return orders[i].Item < orders[j].Item
		}
		return orders[i].RequiredDate.Before(orders[j].RequiredDate)
	})

	fmt.Println("PLANNED ORDERS")
	fmt.Println("--------------")
	for _, o := range orders {
		fmt.Printf("%-20s qty=%-10s required=%s order=%s type=%s\n",
			o.Item, o.Quantity.String(),
			o.RequiredDate.Format("2006-01-02"), o.OrderDate.Format("2006-01-02"),
			o.Type)
	}

	if len(result.Warnings) > 0 {
		fmt.Println()
		fmt.Println("WARNINGS")
		fmt.Println("--------")
		for _, w := range result.Warnings {
			fmt.Printf("[%s] %-20s %s\n", w.Severity, w.Item, w.Message)
		}
	}

	if result.CalculationTimeMs != nil {
		fmt.Println()
		fmt.Printf("calculated in %dms\n", *result.CalculationTimeMs)
	}
}

type jsonReport struct {
	GeneratedAt   string             `json:"generated_at"`
	PlannedOrders []mrp.PlannedOrder `json:"planned_orders"`
	Warnings      []mrp.Warning      `json:"warnings"`
	CalcTimeMs    *int64             `json:"calculation_time_ms,omitempty"`
}

func printJSONReport(result *mrp.Result) error {
	report := jsonReport{
		GeneratedAt:   time.Now().Format(time.RFC3339),
		PlannedOrders: result.PlannedOrders,
		Warnings:      result.Warnings,
		CalcTimeMs:    result.CalculationTimeMs,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
