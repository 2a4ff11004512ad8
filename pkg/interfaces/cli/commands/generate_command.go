package commands

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/wareopt/pkg/domain/entities"
	"github.com/vsinha/wareopt/pkg/infrastructure/repositories/tabular"
	"github.com/vsinha/wareopt/pkg/interfaces/cli/config"
)

// GenerateConfig holds configuration for dataset generation
type GenerateConfig struct {
	SKUs        int     // Number of SKUs to generate
	Facilities  int     // Number of facilities; the first is always an expandable hub
	Groups      int     // Number of supplier groups
	Periods     int     // Periods on the horizon
	SubPeriods  int     // Sub-periods per period
	DemandScale float64 // Demand multiplier (e.g., 0.5 = light load, 3.0 = heavy load)
	OutputDir   string  // Output directory for generated files
	Workbook    bool    // Write one dataset.xlsx instead of CSV tables
	Seed        int64   // Random seed for reproducible generation
	Help        bool    // Show help
	Verbose     bool    // Verbose output
	Out         io.Writer
}

// GenerateCommand writes a synthetic warehouse network
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// generatedSKU keeps what later tables need to know about a SKU
type generatedSKU struct {
	ID          string
	StorageType entities.StorageType
	Rate        float64 // mean units per sub-period
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	if err := cmd.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	out := cmd.config.Out
	if cmd.config.Verbose {
		fmt.Fprintf(out,
			"🔧 Generating dataset with %d SKUs, %d facilities, %d supplier groups, %d×%d slots, %.1fx demand\n",
			cmd.config.SKUs,
			cmd.config.Facilities,
			cmd.config.Groups,
			cmd.config.Periods,
			cmd.config.SubPeriods,
			cmd.config.DemandScale,
		)
		fmt.Fprintf(out, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(out, "🎲 Random seed: %d\n", cmd.config.Seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables := cmd.generateTables()

	if cmd.config.Workbook {
		path := filepath.Join(cmd.config.OutputDir, "dataset.xlsx")
		if cmd.config.Verbose {
			fmt.Fprintf(out, "📗 Writing %s...\n", path)
		}
		if err := tabular.WriteWorkbook(path, tables); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	} else {
		if cmd.config.Verbose {
			for _, name := range tabular.Tables {
				fmt.Fprintf(out, "📦 Writing %s.csv (%d rows)...\n", name, len(tables[name])-1)
			}
		}
		if err := tabular.WriteCSVDir(cmd.config.OutputDir, tables); err != nil {
			return fmt.Errorf("failed to write tables: %w", err)
		}
	}

	if err := cmd.writeConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(out, "✅ Dataset generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validateInputs() error {
	c := cmd.config
	switch {
	case c.OutputDir == "":
		return fmt.Errorf("--output is required")
	case c.SKUs < 1:
		return fmt.Errorf("--skus must be at least 1, got %d", c.SKUs)
	case c.Facilities < 1:
		return fmt.Errorf("--facilities must be at least 1, got %d", c.Facilities)
	case c.Groups < 1:
		return fmt.Errorf("--groups must be at least 1, got %d", c.Groups)
	case c.Periods < 1 || c.SubPeriods < 1:
		return fmt.Errorf("--periods and --sub-periods must be at least 1")
	case c.DemandScale <= 0:
		return fmt.Errorf("--demand must be positive, got %g", c.DemandScale)
	}
	return nil
}

// generateTables builds every table, header row first
func (cmd *GenerateCommand) generateTables() map[string][][]string {
	tables := make(map[string][][]string, len(tabular.Tables))
	for _, name := range tabular.Tables {
		tables[name] = [][]string{tabular.Header(name)}
	}

	facilities := cmd.generateFacilities(tables)
	groups := cmd.generateSuppliers(tables)
	skus := cmd.generateSKUs(tables, groups)
	cmd.generateLeadTimes(tables, skus, facilities)
	cmd.generateDemand(tables, skus)
	return tables
}

// generateFacilities writes facilities, shelves and expansion tiers. The hub carries every
// storage type so each SKU has at least one home.
func (cmd *GenerateCommand) generateFacilities(tables map[string][][]string) map[string][]entities.StorageType {
	stocked := make(map[string][]entities.StorageType, cmd.config.Facilities)

	for i := 0; i < cmd.config.Facilities; i++ {
		id := cmd.facilityName(i)
		expandable := i == 0 || cmd.rand.Float64() < 0.4
		tiers := 2 + cmd.rand.Intn(2)
		ceiling := ""
		if expandable && cmd.rand.Float64() < 0.5 {
			// stays within the total tier width
			ceiling = strconv.Itoa(500*tiers - 250*cmd.rand.Intn(tiers))
		}
		tables[tabular.TableFacilities] = append(tables[tabular.TableFacilities],
			[]string{id, strconv.FormatBool(expandable), ceiling})

		types := []entities.StorageType{entities.Bin, entities.Rack}
		if i == 0 {
			types = entities.StorageTypes
		} else if cmd.rand.Float64() < 0.5 {
			types = append(types, entities.Pallet)
		}
		for _, st := range types {
			tables[tabular.TableShelves] = append(tables[tabular.TableShelves], cmd.shelfRow(id, st))
		}
		stocked[id] = types

		if !expandable {
			continue
		}
		price := 30 + cmd.rand.Intn(20)
		for tier := 1; tier <= tiers; tier++ {
			tables[tabular.TableExpansionTiers] = append(tables[tabular.TableExpansionTiers], []string{
				id, strconv.Itoa(tier), "500", strconv.Itoa(price),
			})
			price += 15 + cmd.rand.Intn(20)
		}
	}
	return stocked
}

func (cmd *GenerateCommand) facilityName(i int) string {
	locations := []string{"DC_CENTRAL", "DC_NORTH", "DC_SOUTH", "DC_EAST", "DC_WEST"}
	if i < len(locations) {
		return locations[i]
	}
	return fmt.Sprintf("DC_%02d", i+1)
}

// shelfRow sizes a shelf family: bins are small and count-limited, pallets and hazmat cages are heavy
func (cmd *GenerateCommand) shelfRow(facility string, st entities.StorageType) []string {
	var current, volume, weight int
	maxPackages, area := "", ""
	switch st {
	case entities.Bin:
		current, volume, weight = 40+cmd.rand.Intn(80), 10, 200
		maxPackages = strconv.Itoa(50 + 10*cmd.rand.Intn(6))
		area = "10"
	case entities.Rack:
		current, volume, weight = 20+cmd.rand.Intn(40), 100, 4000
		area = "50"
	case entities.Pallet:
		current, volume, weight = 10+cmd.rand.Intn(30), 250, 8000
		area = "75"
	default:
		current, volume, weight = 2+cmd.rand.Intn(6), 60, 3000
		maxPackages = "12"
		area = "40"
	}
	return []string{
		facility, st.String(), strconv.Itoa(current), strconv.Itoa(volume), strconv.Itoa(weight), maxPackages, area,
	}
}

func (cmd *GenerateCommand) generateSuppliers(tables map[string][][]string) []string {
	groups := make([]string, cmd.config.Groups)
	for i := range groups {
		groups[i] = fmt.Sprintf("SUPPLIER_%c", 'A'+rune(i%26))
		if i >= 26 {
			groups[i] = fmt.Sprintf("SUPPLIER_%03d", i+1)
		}

		// half the groups ship on the default truck
		weight, volume := "", ""
		if cmd.rand.Float64() < 0.5 {
			weight = strconv.Itoa(20000 + 5000*cmd.rand.Intn(5))
			volume = strconv.Itoa(1800 + 300*cmd.rand.Intn(7))
		}
		maxDispatches := ""
		if cmd.rand.Float64() < 0.3 {
			maxDispatches = strconv.Itoa(1 + cmd.rand.Intn(3))
		}
		tables[tabular.TableSuppliers] = append(tables[tabular.TableSuppliers],
			[]string{groups[i], weight, volume, maxDispatches})
	}
	return groups
}

func (cmd *GenerateCommand) generateSKUs(tables map[string][][]string, groups []string) []generatedSKU {
	descriptions := map[entities.StorageType][]string{
		entities.Bin:    {"Hex Bolt", "Washer", "O-Ring", "Fuse", "Cable Tie"},
		entities.Rack:   {"Panel", "Filter", "Bearing Kit", "Hose Assembly"},
		entities.Pallet: {"Pump", "Motor", "Gearbox"},
		entities.Hazmat: {"Solvent", "Lithium Pack", "Adhesive"},
	}
	weights := []entities.StorageType{
		entities.Bin, entities.Bin, entities.Bin, entities.Rack, entities.Rack, entities.Pallet, entities.Hazmat,
	}

	skus := make([]generatedSKU, cmd.config.SKUs)
	for i := range skus {
		st := weights[cmd.rand.Intn(len(weights))]
		names := descriptions[st]
		id := fmt.Sprintf("SKU_%05d", i+1)

		var bulkVolume, bulkWeight float64
		ratio := 1
		switch st {
		case entities.Bin:
			bulkVolume, bulkWeight = 1+cmd.rand.Float64()*2, 10+cmd.rand.Float64()*40
			ratio = []int{10, 25, 50, 100}[cmd.rand.Intn(4)]
		case entities.Rack:
			bulkVolume, bulkWeight = 6+cmd.rand.Float64()*12, 30+cmd.rand.Float64()*80
			ratio = []int{1, 2, 4, 6}[cmd.rand.Intn(4)]
		default:
			bulkVolume, bulkWeight = 20+cmd.rand.Float64()*40, 100+cmd.rand.Float64()*400
		}
		// loose units pack less densely than the supplier's case
		unitVolume := bulkVolume / float64(ratio) * 1.2
		unitWeight := bulkWeight / float64(ratio)
		eligible := ratio > 1 && cmd.rand.Float64() < 0.5

		group := groups[cmd.rand.Intn(len(groups))]
		if cmd.rand.Float64() < 0.15 {
			group = ""
		}
		coverage := "Domestic"
		if cmd.rand.Float64() < 0.3 {
			coverage = "International"
		}

		tables[tabular.TableSKUs] = append(tables[tabular.TableSKUs], []string{
			id,
			names[cmd.rand.Intn(len(names))],
			st.String(),
			formatFloat(bulkVolume),
			formatFloat(bulkWeight),
			formatFloat(unitVolume),
			formatFloat(unitWeight),
			strconv.Itoa(ratio),
			strconv.FormatBool(eligible),
			group,
			coverage,
		})
		skus[i] = generatedSKU{ID: id, StorageType: st, Rate: (5 + cmd.rand.Float64()*45) * float64(ratio)}
	}
	return skus
}

// generateLeadTimes stocks each SKU at one to three facilities that shelve its storage type
func (cmd *GenerateCommand) generateLeadTimes(
	tables map[string][][]string,
	skus []generatedSKU,
	stocked map[string][]entities.StorageType,
) {
	for _, sku := range skus {
		var candidates []string
		for i := 0; i < cmd.config.Facilities; i++ {
			id := cmd.facilityName(i)
			for _, st := range stocked[id] {
				if st == sku.StorageType {
					candidates = append(candidates, id)
					break
				}
			}
		}
		cmd.rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		for _, facility := range candidates[:min(len(candidates), 1+cmd.rand.Intn(3))] {
			row := []string{sku.ID, facility, strconv.Itoa(1 + cmd.rand.Intn(3)), "sub_periods"}
			if cmd.rand.Float64() < 0.3 {
				row[2], row[3] = strconv.Itoa(7+cmd.rand.Intn(15)), "calendar_days"
			}
			tables[tabular.TableLeadTimes] = append(tables[tabular.TableLeadTimes], row)
		}
	}
}

// generateDemand writes either one row per period, spread by the loader, or explicit
// sub-period rows. The first period stays empty so stock can arrive before it is needed.
func (cmd *GenerateCommand) generateDemand(tables map[string][][]string, skus []generatedSKU) {
	for _, sku := range skus {
		spread := cmd.rand.Float64() < 0.5
		for period := 2; period <= cmd.config.Periods; period++ {
			if spread {
				qty := float64(cmd.config.SubPeriods) * cmd.noisyRate(sku.Rate)
				tables[tabular.TableDemand] = append(tables[tabular.TableDemand],
					[]string{sku.ID, strconv.Itoa(period), "", formatFloat(qty)})
				continue
			}
			for sub := 1; sub <= cmd.config.SubPeriods; sub++ {
				tables[tabular.TableDemand] = append(tables[tabular.TableDemand],
					[]string{sku.ID, strconv.Itoa(period), strconv.Itoa(sub), formatFloat(cmd.noisyRate(sku.Rate))})
			}
		}
	}
}

func (cmd *GenerateCommand) noisyRate(rate float64) float64 {
	return float64(int(rate * cmd.config.DemandScale * (0.5 + cmd.rand.Float64())))
}

// writeConfig writes a wareopt.yaml that plans the generated dataset as-is
func (cmd *GenerateCommand) writeConfig() error {
	dir, err := filepath.Abs(cmd.config.OutputDir)
	if err != nil {
		return err
	}

	cfg := config.Defaults()
	cfg.Calendar = entities.Calendar{SubPeriodsPerPeriod: cmd.config.SubPeriods, Periods: cmd.config.Periods}
	if cmd.config.Workbook {
		cfg.Data.Workbook = filepath.Join(dir, "dataset.xlsx")
	} else {
		cfg.Data.Dir = dir
	}
	cfg.Coverage = map[string]float64{"Domestic": 30, "International": 60}
	cfg.Settings.ShelfFillCap = 0.93
	cfg.Sweep = config.SweepConfig{
		Prefix: "sweep",
		Grid:   map[string][]float64{"Domestic": {15, 30, 45}, "International": {30, 60}},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(cmd.config.OutputDir, "wareopt.yaml"), data, 0644)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.config.Out, `Warehouse Dataset Generator

USAGE:
    wareopt generate [OPTIONS]

OPTIONS:
    --skus <N>          Number of SKUs to generate (default: 50)
    --facilities <N>    Number of facilities (default: 3)
    --groups <N>        Number of supplier groups (default: 2)
    --periods <N>       Periods on the horizon (default: 6)
    --sub-periods <N>   Sub-periods per period (default: 4)
    --demand <F>        Demand multiplier (e.g., 0.5 = light load, 3.0 = heavy load) (default: 1.0)
    --output <DIR>      Output directory for generated files (required)
    --xlsx              Write one dataset.xlsx workbook instead of CSV tables
    --seed <N>          Random seed for reproducible generation (optional)
    --verbose           Enable verbose output
    --help              Show this help message

The output directory also receives a wareopt.yaml that points at the generated tables.

EXAMPLES:
    # Generate a small network
    wareopt generate --skus 20 --facilities 2 --output ./small_network

    # Generate a heavily loaded network as a workbook
    wareopt generate --skus 500 --facilities 5 --demand 3.0 --xlsx --output ./peak_season --verbose

    # Generate a reproducible network and plan it
    wareopt generate --skus 100 --seed 12345 --output ./repro
    wareopt plan --config ./repro/wareopt.yaml`)
}
