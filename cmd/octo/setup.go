package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.bug.st/serial"

	"github.com/gwillem/octo/pkg/robot"
)

type SetupCommand struct {
	From int `long:"from" default:"0" description:"First ID to scan"`
	To   int `long:"to" default:"30" description:"Last ID to scan"`
}

var baudRates = []int{2_000_000, 1_000_000, 115_200, 57_600}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Octo Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━"))
	fmt.Println()

	cfg := robot.DefaultConfig()
	if robot.ConfigExistsAt(opts.Config) {
		if existing, err := robot.LoadConfigFrom(opts.Config); err == nil {
			cfg = existing
		}
	}

	// Step 1: Pick port and bus settings
	ports := listPorts()
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		fmt.Println("Make sure the bus adapter is connected.")
		os.Exit(1)
	}
	if cfg.Port == "" || !slices.Contains(ports, cfg.Port) {
		cfg.Port = ports[0]
	}

	var portOptions []huh.Option[string]
	for _, p := range ports {
		portOptions = append(portOptions, huh.NewOption(p, p))
	}
	var baudOptions []huh.Option[int]
	for _, b := range baudRates {
		baudOptions = append(baudOptions, huh.NewOption(fmt.Sprintf("%d", b), b))
	}
	var tableOptions []huh.Option[string]
	for _, name := range robot.ControlTableNames() {
		tableOptions = append(tableOptions, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Serial port").
				Options(portOptions...).
				Value(&cfg.Port),
			huh.NewSelect[int]().
				Title("Baud rate").
				Options(baudOptions...).
				Value(&cfg.BaudRate),
			huh.NewSelect[string]().
				Title("Word order").
				Options(
					huh.NewOption("Little-endian (Dynamixel, Feetech STS)", robot.ProtocolSTS),
					huh.NewOption("Big-endian (Feetech SCS)", robot.ProtocolSCS),
				).
				Value(&cfg.Protocol),
			huh.NewSelect[string]().
				Title("Control table").
				Description("xseries: torque 64, goal 116 | mx: 24, 30 | sts: 40, 42\nDynamixel servos must be set to Protocol 1.0").
				Options(tableOptions...).
				Value(&cfg.ControlTable),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	// Step 2: Scan the bus
	fmt.Println()
	fmt.Printf("Scanning IDs %d-%d on %s...\n", c.From, c.To, cfg.Port)

	found, _, err := scanBus(cfg, c.From, c.To)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning bus: %v\n", err)
		os.Exit(1)
	}
	if len(found) == 0 {
		fmt.Println("No actuators answered.")
		fmt.Println("Check power, wiring, baud rate and word order.")
		os.Exit(1)
	}
	fmt.Println(renderFound(found, cfg.IDs))

	// Step 3: Choose the actuators to drive
	var idOptions []huh.Option[robot.ActuatorID]
	for _, f := range found {
		label := fmt.Sprintf("#%d", f.ID)
		if f.Model != "" {
			label += " (" + f.Model + ")"
		}
		opt := huh.NewOption(label, f.ID)
		if slices.Contains(cfg.IDs, f.ID) {
			opt = opt.Selected(true)
		}
		idOptions = append(idOptions, opt)
	}

	var ids []robot.ActuatorID
	pick := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[robot.ActuatorID]().
				Title("Actuators to control").
				Options(idOptions...).
				Value(&ids),
		),
	)
	if err := pick.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	if len(ids) == 0 {
		fmt.Println("No actuators selected, configuration not saved.")
		os.Exit(1)
	}
	cfg.IDs = ids

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the console with: " + headerStyle.Render("octo jog"))

	return nil
}

// listPorts returns candidate serial ports, skipping Bluetooth ports on macOS.
func listPorts() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var out []string
	for _, port := range ports {
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		out = append(out, port)
	}
	return out
}

// scanBus opens a short-timeout chain on cfg's port and pings [from, to].
// missing lists the configured IDs in that range that did not answer.
func scanBus(cfg *robot.Config, from, to int) (found []robot.Found, missing []robot.ActuatorID, err error) {
	scanCfg := *cfg
	scanCfg.TimeoutMs = 20
	if len(scanCfg.IDs) == 0 {
		scanCfg.IDs = robot.DefaultIDs()
	}

	chain, err := robot.OpenChain(&scanCfg)
	if err != nil {
		return nil, nil, err
	}
	defer chain.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	found, err = chain.Scan(ctx, robot.ActuatorID(from), robot.ActuatorID(to))
	if err != nil {
		return found, nil, err
	}
	return found, chain.Missing(found, robot.ActuatorID(from), robot.ActuatorID(to)), nil
}

// renderFound renders scan results, marking IDs present in configured.
func renderFound(found []robot.Found, configured []robot.ActuatorID) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableIDStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableYesStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)

	rows := make([][]string, 0, len(found))
	for _, f := range found {
		model := f.Model
		if model == "" {
			model = "unknown"
		}
		inConfig := ""
		if slices.Contains(configured, f.ID) {
			inConfig = "yes"
		}
		rows = append(rows, []string{
			f.ID.String(),
			model,
			fmt.Sprintf("%d", f.ModelNumber),
			inConfig,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "Model", "Model #", "Configured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableIDStyle
			case 3:
				return tableYesStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render()
}
