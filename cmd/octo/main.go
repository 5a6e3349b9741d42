package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"

	"github.com/gwillem/octo/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" default:"octo.json" description:"Configuration file"`

	Setup SetupCommand `command:"setup" description:"Pick a port, scan the bus and choose actuators"`
	Jog   JogCommand   `command:"jog" alias:"teleop" description:"Select an actuator and jog it with the arrow keys"`
	Scan  ScanCommand  `command:"scan" description:"Ping a range of IDs and list the actuators that answer"`
	Relax RelaxCommand `command:"relax" description:"Disable torque on all configured actuators"`
	Ports PortsCommand `command:"ports" description:"List serial ports"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// BusOptions override values from the configuration file.
type BusOptions struct {
	Port string `short:"p" long:"port" description:"Serial port (overrides config)"`
	Baud int    `short:"b" long:"baud" description:"Baud rate (overrides config)"`
	IDs  string `long:"ids" description:"Comma separated actuator IDs (overrides config)"`
}

var errNoConfig = errors.New("no configuration found")

// load reads the config file and applies overrides. Without a config file
// the built-in defaults are used, provided a port was given.
func (o *BusOptions) load() (*robot.Config, error) {
	var cfg *robot.Config
	if robot.ConfigExistsAt(opts.Config) {
		var err error
		cfg, err = robot.LoadConfigFrom(opts.Config)
		if err != nil {
			return nil, err
		}
	} else {
		if o.Port == "" {
			return nil, errNoConfig
		}
		cfg = robot.DefaultConfig()
	}

	if o.Port != "" {
		cfg.Port = o.Port
	}
	if o.Baud != 0 {
		cfg.BaudRate = o.Baud
	}
	if o.IDs != "" {
		ids, err := robot.ParseIDs(o.IDs)
		if err != nil {
			return nil, err
		}
		cfg.IDs = ids
	}
	return cfg, cfg.Validate()
}

// mustLoad is load for commands that cannot continue without a config.
func (o *BusOptions) mustLoad() *robot.Config {
	cfg, err := o.load()
	if errors.Is(err, errNoConfig) {
		fmt.Fprintf(os.Stderr, "No configuration found in %s. Run 'octo setup' first or pass --port.\n", opts.Config)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openChain opens the bus or exits with the driver's message.
func openChain(cfg *robot.Config) *robot.Chain {
	chain, err := robot.OpenChain(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Failed to open the port"))
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Opened %s at %d baud", cfg.Port, cfg.BaudRate)))
	return chain
}

func main() {
	parser.LongDescription = "octo - keyboard teleoperation console for serial bus servo chains"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
