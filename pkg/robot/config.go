package robot

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Bus protocol names as stored in the config file.
const (
	ProtocolSTS = "sts" // little-endian words
	ProtocolSCS = "scs" // big-endian words
)

// Config holds the bus and chain configuration
type Config struct {
	Port         string       `json:"port"`
	BaudRate     int          `json:"baud_rate"`
	Protocol     string       `json:"protocol"`
	TimeoutMs    int          `json:"timeout_ms"`
	ControlTable string       `json:"control_table"`
	IDs          []ActuatorID `json:"ids"`
	Range        Range        `json:"range"`
	Step         int          `json:"step"`
}

// DefaultConfig returns the settings of the reference rig. Port is left empty.
func DefaultConfig() *Config {
	return &Config{
		BaudRate:     2_000_000,
		Protocol:     ProtocolSTS,
		TimeoutMs:    100,
		ControlTable: XSeries.Name,
		IDs:          DefaultIDs(),
		Range:        DefaultRange,
		Step:         10,
	}
}

// Validate checks the config before the bus is opened.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("no serial port configured"))
	}
	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("invalid baud rate %d", c.BaudRate))
	}
	if _, err := c.busProtocol(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := LookupControlTable(c.ControlTable); !ok {
		errs = append(errs, fmt.Errorf("unknown control table %q (have %v)", c.ControlTable, ControlTableNames()))
	}
	if err := checkIDs(c.IDs); err != nil {
		errs = append(errs, err)
	}
	if c.Range.Min < 0 || c.Range.Min >= c.Range.Max {
		errs = append(errs, fmt.Errorf("invalid position range [%d, %d]", c.Range.Min, c.Range.Max))
	} else if table, ok := LookupControlTable(c.ControlTable); ok {
		if _, err := EncodeValue(binary.LittleEndian, table.GoalPosition, c.Range.Max); err != nil {
			errs = append(errs, fmt.Errorf("position range [%d, %d] does not fit control table %s: %w", c.Range.Min, c.Range.Max, table.Name, err))
		}
	}
	if c.Step <= 0 {
		errs = append(errs, fmt.Errorf("invalid jog step %d", c.Step))
	}
	return errors.Join(errs...)
}

// Table returns the configured control table, falling back to XSeries.
func (c *Config) Table() ControlTable {
	if t, ok := LookupControlTable(c.ControlTable); ok {
		return t
	}
	return XSeries
}

// Timeout returns the bus transaction timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c *Config) busProtocol() (int, error) {
	switch c.Protocol {
	case ProtocolSTS, "":
		return feetech.ProtocolSTS, nil
	case ProtocolSCS:
		return feetech.ProtocolSCS, nil
	}
	return 0, fmt.Errorf("unknown protocol %q", c.Protocol)
}

// LoadConfigFrom loads configuration from a specific file. Fields missing
// from the file keep their DefaultConfig values.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExistsAt returns true if path exists
func ConfigExistsAt(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
