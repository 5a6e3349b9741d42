package robot

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Chain is an open bus plus the actuator IDs driven on it.
type Chain struct {
	bus   *feetech.Bus
	table ControlTable
	ids   []ActuatorID
}

// Result is the outcome of a per-actuator operation.
type Result struct {
	ID  ActuatorID
	Err error
}

// Found is an actuator that answered a ping.
type Found struct {
	ID          ActuatorID
	ModelNumber int
	Model       string
}

// OpenChain validates cfg and opens the serial bus.
func OpenChain(cfg *Config) (*Chain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	proto, _ := cfg.busProtocol()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Protocol: proto,
		Timeout:  cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}
	return NewChain(bus, cfg), nil
}

// NewChain wraps an already open bus. The chain takes ownership of bus.
func NewChain(bus *feetech.Bus, cfg *Config) *Chain {
	ids := make([]ActuatorID, len(cfg.IDs))
	copy(ids, cfg.IDs)
	return &Chain{
		bus:   bus,
		table: cfg.Table(),
		ids:   ids,
	}
}

// Close closes the chain's bus connection.
func (c *Chain) Close() error {
	return c.bus.Close()
}

// IDs returns the configured actuator IDs in chain order.
func (c *Chain) IDs() []ActuatorID {
	ids := make([]ActuatorID, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// Table returns the control table in use.
func (c *Chain) Table() ControlTable {
	return c.table
}

// SetTorque enables or disables torque on one actuator.
func (c *Chain) SetTorque(ctx context.Context, id ActuatorID, on bool) error {
	var val byte
	if on {
		val = 1
	}
	op := "torque disable"
	if on {
		op = "torque enable"
	}
	if err := c.bus.WriteRegister(ctx, int(id), c.table.TorqueEnable.Address, []byte{val}); err != nil {
		return &ActuatorError{ID: id, Op: op, Err: err}
	}
	return nil
}

// EnableAll enables torque on every actuator, continuing past failures.
func (c *Chain) EnableAll(ctx context.Context) []Result {
	return c.torqueAll(ctx, true)
}

// DisableAll disables torque on every actuator, continuing past failures.
func (c *Chain) DisableAll(ctx context.Context) []Result {
	return c.torqueAll(ctx, false)
}

func (c *Chain) torqueAll(ctx context.Context, on bool) []Result {
	results := make([]Result, 0, len(c.ids))
	for _, id := range c.ids {
		results = append(results, Result{ID: id, Err: c.SetTorque(ctx, id, on)})
	}
	return results
}

// SetGoalPosition writes a raw goal position to one actuator.
func (c *Chain) SetGoalPosition(ctx context.Context, id ActuatorID, position int) error {
	data, err := EncodeValue(c.bus.Protocol().ByteOrder(), c.table.GoalPosition, position)
	if err != nil {
		return &ActuatorError{ID: id, Op: "goal position", Err: err}
	}
	if err := c.bus.WriteRegister(ctx, int(id), c.table.GoalPosition.Address, data); err != nil {
		return &ActuatorError{ID: id, Op: "goal position", Err: err}
	}
	return nil
}

// PresentPosition reads the current raw position of one actuator.
func (c *Chain) PresentPosition(ctx context.Context, id ActuatorID) (int, error) {
	reg := c.table.PresentPosition
	data, err := c.bus.ReadRegister(ctx, int(id), reg.Address, reg.Size)
	if err != nil {
		return 0, &ActuatorError{ID: id, Op: "present position", Err: err}
	}
	pos, err := DecodeValue(c.bus.Protocol().ByteOrder(), reg, data)
	if err != nil {
		return 0, &ActuatorError{ID: id, Op: "present position", Err: err}
	}
	return pos, nil
}

// Scan pings every ID in [from, to] and returns those that answer.
func (c *Chain) Scan(ctx context.Context, from, to ActuatorID) ([]Found, error) {
	servos, err := c.bus.Scan(ctx, int(from), int(to))
	found := make([]Found, 0, len(servos))
	for _, s := range servos {
		f := Found{ID: ActuatorID(s.ID), ModelNumber: s.ModelNumber}
		if s.Model != nil {
			f.Model = s.Model.Name
		}
		found = append(found, f)
	}
	if err != nil {
		return found, fmt.Errorf("scan %d-%d: %w", from, to, err)
	}
	return found, nil
}

// Missing returns the configured IDs in [from, to] that are absent from found.
func (c *Chain) Missing(found []Found, from, to ActuatorID) []ActuatorID {
	present := make(map[ActuatorID]bool, len(found))
	for _, f := range found {
		present[f.ID] = true
	}
	var missing []ActuatorID
	for _, id := range c.ids {
		if id >= from && id <= to && !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
