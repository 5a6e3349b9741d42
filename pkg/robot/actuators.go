// Package robot provides abstractions for driving a chain of bus servos.
package robot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// ActuatorID identifies an actuator on the bus.
type ActuatorID int

// IDs of the actuator chain on the reference octo rig.
var defaultIDs = []ActuatorID{8, 28, 27, 26, 25, 24, 11, 16, 17, 15, 5}

// DefaultIDs returns the actuator IDs in chain order.
func DefaultIDs() []ActuatorID {
	ids := make([]ActuatorID, len(defaultIDs))
	copy(ids, defaultIDs)
	return ids
}

// Valid reports whether id is addressable (broadcast excluded).
func (id ActuatorID) Valid() bool {
	return id >= 0 && int(id) <= feetech.MaxServoID
}

func (id ActuatorID) String() string {
	return strconv.Itoa(int(id))
}

// ParseIDs parses a comma separated list like "8,28,27".
func ParseIDs(s string) ([]ActuatorID, error) {
	var ids []ActuatorID
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parse actuator id %q: %w", field, err)
		}
		ids = append(ids, ActuatorID(n))
	}
	return ids, nil
}

// FormatIDs is the inverse of ParseIDs.
func FormatIDs(ids []ActuatorID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

// checkIDs rejects empty, out of range and duplicate ID lists.
func checkIDs(ids []ActuatorID) error {
	if len(ids) == 0 {
		return fmt.Errorf("no actuator ids configured")
	}
	seen := make(map[ActuatorID]bool, len(ids))
	for _, id := range ids {
		if !id.Valid() {
			return fmt.Errorf("actuator id %d out of range 0-%d", id, feetech.MaxServoID)
		}
		if seen[id] {
			return fmt.Errorf("duplicate actuator id %d", id)
		}
		seen[id] = true
	}
	return nil
}
