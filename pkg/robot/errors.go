package robot

import (
	"errors"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// ErrorKind separates transport failures from alerts reported by the servo.
type ErrorKind int

const (
	// CommFailure means the transaction did not complete: no reply,
	// timeout, a corrupt packet or a closed bus.
	CommFailure ErrorKind = iota
	// HardwareAlert means the servo replied with error bits set.
	HardwareAlert
)

func (k ErrorKind) String() string {
	if k == HardwareAlert {
		return "hardware alert"
	}
	return "comm failure"
}

// ActuatorError wraps a failed register operation on one actuator.
type ActuatorError struct {
	ID  ActuatorID
	Op  string
	Err error
}

func (e *ActuatorError) Error() string {
	return fmt.Sprintf("actuator #%d %s: %v", e.ID, e.Op, e.Err)
}

func (e *ActuatorError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying driver error.
func (e *ActuatorError) Kind() ErrorKind {
	var status feetech.StatusError
	if errors.As(e.Err, &status) && status.HasError() {
		return HardwareAlert
	}
	if se, ok := feetech.GetServoError(e.Err); ok && se.Status.HasError() {
		return HardwareAlert
	}
	return CommFailure
}

// IsHardwareAlert reports whether err carries servo status error bits.
func IsHardwareAlert(err error) bool {
	var ae *ActuatorError
	return errors.As(err, &ae) && ae.Kind() == HardwareAlert
}
