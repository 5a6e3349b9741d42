// Package octo provides a keyboard teleoperation console for chains of
// serial bus servos.
//
// The console enables torque on a fixed list of actuator IDs, lets you pick
// one and jog its goal position with the arrow keys, and disables torque
// again on exit.
//
// # Installation
//
//	go install github.com/gwillem/octo/cmd/octo@latest
//
// # Usage
//
// First, run setup to pick the serial port and the actuators to drive:
//
//	octo setup
//
// Then start the console:
//
//	octo jog
//
// In the menu, type an actuator ID (or use the arrow keys and Enter) to select
// it, and press Esc to quit. While jogging, Left/Right move the goal by one
// step, Up/Down by ten steps, and Space returns to the menu.
//
// # Bus protocol
//
// The bus speaks Protocol 1.0 framing. Feetech STS/SCS servos use it
// natively; Dynamixel X and MX servos must be switched to Protocol 1.0
// (for example with Dynamixel Wizard) before octo can drive them. Their
// control table addresses are unchanged by the switch.
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/octo: CLI with setup, jog, scan, relax and ports commands
//   - pkg/robot: Bus access, control tables and configuration
//   - pkg/teleop: Menu and jog session state machine
package octo
