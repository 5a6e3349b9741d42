// Package teleop provides the keyboard jog session for an actuator chain.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gwillem/octo/pkg/robot"
)

// KeyType is a decoded keypress.
type KeyType int

const (
	KeyOther KeyType = iota
	KeyDigit
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeySpace
	KeyEsc
	KeyEnter
	KeyBackspace
	KeyQuit
)

// Key is one keypress. Rune is set for KeyDigit.
type Key struct {
	Type KeyType
	Rune rune
}

// Digit returns the key for digit d.
func Digit(d rune) Key {
	return Key{Type: KeyDigit, Rune: d}
}

// Mode is the session's current screen.
type Mode int

const (
	ModeMenu Mode = iota
	ModeJog
	ModeDone
)

func (m Mode) String() string {
	switch m {
	case ModeJog:
		return "jog"
	case ModeDone:
		return "done"
	}
	return "menu"
}

// Actuators is the bus side of a session.
type Actuators interface {
	SetGoalPosition(ctx context.Context, id robot.ActuatorID, position int) error
}

// Config holds configuration for a session.
type Config struct {
	IDs   []robot.ActuatorID
	Range robot.Range
	Step  int
	// CoarseFactor multiplies Step for up/down jogs.
	CoarseFactor int
	// MaxLogs bounds the log history.
	MaxLogs int
}

const invalidInput = "Invalid input, please try again."

// Session is the single-threaded menu/jog state machine.
type Session struct {
	acts   Actuators
	ids    []robot.ActuatorID
	rng    robot.Range
	step   int
	coarse int

	mode     Mode
	cursor   int
	buffer   string
	selected robot.ActuatorID
	goal     int
	writes   int

	logs    []string
	maxLogs int
	now     func() time.Time
}

// NewSession creates a session in menu mode.
func NewSession(acts Actuators, cfg Config) *Session {
	if cfg.Step <= 0 {
		cfg.Step = 10
	}
	if cfg.CoarseFactor <= 0 {
		cfg.CoarseFactor = 10
	}
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = 5
	}
	ids := make([]robot.ActuatorID, len(cfg.IDs))
	copy(ids, cfg.IDs)

	return &Session{
		acts:    acts,
		ids:     ids,
		rng:     cfg.Range,
		step:    cfg.Step,
		coarse:  cfg.CoarseFactor,
		maxLogs: cfg.MaxLogs,
		now:     time.Now,
	}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// IDs returns the selectable actuator IDs.
func (s *Session) IDs() []robot.ActuatorID { return s.ids }

// Cursor returns the menu cursor index.
func (s *Session) Cursor() int { return s.cursor }

// Buffer returns the digits typed so far in the menu.
func (s *Session) Buffer() string { return s.buffer }

// Selected returns the actuator being jogged. Only valid in ModeJog.
func (s *Session) Selected() robot.ActuatorID { return s.selected }

// Goal returns the current goal position.
func (s *Session) Goal() int { return s.goal }

// Range returns the goal position window.
func (s *Session) Range() robot.Range { return s.rng }

// Writes returns the number of goal writes issued.
func (s *Session) Writes() int { return s.writes }

// Logs returns the most recent log messages, oldest first.
func (s *Session) Logs() []string { return s.logs }

// Logf adds a timestamped message to the log history.
func (s *Session) Logf(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", s.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	s.logs = append(s.logs, msg)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
}

// LogError logs a bus error, tagged with its kind for actuator errors.
func (s *Session) LogError(err error) {
	var ae *robot.ActuatorError
	if errors.As(err, &ae) {
		s.Logf("%s: %v", ae.Kind(), err)
		return
	}
	s.Logf("%v", err)
}

// HandleKey processes one keypress. It performs at most one register write.
func (s *Session) HandleKey(ctx context.Context, k Key) {
	if k.Type == KeyQuit {
		s.mode = ModeDone
		return
	}
	switch s.mode {
	case ModeMenu:
		s.handleMenu(k)
	case ModeJog:
		s.handleJog(ctx, k)
	}
}

func (s *Session) handleMenu(k Key) {
	if len(s.ids) == 0 && k.Type != KeyEsc {
		s.invalid()
		return
	}
	switch k.Type {
	case KeyEsc:
		s.mode = ModeDone
	case KeyUp:
		s.buffer = ""
		s.cursor = (s.cursor - 1 + len(s.ids)) % len(s.ids)
	case KeyDown:
		s.buffer = ""
		s.cursor = (s.cursor + 1) % len(s.ids)
	case KeyBackspace:
		if s.buffer != "" {
			s.buffer = s.buffer[:len(s.buffer)-1]
		}
	case KeyEnter:
		if s.buffer == "" {
			s.selectIndex(s.cursor)
			return
		}
		if i, ok := s.exact(s.buffer); ok {
			s.selectIndex(i)
			return
		}
		s.invalid()
	case KeyDigit:
		s.typeDigit(k.Rune)
	default:
		s.invalid()
	}
}

// typeDigit selects as soon as the typed digits name exactly one ID.
func (s *Session) typeDigit(d rune) {
	buf := s.buffer + string(d)
	exact, exactOK := s.exact(buf)
	longer := false
	for _, id := range s.ids {
		str := id.String()
		if len(str) > len(buf) && strings.HasPrefix(str, buf) {
			longer = true
			break
		}
	}

	switch {
	case exactOK && !longer:
		s.selectIndex(exact)
	case exactOK || longer:
		s.buffer = buf
	default:
		s.invalid()
	}
}

func (s *Session) exact(buf string) (int, bool) {
	n, err := strconv.Atoi(buf)
	if err != nil {
		return 0, false
	}
	for i, id := range s.ids {
		if int(id) == n && id.String() == buf {
			return i, true
		}
	}
	return 0, false
}

func (s *Session) invalid() {
	s.buffer = ""
	s.Logf(invalidInput)
}

func (s *Session) selectIndex(i int) {
	s.buffer = ""
	s.cursor = i
	s.selected = s.ids[i]
	s.goal = s.rng.Mid()
	s.mode = ModeJog
	s.Logf("Controlling actuator #%d", s.selected)
}

func (s *Session) handleJog(ctx context.Context, k Key) {
	switch k.Type {
	case KeySpace, KeyEsc:
		s.mode = ModeMenu
		return
	case KeyRight:
		s.goal = s.rng.Clamp(s.goal + s.step)
	case KeyLeft:
		s.goal = s.rng.Clamp(s.goal - s.step)
	case KeyUp:
		s.goal = s.rng.Clamp(s.goal + s.step*s.coarse)
	case KeyDown:
		s.goal = s.rng.Clamp(s.goal - s.step*s.coarse)
	}

	s.writes++
	if err := s.acts.SetGoalPosition(ctx, s.selected, s.goal); err != nil {
		s.LogError(err)
	}
}
