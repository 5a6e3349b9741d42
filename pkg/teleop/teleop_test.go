package teleop

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/octo/pkg/robot"
)

type write struct {
	id  robot.ActuatorID
	pos int
}

type fakeActuators struct {
	writes []write
	err    error
}

func (f *fakeActuators) SetGoalPosition(_ context.Context, id robot.ActuatorID, pos int) error {
	f.writes = append(f.writes, write{id, pos})
	return f.err
}

func newTestSession(acts Actuators) *Session {
	s := NewSession(acts, Config{
		IDs:   robot.DefaultIDs(),
		Range: robot.DefaultRange,
		Step:  10,
	})
	s.now = func() time.Time { return time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC) }
	return s
}

func press(s *Session, keys ...Key) {
	for _, k := range keys {
		s.HandleKey(context.Background(), k)
	}
}

func lastLog(s *Session) string {
	logs := s.Logs()
	if len(logs) == 0 {
		return ""
	}
	return logs[len(logs)-1]
}

func TestSession_SelectByDigits(t *testing.T) {
	tests := []struct {
		name   string
		keys   []Key
		mode   Mode
		id     robot.ActuatorID
		buffer string
	}{
		{"single digit id", []Key{Digit('5')}, ModeJog, 5, ""},
		{"single digit id 8", []Key{Digit('8')}, ModeJog, 8, ""},
		{"two digit id", []Key{Digit('2'), Digit('7')}, ModeJog, 27, ""},
		{"prefix waits", []Key{Digit('2')}, ModeMenu, 0, "2"},
		{"prefix then enter is invalid", []Key{Digit('2'), {Type: KeyEnter}}, ModeMenu, 0, ""},
		{"one one", []Key{Digit('1'), Digit('1')}, ModeJog, 11, ""},
		{"unknown digit", []Key{Digit('3')}, ModeMenu, 0, ""},
		{"bad second digit", []Key{Digit('2'), Digit('9')}, ModeMenu, 0, ""},
		{"backspace", []Key{Digit('1'), {Type: KeyBackspace}, Digit('5')}, ModeJog, 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(&fakeActuators{})
			press(s, tt.keys...)
			if s.Mode() != tt.mode {
				t.Fatalf("mode = %v, want %v", s.Mode(), tt.mode)
			}
			if tt.mode == ModeJog && s.Selected() != tt.id {
				t.Errorf("selected = %d, want %d", s.Selected(), tt.id)
			}
			if s.Buffer() != tt.buffer {
				t.Errorf("buffer = %q, want %q", s.Buffer(), tt.buffer)
			}
		})
	}
}

func TestSession_ExactWithLongerPrefix(t *testing.T) {
	s := NewSession(&fakeActuators{}, Config{
		IDs:   []robot.ActuatorID{1, 12},
		Range: robot.DefaultRange,
	})

	press(s, Digit('1'))
	if s.Mode() != ModeMenu || s.Buffer() != "1" {
		t.Fatalf("1 is a prefix of 12, should wait: mode %v buffer %q", s.Mode(), s.Buffer())
	}
	press(s, Key{Type: KeyEnter})
	if s.Mode() != ModeJog || s.Selected() != 1 {
		t.Errorf("enter should select 1, got mode %v id %d", s.Mode(), s.Selected())
	}
}

func TestSession_InvalidInput(t *testing.T) {
	s := newTestSession(&fakeActuators{})
	press(s, Key{Type: KeyOther})

	if s.Mode() != ModeMenu {
		t.Fatalf("mode = %v, want menu", s.Mode())
	}
	if !strings.HasSuffix(lastLog(s), "Invalid input, please try again.") {
		t.Errorf("log = %q", lastLog(s))
	}
	if !strings.HasPrefix(lastLog(s), "[12:30:00] ") {
		t.Errorf("log not timestamped: %q", lastLog(s))
	}
}

func TestSession_CursorSelect(t *testing.T) {
	s := newTestSession(&fakeActuators{})
	ids := robot.DefaultIDs()

	press(s, Key{Type: KeyUp})
	if s.Cursor() != len(ids)-1 {
		t.Fatalf("cursor should wrap to %d, got %d", len(ids)-1, s.Cursor())
	}
	press(s, Key{Type: KeyDown}, Key{Type: KeyDown}, Key{Type: KeyDown})
	if s.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", s.Cursor())
	}

	press(s, Key{Type: KeyEnter})
	if s.Mode() != ModeJog || s.Selected() != ids[2] {
		t.Errorf("enter selected %d in mode %v, want %d", s.Selected(), s.Mode(), ids[2])
	}
}

func TestSession_Jog(t *testing.T) {
	acts := &fakeActuators{}
	s := newTestSession(acts)
	mid := robot.DefaultRange.Mid()

	press(s, Digit('8'))
	if s.Goal() != mid {
		t.Fatalf("goal = %d, want midpoint %d", s.Goal(), mid)
	}
	if len(acts.writes) != 0 {
		t.Fatal("selection must not write")
	}

	press(s, Key{Type: KeyRight}, Key{Type: KeyRight}, Key{Type: KeyLeft}, Key{Type: KeyUp}, Key{Type: KeyDown}, Key{Type: KeyDown})
	want := []int{mid + 10, mid + 20, mid + 10, mid + 110, mid + 10, mid - 90}
	if len(acts.writes) != len(want) {
		t.Fatalf("got %d writes, want %d", len(acts.writes), len(want))
	}
	for i, w := range acts.writes {
		if w.id != 8 || w.pos != want[i] {
			t.Errorf("write %d = %+v, want id 8 pos %d", i, w, want[i])
		}
	}
	if s.Writes() != len(want) {
		t.Errorf("Writes() = %d", s.Writes())
	}
}

func TestSession_JogClamps(t *testing.T) {
	acts := &fakeActuators{}
	s := newTestSession(acts)
	r := robot.DefaultRange

	press(s, Digit('5'))
	for i := 0; i < 200; i++ {
		press(s, Key{Type: KeyRight})
	}
	if s.Goal() != r.Max {
		t.Errorf("goal = %d, want max %d", s.Goal(), r.Max)
	}
	for i := 0; i < 20; i++ {
		press(s, Key{Type: KeyDown})
	}
	if s.Goal() != r.Min {
		t.Errorf("goal = %d, want min %d", s.Goal(), r.Min)
	}
	for _, w := range acts.writes {
		if !r.Contains(w.pos) {
			t.Fatalf("write outside range: %d", w.pos)
		}
	}
}

func TestSession_OtherKeyResendsGoal(t *testing.T) {
	acts := &fakeActuators{}
	s := newTestSession(acts)

	press(s, Digit('5'), Key{Type: KeyOther})
	if len(acts.writes) != 1 || acts.writes[0].pos != robot.DefaultRange.Mid() {
		t.Errorf("writes = %+v, want one midpoint write", acts.writes)
	}
}

func TestSession_ReturnToMenuResetsGoal(t *testing.T) {
	acts := &fakeActuators{}
	s := newTestSession(acts)

	press(s, Digit('5'), Key{Type: KeyRight}, Key{Type: KeySpace})
	if s.Mode() != ModeMenu {
		t.Fatalf("space should return to menu, mode = %v", s.Mode())
	}
	if len(acts.writes) != 1 {
		t.Errorf("space must not write, got %d writes", len(acts.writes))
	}

	press(s, Digit('5'))
	if s.Goal() != robot.DefaultRange.Mid() {
		t.Errorf("goal not reset on reselect: %d", s.Goal())
	}

	press(s, Key{Type: KeyEsc})
	if s.Mode() != ModeMenu {
		t.Errorf("esc in jog should return to menu, mode = %v", s.Mode())
	}
}

func TestSession_WriteErrorsAreLogged(t *testing.T) {
	acts := &fakeActuators{err: errors.New("no response from servo")}
	s := newTestSession(acts)

	press(s, Digit('5'), Key{Type: KeyRight}, Key{Type: KeyRight})
	if s.Mode() != ModeJog {
		t.Fatalf("write error must not leave jog mode")
	}
	if s.Goal() != robot.DefaultRange.Mid()+20 {
		t.Errorf("goal = %d, errors must not roll back the goal", s.Goal())
	}
	if !strings.HasSuffix(lastLog(s), "no response from servo") {
		t.Errorf("log = %q", lastLog(s))
	}
}

func TestSession_WriteErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"hardware alert", feetech.ErrOverload, "] hardware alert: actuator #5 goal position: servo status error: [overload]"},
		{"comm failure", feetech.ErrNoResponse, "] comm failure: actuator #5 goal position: no response from servo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acts := &fakeActuators{err: &robot.ActuatorError{ID: 5, Op: "goal position", Err: tt.err}}
			s := newTestSession(acts)
			press(s, Digit('5'), Key{Type: KeyRight})
			if !strings.HasSuffix(lastLog(s), tt.want) {
				t.Errorf("log = %q, want suffix %q", lastLog(s), tt.want)
			}
		})
	}
}

func TestSession_Exit(t *testing.T) {
	s := newTestSession(&fakeActuators{})
	press(s, Key{Type: KeyEsc})
	if s.Mode() != ModeDone {
		t.Errorf("esc in menu should end session, mode = %v", s.Mode())
	}

	s = newTestSession(&fakeActuators{})
	press(s, Digit('5'), Key{Type: KeyQuit})
	if s.Mode() != ModeDone {
		t.Errorf("quit in jog should end session, mode = %v", s.Mode())
	}
}

func TestSession_LogsBounded(t *testing.T) {
	s := newTestSession(&fakeActuators{})
	for i := 0; i < 12; i++ {
		s.Logf("msg %d", i)
	}
	logs := s.Logs()
	if len(logs) != 5 {
		t.Fatalf("kept %d logs, want 5", len(logs))
	}
	if !strings.HasSuffix(logs[0], "msg 7") || !strings.HasSuffix(logs[4], "msg 11") {
		t.Errorf("wrong logs kept: %v", logs)
	}
}
