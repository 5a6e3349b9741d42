package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/octo/pkg/robot"
	"github.com/gwillem/octo/pkg/teleop"
)

type JogCommand struct {
	BusOptions

	Step    int  `long:"step" description:"Jog step in position units (overrides config)"`
	Monitor bool `long:"monitor" description:"Poll and chart the present position of the selected actuator"`
	Hz      int  `long:"hz" default:"10" description:"Monitor poll frequency"`
}

const (
	headerHeight = 5 // title + status lines
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

const (
	goalSeries    = "goal"
	presentSeries = "present"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	goalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))  // cyan
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // orange
)

// positionReader is the optional monitor side of the bus.
type positionReader interface {
	PresentPosition(ctx context.Context, id robot.ActuatorID) (int, error)
}

type jogModel struct {
	ctx      context.Context
	session  *teleop.Session
	monitor  positionReader // nil disables polling
	interval time.Duration
	chart    *streamlinechart.Model
	present  int
	havePos  bool
	width    int
	height   int
}

type tickMsg time.Time

func newJogModel(ctx context.Context, session *teleop.Session, monitor positionReader, hz int) jogModel {
	if hz <= 0 {
		hz = 10
	}
	m := jogModel{
		ctx:      ctx,
		session:  session,
		monitor:  monitor,
		interval: time.Second / time.Duration(hz),
	}
	m.resetChart()
	return m
}

func (m *jogModel) resetChart() {
	w, h := m.chartSize()
	chart := streamlinechart.New(w, h,
		streamlinechart.WithYRange(-100, 100),
	)
	chart.SetDataSetStyles(goalSeries, runes.ThinLineStyle, goalStyle)
	chart.SetDataSetStyles(presentSeries, runes.ThinLineStyle, presentStyle)
	m.chart = &chart
	m.havePos = false
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *jogModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 60, 12 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - footerHeight - borderSize
	if height < 6 {
		height = 6
	}
	return width, height
}

func (m *jogModel) push(series string, raw int) {
	m.chart.PushDataSet(series, m.session.Range().Normalize(raw))
	m.chart.DrawAll()
}

func (m jogModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m jogModel) Init() tea.Cmd {
	if m.monitor == nil {
		return nil
	}
	return m.tick()
}

// toKey maps a terminal key event to a session key.
func toKey(msg tea.KeyMsg) teleop.Key {
	switch msg.Type {
	case tea.KeyCtrlC:
		return teleop.Key{Type: teleop.KeyQuit}
	case tea.KeyEsc:
		return teleop.Key{Type: teleop.KeyEsc}
	case tea.KeySpace:
		return teleop.Key{Type: teleop.KeySpace}
	case tea.KeyEnter:
		return teleop.Key{Type: teleop.KeyEnter}
	case tea.KeyBackspace:
		return teleop.Key{Type: teleop.KeyBackspace}
	case tea.KeyLeft:
		return teleop.Key{Type: teleop.KeyLeft}
	case tea.KeyRight:
		return teleop.Key{Type: teleop.KeyRight}
	case tea.KeyUp:
		return teleop.Key{Type: teleop.KeyUp}
	case tea.KeyDown:
		return teleop.Key{Type: teleop.KeyDown}
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			r := msg.Runes[0]
			if r >= '0' && r <= '9' {
				return teleop.Digit(r)
			}
			if r == ' ' {
				return teleop.Key{Type: teleop.KeySpace}
			}
		}
	}
	return teleop.Key{Type: teleop.KeyOther}
}

func (m jogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		writes := m.session.Writes()
		wasJog := m.session.Mode() == teleop.ModeJog
		m.session.HandleKey(m.ctx, toKey(msg))

		switch m.session.Mode() {
		case teleop.ModeDone:
			return m, tea.Quit
		case teleop.ModeJog:
			if !wasJog {
				m.resetChart()
			}
			if m.session.Writes() != writes {
				m.push(goalSeries, m.session.Goal())
			}
		}
		return m, nil

	case tickMsg:
		if m.monitor == nil {
			return m, nil
		}
		if m.session.Mode() == teleop.ModeJog {
			pos, err := m.monitor.PresentPosition(m.ctx, m.session.Selected())
			if err != nil {
				m.session.LogError(err)
			} else {
				m.present = pos
				m.havePos = true
				m.push(presentSeries, pos)
			}
		}
		return m, m.tick()
	}

	return m, nil
}

func (m jogModel) View() string {
	if m.session.Mode() == teleop.ModeDone {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Octo Jog"))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	if m.session.Mode() == teleop.ModeMenu {
		sb.WriteString(m.menuView())
	} else {
		sb.WriteString(m.jogView())
	}
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Foreground(lipgloss.Color("9")) // bright red
	if m.width > 4 {
		logStyle = logStyle.Width(m.width - 4)
	}

	var logLines string
	if logs := m.session.Logs(); len(logs) == 0 {
		logLines = statusStyle.Render("Press Esc in the menu to quit")
	} else {
		logLines = strings.Join(logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func (m jogModel) menuView() string {
	var sb strings.Builder
	sb.WriteString("Select an actuator to control (type its ID, or use ↑/↓ and Enter). Press Esc to quit.\n\n")

	var items []string
	for i, id := range m.session.IDs() {
		label := fmt.Sprintf(" %d ", id)
		if i == m.session.Cursor() {
			label = cursorStyle.Render("[" + id.String() + "]")
		}
		items = append(items, label)
	}
	sb.WriteString("Available actuators: " + strings.Join(items, " "))
	sb.WriteString("\n")
	if buf := m.session.Buffer(); buf != "" {
		sb.WriteString(statusStyle.Render("ID: " + buf + "_"))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (m jogModel) jogView() string {
	var sb strings.Builder
	r := m.session.Range()

	sb.WriteString(fmt.Sprintf("Controlling actuator #%d. ←/→ fine, ↑/↓ coarse, Space to return to the menu.\n", m.session.Selected()))
	sb.WriteString(goalStyle.Render(fmt.Sprintf("Goal position: %d", m.session.Goal())))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%d..%d]", r.Min, r.Max)))
	if m.havePos {
		sb.WriteString("  " + presentStyle.Render(fmt.Sprintf("Present position: %d", m.present)))
	}
	sb.WriteString("\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")
	return sb.String()
}

// torqueLine describes the outcome of a torque change on one actuator.
// Servo alerts are reported apart from bus failures.
func torqueLine(r robot.Result, enabled bool) string {
	if r.Err != nil {
		var ae *robot.ActuatorError
		if !errors.As(r.Err, &ae) {
			return errorStyle.Render(r.Err.Error())
		}
		if ae.Kind() == robot.HardwareAlert {
			return errorStyle.Render(fmt.Sprintf("Actuator #%d reported a hardware alert: %v", r.ID, ae.Err))
		}
		return errorStyle.Render(fmt.Sprintf("Actuator #%d communication failed: %v", r.ID, ae.Err))
	}
	if enabled {
		return fmt.Sprintf("Actuator #%d has been successfully connected", r.ID)
	}
	return fmt.Sprintf("Actuator #%d: torque disabled", r.ID)
}

// reportTorque prints the outcome of a torque change per actuator.
// Successful disables are not printed.
func reportTorque(results []robot.Result, enabled bool) (failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else if !enabled {
			continue
		}
		fmt.Println(torqueLine(r, enabled))
	}
	return failed
}

// jogChain is the part of robot.Chain the console drives.
type jogChain interface {
	teleop.Actuators
	positionReader
	EnableAll(ctx context.Context) []robot.Result
	DisableAll(ctx context.Context) []robot.Result
	Close() error
}

func (c *JogCommand) Execute(args []string) error {
	cfg := c.mustLoad()
	if c.Step > 0 {
		cfg.Step = c.Step
	}

	return c.run(context.Background(), cfg, openChain(cfg), func(m tea.Model) error {
		_, err := tea.NewProgram(m).Run()
		return err
	})
}

// run enables torque, runs the console and then disables torque and closes
// the chain, whatever the console returned.
func (c *JogCommand) run(ctx context.Context, cfg *robot.Config, chain jogChain, console func(tea.Model) error) error {
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("Enabling torque"))
	if failed := reportTorque(chain.EnableAll(ctx), true); failed > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d of %d actuators did not respond", failed, len(cfg.IDs))))
	}

	session := teleop.NewSession(chain, teleop.Config{
		IDs:     cfg.IDs,
		Range:   cfg.Range,
		Step:    cfg.Step,
		MaxLogs: maxLogs,
	})

	var monitor positionReader
	if c.Monitor {
		monitor = chain
	}

	if err := console(newJogModel(ctx, session, monitor, c.Hz)); err != nil {
		log.Printf("Error running console: %v", err)
	}

	fmt.Println(subHeaderStyle.Render("Disabling torque"))
	reportTorque(chain.DisableAll(ctx), false)

	if err := chain.Close(); err != nil {
		log.Printf("Error closing port: %v", err)
	}
	fmt.Println("Program terminated.")
	return nil
}
