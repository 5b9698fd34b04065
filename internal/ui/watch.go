package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"

	"github.com/muurk/xbusd/internal/server"
	"github.com/muurk/xbusd/internal/xbus"
)

type streamMsg server.StreamMessage

type streamErrMsg struct{ err error }

type streamClosedMsg struct{}

// WatchModel is the Bubble Tea model for the live telemetry view.
type WatchModel struct {
	url     string
	spinner spinner.Model
	width   int

	connected bool
	err       error

	sample   *xbus.SensorSample
	lastID   string
	lastSeen time.Time
	messages uint64
	samples  uint64

	stream chan tea.Msg
	cancel context.CancelFunc
}

// NewWatchModel creates a watch model reading from the stream at url
// (ws://host:port/ws).
func NewWatchModel(url string) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	ctx, cancel := context.WithCancel(context.Background())
	stream := make(chan tea.Msg, 64)
	go readStream(ctx, url, stream)

	return WatchModel{
		url:     url,
		spinner: s,
		width:   GetTerminalWidth(),
		stream:  stream,
		cancel:  cancel,
	}
}

// readStream pumps stream messages into the channel until ctx is
// cancelled, reconnecting on failure.
func readStream(ctx context.Context, url string, out chan<- tea.Msg) {
	defer close(out)
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			select {
			case out <- streamErrMsg{err}:
			case <-ctx.Done():
				return
			}
			select {
			case <-time.After(2 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				_ = conn.Close()
				select {
				case out <- streamErrMsg{err}:
				case <-ctx.Done():
					return
				}
				break
			}
			var msg server.StreamMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			select {
			case out <- streamMsg(msg):
			case <-ctx.Done():
				_ = conn.Close()
				return
			}
		}
	}
}

func (m WatchModel) waitForStream() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.stream
		if !ok {
			return streamClosedMsg{}
		}
		return msg
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForStream())
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > MaxContentWidth {
			m.width = MaxContentWidth
		}
		return m, nil

	case streamMsg:
		m.connected = true
		m.err = nil
		m.messages++
		m.lastID = msg.Message
		m.lastSeen = msg.Received
		if msg.Sample != nil {
			m.samples++
			m.sample = msg.Sample
		}
		return m, m.waitForStream()

	case streamErrMsg:
		m.connected = false
		m.err = msg.err
		return m, m.waitForStream()

	case streamClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	header := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("XBUS TELEMETRY"),
		AddrStyle.Render(m.url),
	)
	b.WriteString(HeaderBorderStyle(m.width).Render(header))
	b.WriteString("\n\n")

	if !m.connected {
		b.WriteString(fmt.Sprintf("  %s connecting...\n", m.spinner.View()))
		if m.err != nil {
			b.WriteString(ErrStyle.Render("last error: "+m.err.Error()) + "\n")
		}
		b.WriteString("\n" + FooterStyle.Render("q: quit") + "\n")
		return b.String()
	}

	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(m.renderSample())
	b.WriteString("\n" + FooterStyle.Render("q: quit") + "\n")
	return b.String()
}

func (m WatchModel) renderStats() string {
	var b strings.Builder
	b.WriteString(field("Messages", fmt.Sprintf("%d (%d samples)", m.messages, m.samples)))
	b.WriteString(field("Last message", m.lastID))
	if !m.lastSeen.IsZero() {
		b.WriteString(field("Last seen", m.lastSeen.Format("15:04:05.000")))
	}
	return b.String()
}

func (m WatchModel) renderSample() string {
	if m.sample == nil {
		return FieldKeyStyle.Render("(no telemetry yet)") + "\n"
	}
	s := m.sample

	var b strings.Builder
	if s.PacketCounter != nil {
		b.WriteString(field("Counter", fmt.Sprintf("%d", *s.PacketCounter)))
	}
	if s.Euler != nil {
		b.WriteString(field("Attitude", fmt.Sprintf("roll %7.2f°  pitch %7.2f°  yaw %7.2f°",
			s.Euler.Roll, s.Euler.Pitch, s.Euler.Yaw)))
	}
	if s.Quat != nil {
		b.WriteString(field("Quaternion", fmt.Sprintf("% .4f % .4f % .4f % .4f",
			s.Quat.W, s.Quat.X, s.Quat.Y, s.Quat.Z)))
	}
	if s.Position != nil {
		b.WriteString(field("Position", fmt.Sprintf("%.8f, %.8f",
			s.Position.Latitude, s.Position.Longitude)))
	}
	if s.Altitude != nil {
		b.WriteString(field("Altitude", fmt.Sprintf("%.3f m", *s.Altitude)))
	}
	if s.Velocity != nil {
		b.WriteString(field("Velocity", fmt.Sprintf("%.4f, %.4f, %.4f m/s",
			s.Velocity.X, s.Velocity.Y, s.Velocity.Z)))
	}
	if s.Acceleration != nil {
		b.WriteString(field("Acceleration", fmt.Sprintf("%.4f, %.4f, %.4f m/s²",
			s.Acceleration.X, s.Acceleration.Y, s.Acceleration.Z)))
	}
	if s.RateOfTurn != nil {
		b.WriteString(field("Rate of turn", fmt.Sprintf("%.5f, %.5f, %.5f rad/s",
			s.RateOfTurn.X, s.RateOfTurn.Y, s.RateOfTurn.Z)))
	}
	if s.Pressure != nil {
		b.WriteString(field("Pressure", fmt.Sprintf("%.2f hPa", float64(*s.Pressure)/100.0)))
	}
	if s.Temperature != nil {
		b.WriteString(field("Temperature", fmt.Sprintf("%.2f °C", *s.Temperature)))
	}
	if s.StatusWord != nil {
		b.WriteString(field("Status", renderStatus(*s.StatusWord)))
	}
	return b.String()
}

func renderStatus(status uint32) string {
	flag := func(name string, set bool) string {
		if set {
			return StatusGoodStyle.Render(name)
		}
		return StatusBadStyle.Render(name)
	}
	return fmt.Sprintf("0x%08X  %s %s %s", status,
		flag("selftest", status&xbus.StatusSelfTest != 0),
		flag("filter", status&xbus.StatusFilterValid != 0),
		flag("gnss", status&xbus.StatusGNSSFix != 0))
}

func field(key, value string) string {
	return FieldKeyStyle.Render(key) + FieldValueStyle.Render(value) + "\n"
}

// RunWatch runs the watch UI against the stream at url, blocking until
// the user quits.
func RunWatch(url string) error {
	p := tea.NewProgram(NewWatchModel(url), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
