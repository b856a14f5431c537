package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/safety"
)

const (
	plotWidth  = 60
	plotHeight = 14
	frameRate  = time.Second / 20
)

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(36)
	plotStyle  = lipgloss.NewStyle().Padding(1, 2)
)

type TickMsg time.Time

// BackMsg is sent when the viewer is closed with Esc inside a Picker.
type BackMsg struct{}

// Viewer steps through the rows of a time×space grid in °C.
type Viewer struct {
	c        heat.PhysicalConstants
	title    string
	x        []float64
	grid     *mat.Dense
	dt       float64 // dimensionless step between rows
	row      int
	playing  bool
	showHelp bool
	theme    Theme
	peaks    []float64
	embedded bool
}

// NewViewer wraps a physical grid. dt is the dimensionless time between rows;
// it is only used to label the current time.
func NewViewer(c heat.PhysicalConstants, title string, x []float64, grid *mat.Dense, dt float64) Viewer {
	rows, _ := grid.Dims()
	peaks := make([]float64, rows)
	for i := range peaks {
		peaks[i] = floats.Max(grid.RawRowView(i))
	}
	return Viewer{
		c:     c,
		title: title,
		x:     x,
		grid:  grid,
		dt:    dt,
		theme: Themes[0],
		peaks: peaks,
	}
}

func (v Viewer) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// WithTheme returns a copy of v drawn with t.
func (v Viewer) WithTheme(t Theme) Viewer {
	v.theme = t
	return v
}

// Theme is the palette in use.
func (v Viewer) Theme() Theme { return v.theme }

// Row is the index of the row on screen.
func (v Viewer) Row() int { return v.row }

// Playing reports whether rows advance on every tick.
func (v Viewer) Playing() bool { return v.playing }

func (v Viewer) rows() int {
	r, _ := v.grid.Dims()
	return r
}

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case "esc":
			if v.embedded {
				return v, func() tea.Msg { return BackMsg{} }
			}
			return v, tea.Quit
		case " ":
			v.playing = !v.playing
			if v.playing && v.row == v.rows()-1 {
				v.row = 0
			}
		case "right", "l":
			v.seek(1)
		case "left", "h":
			v.seek(-1)
		case "pgdown":
			v.seek(max(v.rows()/10, 1))
		case "pgup":
			v.seek(-max(v.rows()/10, 1))
		case "home", "g":
			v.row = 0
		case "end", "G":
			v.row = v.rows() - 1
		case "t":
			v.theme = NextTheme(v.theme)
		case "?":
			v.showHelp = !v.showHelp
		}
	case TickMsg:
		if v.playing {
			v.seek(1)
			if v.row == v.rows()-1 {
				v.playing = false
			}
		}
		return v, tick()
	}
	return v, nil
}

func (v *Viewer) seek(delta int) {
	v.row = min(max(v.row+delta, 0), v.rows()-1)
}

func (v Viewer) View() string {
	profile := v.grid.RawRowView(v.row)
	limits := make([]float64, len(profile))
	for j := range limits {
		limits[j] = safety.Threshold(v.c, j)
	}

	chart := PlotProfiles([]Series{
		{Name: "T [°C]", Values: profile},
		{Name: "limit", Values: limits},
	}, fmt.Sprintf("x from 0 to %.2f cm", 100*v.x[len(v.x)-1]), plotWidth, plotHeight)

	t := float64(v.row) * v.dt
	label := MetricLabel
	value := MetricValue.Foreground(v.theme.Accent)

	var s strings.Builder
	s.WriteString(HeaderStyle.Foreground(v.theme.Primary).Render(strings.ToUpper(v.title)) + "\n\n")
	status := "PAUSED"
	if v.playing {
		status = "PLAYING"
	}
	s.WriteString(Subtle.Render(status) + "\n\n")
	s.WriteString(label.Render("Row") + value.Render(fmt.Sprintf("%d/%d", v.row, v.rows()-1)) + "\n")
	s.WriteString(label.Render("Time") + value.Render(fmt.Sprintf("%.1f s", v.c.DenormalizeTime(t))) + "\n")
	s.WriteString(label.Render("t (norm)") + value.Render(fmt.Sprintf("%.5f", t)) + "\n")
	s.WriteString(label.Render("Peak") + value.Render(fmt.Sprintf("%.2f °C", floats.Max(profile))) + "\n")
	s.WriteString(label.Render("Centre") + value.Render(fmt.Sprintf("%.2f °C", profile[len(profile)/2])) + "\n\n")
	s.WriteString(Verdict(v.theme, safety.Margin(v.c, profile)) + "\n\n")
	s.WriteString(ProgressBar(float64(v.row)/float64(max(v.rows()-1, 1)), 24) + "\n")
	s.WriteString(Sparkline(v.peaks, 24) + "\n")
	s.WriteString(KeyHint.Render("\n←/→:Step  Space:Play\nHome/End  T:Theme  Q:Quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, plotStyle.Render(chart), statsStyle.Render(s.String()))
	if v.showHelp {
		return Panel.Render(helpText) + "\n" + main
	}
	return main
}

const helpText = `KEYBOARD SHORTCUTS
←/→ h/l    previous/next row
PgUp/PgDn  jump ten percent
Home/End   first/last row
Space      play/pause
T          cycle themes
?          toggle this help
Esc        back
Q          quit`

// RunViewer opens the viewer full screen and blocks until it is closed.
func RunViewer(v Viewer) error {
	_, err := tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}
