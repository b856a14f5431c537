package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/storage"
)

func testConstants() heat.PhysicalConstants {
	return heat.PhysicalConstants{
		HeatCapacity:           3686,
		Density:                1081,
		ThermalConductivity:    0.56,
		ElectricalConductivity: 0.472,
		HalfThickness:          0.02,
		LesionHalfWidth:        0.005,
		Voltage:                40,
		BodyTemp:               36.5,
		N:                      4,
		Duration:               0.025,
	}
}

// testGrid has three rows; only the last one is above 50 °C in healthy tissue.
func testGrid() *mat.Dense {
	return mat.NewDense(3, 4, []float64{
		36.5, 36.5, 36.5, 36.5,
		36.5, 45, 45, 36.5,
		36.5, 55, 55, 36.5,
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(v Viewer, msgs ...tea.Msg) Viewer {
	for _, msg := range msgs {
		m, _ := v.Update(msg)
		v = m.(Viewer)
	}
	return v
}

func TestViewerNavigation(t *testing.T) {
	c := testConstants()
	v := NewViewer(c, "explicit_0.25", heat.PhysicalAxis(c), testGrid(), 1e-3)

	v = update(v, key("right"))
	if v.Row() != 1 {
		t.Errorf("expected row 1, got %d", v.Row())
	}
	v = update(v, key("right"), key("right"), key("right"))
	if v.Row() != 2 {
		t.Errorf("row should clamp at 2, got %d", v.Row())
	}
	v = update(v, key("left"), key("left"), key("left"))
	if v.Row() != 0 {
		t.Errorf("row should clamp at 0, got %d", v.Row())
	}
	v = update(v, key("end"))
	if v.Row() != 2 {
		t.Errorf("expected last row, got %d", v.Row())
	}
	v = update(v, key("home"))
	if v.Row() != 0 {
		t.Errorf("expected first row, got %d", v.Row())
	}
}

func TestViewerPlayback(t *testing.T) {
	c := testConstants()
	v := NewViewer(c, "run", heat.PhysicalAxis(c), testGrid(), 1e-3)

	v = update(v, key(" "))
	if !v.Playing() {
		t.Fatal("space should start playback")
	}
	v = update(v, TickMsg{}, TickMsg{})
	if v.Row() != 2 {
		t.Errorf("expected row 2 after two ticks, got %d", v.Row())
	}
	if v.Playing() {
		t.Error("playback should stop at the last row")
	}

	v = update(v, key(" "))
	if !v.Playing() || v.Row() != 0 {
		t.Error("playing from the end should restart at row 0")
	}
}

func TestViewerTheme(t *testing.T) {
	c := testConstants()
	v := NewViewer(c, "run", heat.PhysicalAxis(c), testGrid(), 1e-3)
	if v.Theme().Name != Themes[0].Name {
		t.Errorf("expected default theme, got %s", v.Theme().Name)
	}

	mono := v.WithTheme(GetTheme("mono"))
	if mono.Theme().Name != "mono" || v.Theme().Name == "mono" {
		t.Error("WithTheme should return a changed copy")
	}
	if update(mono, key("t")).Theme().Name != Themes[0].Name {
		t.Error("t should cycle from the last theme to the first")
	}
}

func TestViewerQuit(t *testing.T) {
	c := testConstants()
	v := NewViewer(c, "run", heat.PhysicalAxis(c), testGrid(), 1e-3)
	_, cmd := v.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewerView(t *testing.T) {
	c := testConstants()
	v := NewViewer(c, "implicit_1", heat.PhysicalAxis(c), testGrid(), 1e-3)

	out := v.View()
	if !strings.Contains(out, "IMPLICIT_1") {
		t.Error("view should contain the title")
	}
	if !strings.Contains(out, "SAFE") || strings.Contains(out, "UNSAFE") {
		t.Error("first row should be safe")
	}

	v = update(v, key("end"))
	if !strings.Contains(v.View(), "UNSAFE") {
		t.Error("last row should be unsafe")
	}
}

func TestPicker(t *testing.T) {
	c := testConstants()
	runs := []storage.RunMetadata{{ID: "a", Scheme: "explicit"}, {ID: "b", Scheme: "crank"}}
	var opened string
	p := NewPicker(runs, func(meta storage.RunMetadata) (Viewer, error) {
		opened = meta.ID
		return NewViewer(c, meta.ID, heat.PhysicalAxis(c), testGrid(), 1e-3), nil
	})

	m, _ := p.Update(key("down"))
	p = m.(Picker)
	if sel, _ := p.Selected(); sel.ID != "b" {
		t.Errorf("expected b selected, got %s", sel.ID)
	}

	m, _ = p.Update(key("enter"))
	p = m.(Picker)
	if opened != "b" {
		t.Errorf("expected b opened, got %q", opened)
	}
	if !strings.Contains(p.View(), "PAUSED") {
		t.Error("picker should show the viewer")
	}

	m, cmd := p.Update(key("esc"))
	p = m.(Picker)
	m, _ = p.Update(cmd())
	p = m.(Picker)
	if !strings.Contains(p.View(), "STORED RUNS") {
		t.Error("esc should return to the list")
	}
}

func TestPickerLoadError(t *testing.T) {
	p := NewPicker([]storage.RunMetadata{{ID: "broken"}}, func(storage.RunMetadata) (Viewer, error) {
		return Viewer{}, errors.New("boom")
	})
	m, _ := p.Update(key("enter"))
	if !strings.Contains(m.View(), "boom") {
		t.Error("load error should be shown")
	}
}

func TestPlotProfiles(t *testing.T) {
	out := PlotProfiles([]Series{
		{Name: "explicit", Values: []float64{36, 40, 36}},
		{Name: "empty"},
		{Name: "analytic", Values: []float64{36, 41, 36}},
	}, "profiles", 30, 5)

	for _, want := range []string{"profiles", "explicit", "analytic"} {
		if !strings.Contains(out, want) {
			t.Errorf("plot should contain %q", want)
		}
	}
	if strings.Contains(out, "empty") {
		t.Error("empty series should be skipped")
	}

	if PlotProfiles(nil, "x", 10, 5) != "" {
		t.Error("expected empty plot for no series")
	}
}

func TestViolationMap(t *testing.T) {
	c := testConstants()
	canvas := ViolationMap(c, testGrid(), 4, 3)

	if canvas.Width != 4 || canvas.Height != 3 {
		t.Fatalf("unexpected size %dx%d", canvas.Width, canvas.Height)
	}
	if canvas.Count() == 0 {
		t.Error("expected violating dots")
	}
	for _, r := range canvas.Grid[0] {
		if r != brailleBlank {
			t.Error("first rows are safe and should stay blank")
		}
	}
	if lines := strings.Count(canvas.String(), "\n"); lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if c.Count() != 2 {
		t.Errorf("expected 2 dots, got %d", c.Count())
	}
	if c.Grid[0][0] != brailleBlank+0x1 || c.Grid[0][1] != brailleBlank+0x80 {
		t.Errorf("unexpected cells %U %U", c.Grid[0][0], c.Grid[0][1])
	}
	c.Clear()
	if c.Count() != 0 {
		t.Error("clear should remove every dot")
	}
}

func TestStyles(t *testing.T) {
	if got := ProgressBar(0.5, 4); got != "██░░" {
		t.Errorf("unexpected bar %q", got)
	}
	if got := ProgressBar(2, 2); got != "██" {
		t.Errorf("bar should clamp, got %q", got)
	}
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("unexpected sparkline %q", got)
	}

	table := Table([]string{"scheme", "q"}, [][]string{{"explicit", "0.25"}})
	if !strings.Contains(table, "explicit  0.25") {
		t.Errorf("unexpected table:\n%s", table)
	}

	if NextTheme(ThemeMono).Name != Themes[0].Name {
		t.Error("themes should wrap around")
	}
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back")
	}
	if names := ThemeNames(); len(names) != len(Themes) || names[1] != "clinical" {
		t.Errorf("unexpected theme names %v", names)
	}

	sep := Separator(20)
	if !strings.Contains(sep, "◆") || strings.Count(sep, "─") != 14 {
		t.Errorf("unexpected separator %q", sep)
	}
}
