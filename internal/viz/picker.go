package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/tissueheat/internal/storage"
)

// Loader opens a stored run as a Viewer.
type Loader func(meta storage.RunMetadata) (Viewer, error)

// Picker lists stored runs and opens the selected one.
type Picker struct {
	runs    []storage.RunMetadata
	cursor  int
	load    Loader
	viewer  *Viewer
	err     error
	loading bool
}

func NewPicker(runs []storage.RunMetadata, load Loader) Picker {
	return Picker{runs: runs, load: load}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(BackMsg); ok {
		p.viewer = nil
		return p, nil
	}
	if p.viewer != nil {
		m, cmd := p.viewer.Update(msg)
		v := m.(Viewer)
		p.viewer = &v
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.runs)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.runs) == 0 {
			return p, nil
		}
		v, err := p.load(p.runs[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		v.embedded = true
		p.viewer = &v
		p.err = nil
		return p, v.Init()
	}
	return p, nil
}

// Selected is the run under the cursor, if any.
func (p Picker) Selected() (storage.RunMetadata, bool) {
	if len(p.runs) == 0 {
		return storage.RunMetadata{}, false
	}
	return p.runs[p.cursor], true
}

func (p Picker) View() string {
	if p.viewer != nil {
		return p.viewer.View()
	}

	var b strings.Builder
	b.WriteString(Title.Render("STORED RUNS") + "\n\n")
	if len(p.runs) == 0 {
		b.WriteString(Subtle.Render("  no runs yet, try `tissueheat run all`") + "\n")
	}
	for i, r := range p.runs {
		line := fmt.Sprintf("%-20s %-9s q=%-5g rows=%d", r.ID, r.Scheme, r.Q, r.Rows)
		if i == p.cursor {
			b.WriteString(Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(Themes[0].Danger).Render("error: "+p.err.Error()) + "\n")
	}
	b.WriteString(KeyHint.Render("\n↑/↓:Select  Enter:Open  Esc:Back  Q:Quit"))
	return Panel.Render(b.String())
}

// RunPicker opens the picker full screen.
func RunPicker(p Picker) error {
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
