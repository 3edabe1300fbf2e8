// Package preview is a terminal piano roll for trying generator plugins
// without the host application.
package preview

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/export"
	"github.com/aurora-melody/sdk/sdk/melody"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/plugin"
	"github.com/aurora-melody/sdk/sdk/theory"
)

// ErrNothingToExport is reported when "e" is pressed on an empty roll.
var ErrNothingToExport = errors.New("nothing to export")

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f55"))
)

// Model cycles through plugins and draws what the current one generates.
type Model struct {
	plugins  []contracts.Plugin
	opts     Options
	current  int
	notes    []note.MidiNote
	status   string
	err      error
	quitting bool
}

// New builds the model and runs the first plugin.
func New(plugins []contracts.Plugin, opts ...Option) Model {
	m := Model{plugins: plugins, opts: applyDefaultOptions(opts...)}
	m.generate()
	return m
}

// Notes returns the notes on screen.
func (m Model) Notes() []note.MidiNote { return m.notes }

// Current returns the index of the selected plugin.
func (m Model) Current() int { return m.current }

// Status returns the last status line.
func (m Model) Status() string { return m.status }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			if len(m.plugins) > 0 {
				m.current = (m.current + 1) % len(m.plugins)
				m.generate()
			}

		case "shift+tab":
			if len(m.plugins) > 0 {
				m.current = (m.current + len(m.plugins) - 1) % len(m.plugins)
				m.generate()
			}

		case "r":
			m.generate()

		case "g":
			m.notes = melody.QuantizeNotes(m.notes, melody.Grid16th, false)
			m.status = "quantized to 1/16"

		case "h":
			m.notes = melody.Humanize(m.opts.Rand, m.notes, melody.DefaultHumanizeConfig())
			m.status = "humanized"

		case "o":
			before := len(m.notes)
			m.notes = melody.RemoveOverlaps(m.notes)
			m.status = fmt.Sprintf("removed overlaps (%d dropped)", before-len(m.notes))

		case "+", "=":
			m.opts.BeatsPerCol = max(melody.Grid64th, m.opts.BeatsPerCol/2)

		case "-", "_":
			m.opts.BeatsPerCol = min(melody.GridWhole, m.opts.BeatsPerCol*2)

		case "e":
			path, err := m.export()
			m.err = err
			if err == nil {
				m.status = "wrote " + path
			}
		}

	case tea.WindowSizeMsg:
		m.opts.Columns = max(16, msg.Width-6)
	}

	return m, nil
}

func (m *Model) generate() {
	m.err = nil
	if len(m.plugins) == 0 {
		m.notes, m.status = nil, "no plugins"
		return
	}
	p := m.plugins[m.current]
	notes, err := plugin.Run(p, m.opts.Context, plugin.WithLogger(m.opts.Logger))
	if err != nil {
		m.notes, m.err = nil, err
		return
	}
	m.notes = notes
	m.status = fmt.Sprintf("generated %d notes", len(notes))
}

func (m Model) pluginName() string {
	if len(m.plugins) == 0 {
		return ""
	}
	info, _ := plugin.Describe(m.plugins[m.current])
	return info.Name
}

// export writes the notes to <export dir>/<plugin-name>.mid.
func (m Model) export() (string, error) {
	if len(m.notes) == 0 {
		return "", ErrNothingToExport
	}
	name := strings.ToLower(strings.Join(strings.Fields(m.pluginName()), "-"))
	if name == "" {
		name = "preview"
	}
	path := filepath.Join(m.opts.ExportDir, name+".mid")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	cfg := export.DefaultSMFConfig()
	cfg.TempoBPM = m.opts.Context.TempoBPM
	cfg.TrackName = m.pluginName()
	if err := export.WriteSMF(f, m.notes, cfg); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	m.opts.Logger.Info("exported", m.opts.Logger.Field().String("path", path), m.opts.Logger.Field().Int("notes", len(m.notes)))
	return path, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("aurora-preview  %s  (%d/%d)  %d notes  %gbpm",
		m.pluginName(), m.current+1, len(m.plugins), len(m.notes), m.opts.Context.TempoBPM)))
	out.WriteString("\n\n")
	out.WriteString(m.grid())
	out.WriteString("\n")

	if m.err != nil {
		out.WriteString(errorStyle.Render("error: " + m.err.Error()))
	} else {
		out.WriteString(statusStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("tab:next plugin  r:regenerate  g:quantize  h:humanize  o:remove overlaps  +/-:zoom  e:export .mid  q:quit"))
	return out.String()
}

// grid draws one row per pitch between the lowest and highest note, highest
// first. ● marks a start, ─ a sustain and ═ overlapping notes.
func (m Model) grid() string {
	if len(m.notes) == 0 {
		return dimStyle.Render("(no notes)") + "\n"
	}

	lo, hi := note.MaxNumber, note.MinNumber
	start := m.notes[0].StartBeat
	for _, n := range m.notes {
		lo, hi = min(lo, n.NoteNumber), max(hi, n.NoteNumber)
		start = min(start, n.StartBeat)
	}
	if hi-lo+1 > maxRows {
		lo = hi - maxRows + 1
	}
	start = math.Floor(start/m.opts.BeatsPerCol) * m.opts.BeatsPerCol
	barBeats := m.opts.Context.BeatsPerBar()

	var out strings.Builder
	for pitch := hi; pitch >= lo; pitch-- {
		name, _ := theory.FromMidi(pitch)
		out.WriteString(labelStyle.Render(fmt.Sprintf("%-4s", name)))

		var row strings.Builder
		for col := 0; col < m.opts.Columns; col++ {
			colStart := start + float64(col)*m.opts.BeatsPerCol
			colEnd := colStart + m.opts.BeatsPerCol

			sounding, starts := 0, false
			for _, n := range m.notes {
				if n.NoteNumber != pitch || n.StartBeat >= colEnd || n.EndBeat() <= colStart {
					continue
				}
				sounding++
				if n.StartBeat >= colStart {
					starts = true
				}
			}

			switch {
			case starts:
				row.WriteString(noteStyle.Render("●"))
			case sounding > 1:
				row.WriteString(noteStyle.Render("═"))
			case sounding == 1:
				row.WriteString(noteStyle.Render("─"))
			case barBeats > 0 && isMultiple(colStart, barBeats):
				row.WriteString(dimStyle.Render("┆"))
			default:
				row.WriteString(dimStyle.Render("·"))
			}
		}
		out.WriteString(row.String())
		out.WriteString("\n")
	}
	return out.String()
}

func isMultiple(beat, of float64) bool {
	q := beat / of
	return q == float64(int64(q))
}
