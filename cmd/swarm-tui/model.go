package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/pipeswarm/pkg/simulation"
	"github.com/dd0wney/pipeswarm/pkg/stream"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AFFF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0087AF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF87")).
			Padding(0, 2)

	barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF87"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	agentsView view = iota
	meetingsView
	viewCount
)

type keyMap struct {
	Tab   key.Binding
	Play  key.Binding
	Prev  key.Binding
	Next  key.Binding
	First key.Binding
	Last  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch view"),
	),
	Play: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev turn"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next turn"),
	),
	First: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first"),
	),
	Last: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Prev, k.Next, k.Tab, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Prev, k.Next},
		{k.First, k.Last, k.Tab},
		{k.Quit},
	}
}

// eventMsg carries one live stream event, or the error that ended the stream
type eventMsg struct {
	ev  *stream.Event
	err error
}

type tickMsg time.Time

type model struct {
	source  string
	runID   string
	records []simulation.TurnRecord
	cursor  int
	state   string
	playing bool
	live    *stream.Subscriber
	speed   time.Duration

	currentView view
	agentTable  table.Model
	help        help.Model
	keys        keyMap
	width       int
	err         error
}

func newModel(source, runID string, records []simulation.TurnRecord) model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Agent", Width: 6},
			{Title: "Node", Width: 16},
			{Title: "Leader", Width: 7},
			{Title: "Idle", Width: 5},
		}),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00AFFF")).
		BorderBottom(true).
		Bold(true)
	t.SetStyles(s)

	m := model{
		source:     source,
		runID:      runID,
		records:    records,
		speed:      300 * time.Millisecond,
		agentTable: t,
		help:       help.New(),
		keys:       keys,
	}
	m.refresh()
	return m
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitEvent(sub *stream.Subscriber) tea.Cmd {
	return func() tea.Msg {
		for {
			ev, err := sub.Next(time.Second)
			if errors.Is(err, stream.ErrTimeout) {
				continue
			}
			return eventMsg{ev: ev, err: err}
		}
	}
}

func (m model) Init() tea.Cmd {
	if m.live != nil {
		return waitEvent(m.live)
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.cursor >= len(m.records)-1 {
			m.playing = false
			return m, nil
		}
		m.cursor++
		m.refresh()
		return m, tickCmd(m.speed)

	case eventMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.apply(msg.ev)
		if msg.ev.Kind == "done" {
			return m, nil
		}
		return m, waitEvent(m.live)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
		case key.Matches(msg, m.keys.Play):
			m.playing = !m.playing
			if m.playing {
				if m.cursor >= len(m.records)-1 {
					m.cursor = 0
					m.refresh()
				}
				return m, tickCmd(m.speed)
			}
		case key.Matches(msg, m.keys.Prev):
			m.step(-1)
		case key.Matches(msg, m.keys.Next):
			m.step(1)
		case key.Matches(msg, m.keys.First):
			m.cursor = 0
			m.refresh()
		case key.Matches(msg, m.keys.Last):
			m.cursor = max(len(m.records)-1, 0)
			m.refresh()
		}
	}
	return m, nil
}

// apply folds a live event into the model. The cursor follows the newest
// turn unless the user has stepped back.
func (m *model) apply(ev *stream.Event) {
	if m.runID != ev.RunID {
		m.runID = ev.RunID
		m.records = nil
		m.cursor = 0
	}
	m.state = ev.State
	if ev.Record == nil {
		return
	}
	following := m.cursor >= len(m.records)-1
	m.records = append(m.records, *ev.Record)
	if following {
		m.cursor = len(m.records) - 1
	}
	m.refresh()
}

func (m *model) step(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.records) {
		return
	}
	m.cursor = next
	m.refresh()
}

func (m *model) current() *simulation.TurnRecord {
	if len(m.records) == 0 {
		return nil
	}
	return &m.records[m.cursor]
}

// refresh rebuilds the agent table for the record under the cursor
func (m *model) refresh() {
	rec := m.current()
	if rec == nil {
		m.agentTable.SetRows(nil)
		return
	}
	leaders := make(map[int]bool, len(rec.Leaders))
	for _, id := range rec.Leaders {
		leaders[id] = true
	}
	idle := make(map[int]bool, len(rec.Idle))
	for _, id := range rec.Idle {
		idle[id] = true
	}

	rows := make([]table.Row, len(rec.Positions))
	for id, node := range rec.Positions {
		rows[id] = table.Row{strconv.Itoa(id), node, mark(leaders[id]), mark(idle[id])}
	}
	m.agentTable.SetRows(rows)
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("pipeswarm replay  " + m.source))
	b.WriteString("\n")

	tabs := []string{"Agents", "Meetings"}
	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if view(i) == m.currentView {
			rendered[i] = activeTabStyle.Render(t)
		} else {
			rendered[i] = inactiveTabStyle.Render(t)
		}
	}
	b.WriteString(contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...)))
	b.WriteString("\n")

	rec := m.current()
	if rec == nil {
		b.WriteString(contentStyle.Render("waiting for turns..."))
	} else {
		b.WriteString(contentStyle.Render(m.statsBox(rec)))
		b.WriteString("\n")
		switch m.currentView {
		case agentsView:
			b.WriteString(contentStyle.Render(m.agentTable.View()))
		case meetingsView:
			b.WriteString(contentStyle.Render(m.meetingLog()))
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(contentStyle.Render(errorStyle.Render(m.err.Error())))
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m model) statsBox(rec *simulation.TurnRecord) string {
	state := m.state
	if state == "" {
		state = "replay"
	}
	lines := []string{
		fmt.Sprintf("run      %s", m.runID),
		fmt.Sprintf("turn     %d / %d", rec.Turn, m.records[len(m.records)-1].Turn),
		fmt.Sprintf("state    %s", state),
		fmt.Sprintf("coverage %s %.1f%%", coverageBar(rec.Coverage, 20), rec.Coverage*100),
	}
	return statsBoxStyle.Render(strings.Join(lines, "\n"))
}

func coverageBar(c float64, width int) string {
	filled := int(c*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return barStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}

// meetingLog lists meetings up to and including the current turn, newest first
func (m model) meetingLog() string {
	var lines []string
	for i := m.cursor; i >= 0 && len(lines) < 12; i-- {
		rec := m.records[i]
		for _, mt := range rec.Meetings {
			line := fmt.Sprintf("turn %3d  %v at %s  leader %d", rec.Turn, mt.Members, strings.Join(mt.Nodes, ","), mt.Leader)
			if len(mt.Assignments) > 0 {
				ids := make([]int, 0, len(mt.Assignments))
				for id := range mt.Assignments {
					ids = append(ids, id)
				}
				sort.Ints(ids)
				parts := make([]string, len(ids))
				for j, id := range ids {
					parts[j] = fmt.Sprintf("%d:%s", id, mt.Assignments[id])
				}
				line += "  tasks " + strings.Join(parts, " ")
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "no meetings yet"
	}
	return strings.Join(lines, "\n")
}
