package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"hlkit/internal/grammar"
	"hlkit/internal/highlight"
	"hlkit/internal/logger"
	"hlkit/internal/outline"
	"hlkit/internal/pubsub"
	"hlkit/internal/syntaxctl"
	"hlkit/internal/textrange"
	"hlkit/internal/watcher"
)

const outlinePaneWidth = 32

type grammarsChangedMsg watcher.Change

type savedMsg struct{ err error }

// model edits one document. The controller keeps its highlights and
// outline current; the model only mirrors what the controller publishes.
type model struct {
	app *app

	width  int
	height int

	path     string
	override string
	text     []rune
	cursor   int
	goalCol  int
	offset   int
	changed  bool

	ctrl       *syntaxctl.Controller
	syntaxName string
	highlights []highlight.Highlight
	items      outline.List

	hlEvents *pubsub.Listener[[]highlight.Highlight]
	olEvents *pubsub.Listener[outline.List]
	changes  <-chan watcher.Change

	view viewport.Model

	showOutline          bool
	filterFocused        bool
	filter               textinput.Model
	filtered             outline.List
	outlineCursor        int
	lastFilterQueryRunes []rune
	lastFilterItemN      int

	status string
	errMsg string
}

func newModel(ctx context.Context, a *app, doc document, changes <-chan watcher.Change) model {
	input := textinput.New()
	input.Prompt = "outline> "
	input.CharLimit = 128
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Accent))

	ctrl := syntaxctl.New(logger.NewContext(ctx, a.log), doc.Text, nil, a.controllerOptions()...)

	m := model{
		app:         a,
		path:        doc.Path,
		override:    doc.Override,
		text:        []rune(doc.Text),
		ctrl:        ctrl,
		hlEvents:    pubsub.NewListener[[]highlight.Highlight](ctx, subscriberFunc[[]highlight.Highlight](ctrl.SubscribeHighlights)),
		olEvents:    pubsub.NewListener[outline.List](ctx, subscriberFunc[outline.List](ctrl.SubscribeOutline)),
		changes:     changes,
		view:        viewport.New(0, 0),
		filter:      input,
		showOutline: true,
	}
	m.attach(doc.Grammar)
	return m
}

// subscriberFunc adapts a controller subscription method to pubsub.Subscriber.
type subscriberFunc[T any] func(context.Context) <-chan pubsub.Event[T]

func (f subscriberFunc[T]) Subscribe(ctx context.Context) <-chan pubsub.Event[T] { return f(ctx) }

func (m *model) attach(g grammar.Grammar) {
	m.ctrl.SetupParser(g)
	m.syntaxName = g.Name
}

func waitForChange(ch <-chan watcher.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return grammarsChangedMsg(c)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.hlEvents.Listen(), m.olEvents.Listen(), waitForChange(m.changes))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case pubsub.Event[[]highlight.Highlight]:
		m.highlights = msg.Payload
		return m, m.hlEvents.Listen()

	case pubsub.Event[outline.List]:
		m.items = msg.Payload
		if msg.Type == pubsub.ResetEvent {
			m.items = nil
		}
		m.refilter(true)
		return m, m.olEvents.Listen()

	case grammarsChangedMsg:
		m.reloadGrammars(watcher.Change(msg))
		return m, waitForChange(m.changes)

	case savedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else {
			m.changed = false
			m.status = "saved " + m.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) resize() {
	w := m.width
	if m.showOutline {
		w -= outlinePaneWidth + 1
	}
	m.view.Width = max(w, 1)
	m.view.Height = max(m.height-2, 1)
	m.scrollToCursor()
}

func (m *model) reloadGrammars(c watcher.Change) {
	names := c.Names()
	if err := m.app.reload(names); err != nil {
		m.errMsg = "reload grammars: " + err.Error()
	}
	m.status = fmt.Sprintf("reloaded %d grammar(s)", len(names))

	g, err := m.app.engine().Grammar(m.override, m.path, string(m.text))
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	for _, name := range names {
		if name == g.Name || name == m.syntaxName {
			m.attach(g)
			m.highlights = nil
			return
		}
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	if m.filterFocused {
		return m.handleFilterKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return m, tea.Quit
	case "ctrl+s":
		return m, saveCmd(m.path, string(m.text))
	case "ctrl+o":
		m.showOutline = !m.showOutline
		m.resize()
		return m, nil
	case "ctrl+f":
		m.showOutline = true
		m.filterFocused = true
		m.resize()
		return m, m.filter.Focus()
	case "ctrl+n":
		if it, ok := m.items.Next(textrange.Range{Start: m.cursor, End: m.cursor}); ok {
			m.moveTo(it.Range.Start)
		}
		return m, nil
	case "ctrl+p":
		if it, ok := m.items.Previous(textrange.Range{Start: m.cursor, End: m.cursor}); ok {
			m.moveTo(it.Range.Start)
		}
		return m, nil
	case "left":
		m.moveTo(m.cursor - 1)
	case "right":
		m.moveTo(m.cursor + 1)
	case "up":
		m.moveLines(-1)
	case "down":
		m.moveLines(1)
	case "pgup":
		m.moveLines(-m.view.Height)
	case "pgdown":
		m.moveLines(m.view.Height)
	case "home", "ctrl+a":
		m.moveTo(textrange.LineStart(m.text, m.cursor))
	case "end", "ctrl+e":
		m.moveTo(textrange.LineContentsEnd(m.text, m.cursor))
	case "backspace":
		if m.cursor > 0 {
			m.replace(m.cursor-1, m.cursor, nil)
		}
	case "delete":
		if m.cursor < len(m.text) {
			m.replace(m.cursor, m.cursor+1, nil)
		}
	case "enter":
		m.replace(m.cursor, m.cursor, []rune{'\n'})
	case "tab":
		m.replace(m.cursor, m.cursor, []rune{'\t'})
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.replace(m.cursor, m.cursor, msg.Runes)
		}
	}
	return m, nil
}

func (m model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filterFocused = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refilter(true)
		return m, nil
	case "enter":
		if m.outlineCursor < len(m.filtered) {
			m.moveTo(m.filtered[m.outlineCursor].Range.Start)
		}
		m.filterFocused = false
		m.filter.Blur()
		return m, nil
	case "up", "ctrl+p":
		m.outlineCursor = max(m.outlineCursor-1, 0)
		return m, nil
	case "down", "ctrl+n":
		m.outlineCursor = min(m.outlineCursor+1, max(len(m.filtered)-1, 0))
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter(false)
	return m, cmd
}

// refilter recomputes the outline pane. A query that only grew narrows the
// previous result instead of the whole outline.
func (m *model) refilter(itemsChanged bool) {
	query := []rune(m.filter.Value())
	if !itemsChanged && runesEqual(query, m.lastFilterQueryRunes) {
		return
	}
	source := m.items
	if !itemsChanged && shouldUseIncrementalFilter(query, m.lastFilterQueryRunes, len(m.items), m.lastFilterItemN) {
		source = m.filtered
	}
	m.filtered = source.Filter(string(query))
	m.lastFilterQueryRunes = copyRunesReuse(m.lastFilterQueryRunes, query)
	m.lastFilterItemN = len(m.items)
	m.outlineCursor = clamp(m.outlineCursor, 0, max(len(m.filtered)-1, 0))
}

func (m *model) replace(start, end int, ins []rune) {
	next := make([]rune, 0, len(m.text)-(end-start)+len(ins))
	next = append(next, m.text[:start]...)
	next = append(next, ins...)
	next = append(next, m.text[end:]...)
	m.text = next
	m.changed = true

	m.ctrl.Replace(start, end, ins)
	m.highlights = m.ctrl.Highlights()
	m.moveTo(start + len(ins))
}

func (m *model) moveTo(pos int) {
	m.cursor = clamp(pos, 0, len(m.text))
	m.goalCol = m.cursor - textrange.LineStart(m.text, m.cursor)
	m.scrollToCursor()
}

func (m *model) moveLines(n int) {
	pos := textrange.LineStart(m.text, m.cursor)
	for ; n < 0 && pos > 0; n++ {
		pos = textrange.LineStart(m.text, pos-1)
	}
	for ; n > 0; n-- {
		next := textrange.LineEnd(m.text, pos)
		if next == len(m.text) && (next == 0 || m.text[next-1] != '\n') {
			break
		}
		pos = next
	}
	goal := m.goalCol
	m.cursor = min(pos+goal, textrange.LineContentsEnd(m.text, pos))
	m.goalCol = goal
	m.scrollToCursor()
}

func (m *model) scrollToCursor() {
	line := textrange.LineNumber(m.text, m.cursor) - 1
	if line < m.offset {
		m.offset = line
	}
	if h := m.view.Height; h > 0 && line >= m.offset+h {
		m.offset = line - h + 1
	}
}

func saveCmd(path, text string) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(path)
		mode := os.FileMode(0o644)
		if err == nil {
			mode = info.Mode().Perm()
		}
		return savedMsg{err: os.WriteFile(path, []byte(text), mode)}
	}
}

func runEditor(ctx context.Context, a *app, doc document) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var changes <-chan watcher.Change
	if a.cfg.Grammars != "" {
		w, err := watcher.New(watcher.DefaultConfig(a.cfg.Grammars), a.log)
		if err == nil {
			changes, err = w.Start()
			defer func() { _ = w.Stop() }()
		}
		if err != nil {
			a.log.Warn("grammar hot reload disabled", zap.Error(err))
		}
	}

	m := newModel(ctx, a, doc, changes)
	defer m.ctrl.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
