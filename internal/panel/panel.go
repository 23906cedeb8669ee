// Package panel is the favorites management surface: a paginated list
// with note editing, deletion, export and preview triggers. Every
// action delegates to the store, export pipeline, or orchestrator.
package panel

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/uhhhh15/starmark/internal/export"
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/preview"
	"github.com/uhhhh15/starmark/internal/store"
	"github.com/uhhhh15/starmark/internal/types"
)

// PageSize is how many favorites one panel page shows.
const PageSize = 10

type mode int

const (
	modeList mode = iota
	modeNote
	modeConfirmDelete
	modeConfirmPrune
)

// Options configure the panel.
type Options struct {
	Host      *host.Local
	Store     *store.Store
	Writer    export.Writer
	ExportDir string
}

// previewFlag implements preview.UI with an atomic toggle the view
// reads to decide which controls to draw.
type previewFlag struct {
	active atomic.Bool
}

func (f *previewFlag) EnterPreviewMode() { f.active.Store(true) }
func (f *previewFlag) ExitPreviewMode()  { f.active.Store(false) }

// noticeNotifier forwards orchestration outcomes into the program as
// messages so the status line can show them.
type noticeNotifier struct {
	ch chan string
}

func (n noticeNotifier) Info(msg string)    { n.send("info: " + msg) }
func (n noticeNotifier) Warn(msg string)    { n.send("warn: " + msg) }
func (n noticeNotifier) Error(msg string)   { n.send("error: " + msg) }
func (n noticeNotifier) Success(msg string) { n.send(msg) }

func (n noticeNotifier) send(msg string) {
	select {
	case n.ch <- msg:
	default:
	}
}

type hostEventMsg struct{ ev host.Event }
type noticeMsg struct{ text string }
type previewDoneMsg struct{ err error }
type refreshMsg struct{}

// Model implements the panel UI.
type Model struct {
	hostConn *host.Local
	store    *store.Store
	orch     *preview.Orchestrator
	writer   export.Writer
	flag     *previewFlag
	notices  chan string
	events   <-chan host.Event
	cancelFn func()

	mode     mode
	page     int
	cursor   int
	records  []types.FavoriteRecord
	noteArea textarea.Model
	noteID   string
	status   string
	width    int
	height   int
}

// Run starts the panel UI.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	model.Close()
	return err
}

// NewModel builds the panel model and wires the orchestrator.
func NewModel(opts Options) (*Model, error) {
	flag := &previewFlag{}
	notices := make(chan string, 16)
	events, cancel := opts.Host.Bus().Subscribe()

	orch := preview.New(
		opts.Host,
		opts.Store,
		preview.DBMapping{DB: opts.Host.DB()},
		flag,
		noticeNotifier{ch: notices},
	)

	area := textarea.New()
	area.Placeholder = "note"
	area.SetHeight(3)
	area.ShowLineNumbers = false

	m := &Model{
		hostConn: opts.Host,
		store:    opts.Store,
		orch:     orch,
		writer:   opts.Writer,
		flag:     flag,
		notices:  notices,
		events:   events,
		cancelFn: cancel,
		noteArea: area,
	}
	m.reload()
	return m, nil
}

// Close releases the event subscription.
func (m *Model) Close() {
	if m.cancelFn != nil {
		m.cancelFn()
		m.cancelFn = nil
	}
}

func (m *Model) reload() {
	records, err := m.store.Collection()
	if err != nil {
		m.records = nil
		m.status = "no active conversation"
		return
	}
	m.records = store.SortedByIndex(records)
	if m.page > m.maxPage() {
		m.page = m.maxPage()
	}
	if m.cursor >= len(m.pageRecords()) {
		m.cursor = max(0, len(m.pageRecords())-1)
	}
}

func (m *Model) maxPage() int {
	if len(m.records) == 0 {
		return 0
	}
	return (len(m.records) - 1) / PageSize
}

func (m *Model) pageRecords() []types.FavoriteRecord {
	start := m.page * PageSize
	if start >= len(m.records) {
		return nil
	}
	end := min(start+PageSize, len(m.records))
	return m.records[start:end]
}

func (m *Model) selected() (types.FavoriteRecord, bool) {
	page := m.pageRecords()
	if m.cursor < 0 || m.cursor >= len(page) {
		return types.FavoriteRecord{}, false
	}
	return page[m.cursor], true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitEvent(), m.waitNotice())
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return hostEventMsg{ev: ev}
	}
}

func (m *Model) waitNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg{text: <-m.notices}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case hostEventMsg:
		return m.handleHostEvent(msg.ev)
	case noticeMsg:
		m.status = msg.text
		return m, m.waitNotice()
	case previewDoneMsg:
		if msg.err != nil {
			m.status = "preview failed: " + msg.err.Error()
		}
		m.reload()
		return m, nil
	case refreshMsg:
		m.reload()
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeNote:
			return m.updateNoteMode(msg)
		case modeConfirmDelete, modeConfirmPrune:
			return m.updateConfirmMode(msg)
		default:
			return m.updateListMode(msg)
		}
	}
	return m, nil
}

func (m *Model) handleHostEvent(ev host.Event) (tea.Model, tea.Cmd) {
	switch ev.Type {
	case host.EventMessageDeleted:
		if removed := m.store.HandleMessageDeleted(ev.Index); removed > 0 {
			m.status = fmt.Sprintf("removed %d favorite(s) for deleted message", removed)
		}
		m.reload()
	case host.EventConversationChanged:
		m.orch.HandleConversationChanged(ev.ConversationID)
		m.reload()
	case host.EventMessageReceived, host.EventMessageSent,
		host.EventMessageSwiped, host.EventMessageUpdated,
		host.EventMoreMessagesLoaded:
		m.reload()
	}
	return m, m.waitEvent()
}

func (m *Model) updateListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.pageRecords())-1 {
			m.cursor++
		}
	case "left", "p":
		if m.page > 0 {
			m.page--
			m.cursor = 0
		}
	case "right", "n":
		if m.page < m.maxPage() {
			m.page++
			m.cursor = 0
		}
	case "e":
		if rec, ok := m.selected(); ok {
			m.mode = modeNote
			m.noteID = rec.ID
			m.noteArea.SetValue(rec.Note)
			m.noteArea.Focus()
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	case "P":
		m.mode = modeConfirmPrune
	case "c":
		if rec, ok := m.selected(); ok {
			if msgAt, okMsg := m.resolve(rec); okMsg {
				if err := clipboard.WriteAll(msgAt.Body); err != nil {
					m.status = "clipboard: " + err.Error()
				} else {
					m.status = "copied message to clipboard"
				}
			} else {
				m.status = "message unavailable"
			}
		}
	case "t":
		m.export("txt")
	case "l":
		m.export("jsonl")
	case "w":
		m.export("worldbook")
	case "v":
		if m.flag.active.Load() {
			m.status = "preview already active"
			return m, nil
		}
		m.status = "building preview..."
		return m, func() tea.Msg {
			return previewDoneMsg{err: m.orch.Enter(context.Background())}
		}
	case "r":
		if !m.flag.active.Load() {
			m.status = "no preview to return from"
			return m, nil
		}
		return m, func() tea.Msg {
			return previewDoneMsg{err: m.orch.TriggerReturn()}
		}
	}
	return m, nil
}

func (m *Model) updateNoteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.noteArea.Blur()
		return m, nil
	case "enter":
		text := m.noteArea.Value()
		if err := m.store.UpdateNote(m.noteID, text); err != nil {
			m.status = "note: " + err.Error()
		} else {
			m.status = "note saved"
		}
		m.mode = modeList
		m.noteArea.Blur()
		m.reload()
		return m, nil
	}
	var cmd tea.Cmd
	m.noteArea, cmd = m.noteArea.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := msg.String() == "y" || msg.String() == "Y"
	prune := m.mode == modeConfirmPrune
	m.mode = modeList
	if !confirm {
		m.status = "cancelled"
		return m, nil
	}
	if prune {
		removed, err := m.store.PruneInvalid(m.hostConn.MessageCount(), func(i int) bool {
			_, ok := m.hostConn.MessageAt(i)
			return ok
		})
		if err != nil {
			m.status = "prune: " + err.Error()
		} else {
			m.status = fmt.Sprintf("pruned %d invalid favorite(s)", removed)
		}
	} else if rec, ok := m.selected(); ok {
		if m.store.RemoveByID(rec.ID) {
			m.status = "favorite removed"
		} else {
			m.status = "favorite not found"
		}
	}
	m.reload()
	return m, nil
}

func (m *Model) resolve(rec types.FavoriteRecord) (types.Message, bool) {
	idx, err := strconv.Atoi(rec.MessageID)
	if err != nil {
		return types.Message{}, false
	}
	return m.hostConn.MessageAt(idx)
}

func (m *Model) export(kind string) {
	src, err := export.Snapshot(m.hostConn, m.store)
	if err != nil {
		m.status = "export: " + err.Error()
		return
	}
	var path string
	switch kind {
	case "txt":
		path, err = m.writer.WriteText(src)
	case "jsonl":
		path, err = m.writer.WriteLines(src)
	default:
		path, err = m.writer.WriteWorldbook(src)
	}
	if err != nil {
		m.status = "export: " + err.Error()
		return
	}
	m.status = "wrote " + path
}
