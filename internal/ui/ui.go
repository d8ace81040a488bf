package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/settings"
	"github.com/desertthunder/songbook/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	SongListView
	SongView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	catalog      *catalog.Catalog
	importer     *tasks.Importer
	source       services.Source
	prefs        settings.Settings
	filter       catalog.FilterSpec
	order        catalog.SortSpec
	width        int
	height       int
	songList     list.Model
	sheet        viewport.Model
	selected     *models.Song
	transpose    int
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI over cat.
//
// When both importer and src are set the catalog is (re)loaded from src on start and with the reload key;
// otherwise cat is browsed as is.
func NewModel(ctx context.Context, cat *catalog.Catalog, importer *tasks.Importer, src services.Source, prefs settings.Settings) *Model {
	if prefs == nil {
		prefs = settings.Defaults()
	}

	songList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songList.Title = "Songs"
	songList.DisableQuitKeybindings()
	songList.KeyMap.NextPage.SetKeys("right", "pgdown")
	songList.KeyMap.PrevPage.SetKeys("left", "pgup")

	m := &Model{
		ctx:      ctx,
		view:     SongListView,
		catalog:  cat,
		importer: importer,
		source:   src,
		prefs:    prefs,
		filter:   catalog.DefaultFilter(),
		order:    catalog.DefaultSort(),
		songList: songList,
		sheet:    viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.applyPrefs()
	return m
}

func (m *Model) canReload() bool {
	return m.importer != nil && m.source != nil
}

// Init loads the catalog from the source, or lists the songs already held.
func (m *Model) Init() tea.Cmd {
	if m.canReload() {
		return m.startImport()
	}
	return m.refresh()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-6)
		m.sheet.Width = msg.Width - 4
		m.sheet.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case SongListView:
			return m.handleListKeys(msg)
		case SongView:
			return m.handleSongKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateViews(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgCatalogLoaded:
		loaded := msg.data.(catalogLoaded)
		m.progressChan = nil
		m.doneChan = nil
		m.view = SongListView

		if loaded.err != nil {
			m.err = loaded.err
			if m.catalog.Len() > 0 {
				m.status = styles.err.Render(fmt.Sprintf("Reload failed: %v", loaded.err))
				m.err = nil
			}
			return m, nil
		}

		m.err = nil
		m.catalog.Replace(loaded.result.Songs)
		m.status = fmt.Sprintf("Loaded %d songs from %s", loaded.result.Imported, loaded.result.Source)
		if n := len(loaded.result.Failures); n > 0 {
			m.status += styles.warn.Render(fmt.Sprintf(" (%d skipped)", n))
		}
		return m, m.refresh()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case SongListView:
		return m.renderList()
	case SongView:
		return m.renderSong()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	// Typing a filter query must reach the list untouched.
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.openSong(item.song)
		}
		return m, nil
	case key.Matches(msg, m.keys.language):
		m.cycleLanguage()
		return m, m.refresh()
	case key.Matches(msg, m.keys.capo):
		m.toggle(settings.CapoRequired)
		return m, m.refresh()
	case key.Matches(msg, m.keys.sort):
		m.cycleSort()
		return m, m.refresh()
	case key.Matches(msg, m.keys.order):
		m.flipOrder()
		return m, m.refresh()
	case key.Matches(msg, m.keys.chords):
		m.toggle(settings.ShowChords)
		return m, nil
	case key.Matches(msg, m.keys.reload):
		if m.canReload() {
			return m, m.startImport()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleSongKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SongListView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.chords):
		m.toggle(settings.ShowChords)
		m.renderSheet()
		return m, nil
	case key.Matches(msg, m.keys.raise):
		m.transpose++
		m.renderSheet()
		return m, nil
	case key.Matches(msg, m.keys.lower):
		m.transpose--
		m.renderSheet()
		return m, nil
	}

	var cmd tea.Cmd
	m.sheet, cmd = m.sheet.Update(msg)
	return m, cmd
}

func (m *Model) updateViews(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	case SongView:
		m.sheet, cmd = m.sheet.Update(msg)
	}
	return m, cmd
}

// applyPrefs derives the active filter and sort field from the preferences.
func (m *Model) applyPrefs() {
	if lang, ok := m.prefs[settings.Language].AsString(); ok {
		m.filter.Language = lang
	}
	m.filter.CapoRequired = m.prefs.Bool(settings.CapoRequired)
	if name, ok := m.prefs[settings.SortField].AsString(); ok {
		if field, err := catalog.ParseSortField(name); err == nil {
			m.order.Field = field
		}
	}
}

func (m *Model) toggle(name settings.Name) {
	next, err := settings.Toggle(m.prefs, name)
	if err != nil {
		m.status = styles.err.Render(err.Error())
		return
	}
	m.prefs = next
	m.applyPrefs()
}

func (m *Model) set(name settings.Name, v settings.Value) {
	next, err := m.prefs.With(name, v)
	if err != nil {
		m.status = styles.err.Render(err.Error())
		return
	}
	m.prefs = next
	m.applyPrefs()
}

// cycleLanguage steps through "all" followed by the catalog's languages, most common first.
func (m *Model) cycleLanguage() {
	options := append([]string{catalog.All}, m.catalog.Aggregate().Languages()...)
	i := slices.Index(options, m.filter.Language)
	m.set(settings.Language, settings.String(options[(i+1)%len(options)]))
}

func (m *Model) cycleSort() {
	fields := catalog.SortFields()
	i := slices.Index(fields, m.order.Field)
	m.set(settings.SortField, settings.String(fields[(i+1)%len(fields)].String()))
}

func (m *Model) flipOrder() {
	if m.order.Order == catalog.Ascending {
		m.order.Order = catalog.Descending
	} else {
		m.order.Order = catalog.Ascending
	}
}

// refresh re-runs the current query and replaces the list items.
func (m *Model) refresh() tea.Cmd {
	songs, err := m.catalog.Query(m.filter, m.order)
	if err != nil {
		m.status = styles.err.Render(err.Error())
		return nil
	}
	m.songList.Title = fmt.Sprintf("Songs (%d of %d)", len(songs), m.catalog.Len())
	return m.songList.SetItems(songItems(songs))
}

func (m *Model) openSong(song models.Song) {
	m.selected = &song
	m.transpose = 0
	m.view = SongView
	m.renderSheet()
	m.sheet.GotoTop()
}

func (m *Model) renderSheet() {
	if m.selected == nil {
		return
	}
	song := m.selected.Transposed(m.transpose)
	m.sheet.SetContent(formatter.FormatSong(song, m.prefs.Bool(settings.ShowChords)))
}

func (m *Model) startImport() tea.Cmd {
	m.view = LoadingView
	m.progress = tasks.ProgressUpdate{Message: "Starting..."}
	m.progressChan = make(chan tasks.ProgressUpdate, 10)
	m.doneChan = make(chan Msg, 1)

	progress, done := m.progressChan, m.doneChan
	go func() {
		result, err := m.importer.Import(m.ctx, m.source, progress)
		done <- catalogLoadedMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case update := <-progress:
			return progressUpdateMsg(update)
		case msg := <-done:
			return msg
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) renderHeader() string {
	arrow := "↑"
	if m.order.Order == catalog.Descending {
		arrow = "↓"
	}

	chips := []string{
		styles.chip.Render("lang: " + m.filter.Language),
		styles.chip.Render("capo only: " + onOff(m.filter.CapoRequired)),
		styles.chip.Render(fmt.Sprintf("sort: %s %s", m.order.Field, arrow)),
		styles.chip.Render("chords: " + onOff(m.prefs.Bool(settings.ShowChords))),
	}

	agg := m.catalog.Aggregate()
	summary := fmt.Sprintf("%d songbooks • max range %s", len(agg.Songbooks), maxRange(agg))
	return strings.Join(chips, "") + "  " + styles.help.Render(summary)
}

func maxRange(agg catalog.Aggregate) string {
	if agg.MaxRangeSemitones == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d semitones", *agg.MaxRangeSemitones)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading Catalog")
	return fmt.Sprintf("%s\n\n%s\n%s", title, m.progress.Phase, m.progress.Message)
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.language, m.keys.capo, m.keys.sort, m.keys.order, m.keys.chords}
	if m.canReload() {
		helpKeys = append(helpKeys, m.keys.reload)
	}
	helpKeys = append(helpKeys, m.keys.quit)

	var status string
	if m.status != "" {
		status = "\n" + m.status
	}
	return fmt.Sprintf("%s\n%s%s\n\n%s", m.renderHeader(), m.songList.View(), status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSong() string {
	title := m.selected.Title
	if m.transpose != 0 {
		title = fmt.Sprintf("%s (%+d)", title, m.transpose)
	}

	helpKeys := []key.Binding{m.keys.raise, m.keys.lower, m.keys.chords, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(title), styles.sheet.Render(m.sheet.View()), m.help.ShortHelpView(helpKeys))
}
