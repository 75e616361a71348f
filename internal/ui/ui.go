package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/sonic57/internal/app"
	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/playback"
	"github.com/desertthunder/sonic57/internal/shared"
	"github.com/desertthunder/sonic57/internal/tasks"
)

const (
	tickInterval = 500 * time.Millisecond
	seekStep     = 10 * time.Second
	volumeStep   = 0.05
	homeLatest   = 5
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	app     *app.App
	section Section
	width   int
	height  int

	started  bool
	syncErr  error
	tracks   list.Model
	genres   list.Model
	genre    string
	form     ingestForm
	formOpen bool

	ingestProgress <-chan tasks.ProgressUpdate
	ingestDone     <-chan ingestResult
	ingestUpdate   *tasks.ProgressUpdate

	status string
	err    error

	bar  progress.Model
	help help.Model
	keys keyMap
}

// NewModel creates a TUI model over a, which is started by [Model.Init].
func NewModel(ctx context.Context, a *app.App) *Model {
	return &Model{
		ctx:     ctx,
		app:     a,
		section: Home,
		tracks:  newList("Tracks"),
		genres:  newList("Genres"),
		form:    newIngestForm(),
		bar:     progress.New(progress.WithSolidFill("#F5F5F5"), progress.WithoutPercentage()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the catalog and library and starts the player clock.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStarted:
		m.started = true
		m.syncErr = errOf(msg.data)
		m.refresh()
		return m, nil

	case MsgPlayback:
		if err := errOf(msg.data); err != nil && !errors.Is(err, shared.ErrSuperseded) {
			m.err = err
		}
		m.refresh()
		return m, nil

	case MsgAction:
		res := msg.data.(actionResult)
		m.status, m.err = res.status, res.err
		if res.err == nil && m.syncErr != nil && len(m.app.Tracks()) > 0 {
			m.syncErr = nil
		}
		m.refresh()
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.ingestUpdate = &update
		return m, waitForProgress(m.ingestProgress, m.ingestDone)

	case MsgIngestComplete:
		res := msg.data.(ingestResult)
		m.ingestProgress, m.ingestDone, m.ingestUpdate = nil, nil, nil
		if res.err != nil {
			m.err = res.err
			if res.track == nil {
				return m, nil
			}
		} else {
			m.err = nil
		}
		m.status = fmt.Sprintf("Committed %q as track %s", res.track.Title, res.track.ID)
		m.form.Reset()
		m.formOpen = false
		m.refresh()
		return m, nil

	case MsgTick:
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formOpen {
		return m.handleFormKeys(msg)
	}
	if m.filtering() {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.sections):
		m.show(AllSections()[int(msg.Runes[0]-'1')])
		return m, nil
	case key.Matches(msg, m.keys.nextTab):
		m.show(m.section.next(1))
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.show(m.section.next(-1))
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.playback(m.app.Transport().TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.playback(m.app.Transport().Next)
	case key.Matches(msg, m.keys.prev):
		return m, m.playback(m.app.Transport().Previous)
	case key.Matches(msg, m.keys.seekBack):
		return m, m.playback(m.seekBy(-seekStep))
	case key.Matches(msg, m.keys.seekFwd):
		return m, m.playback(m.seekBy(seekStep))
	case key.Matches(msg, m.keys.volUp):
		m.app.Transport().SetVolume(m.app.Transport().Volume() + volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.volDown):
		m.app.Transport().SetVolume(m.app.Transport().Volume() - volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.seed):
		return m, m.seed()
	}

	if m.section == Genres && m.genre == "" {
		if key.Matches(msg, m.keys.enter) {
			if g, ok := m.genres.SelectedItem().(genreItem); ok {
				m.genre = g.name
				m.refresh()
				m.tracks.Select(0)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.genres, cmd = m.genres.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.back) && m.section == Genres:
		m.genre = ""
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if tr, ok := m.selected(); ok {
			return m, m.playback(func(ctx context.Context) error { return m.app.Select(ctx, tr) })
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if tr, ok := m.selected(); ok {
			return m, m.addToLibrary(tr)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove) && m.section == Library:
		if tr, ok := m.selected(); ok {
			return m, m.removeFromLibrary(tr)
		}
		return m, nil
	case key.Matches(msg, m.keys.delete) && m.section == Admin:
		if tr, ok := m.selected(); ok {
			return m, m.deleteTrack(tr)
		}
		return m, nil
	case key.Matches(msg, m.keys.form) && m.section == Admin:
		m.formOpen = true
		m.err, m.status = nil, ""
		return m, m.form.Focus()
	}

	return m.updateLists(msg)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ingestProgress != nil {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.formOpen = false
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		return m, m.form.move(1)
	case "shift+tab", "up":
		return m, m.form.move(-1)
	case "ctrl+s":
		return m, m.startIngest()
	case "enter":
		if m.form.last() {
			return m, m.startIngest()
		}
		return m, m.form.move(1)
	}
	return m, m.form.Update(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.section == Genres && m.genre == "" {
		m.genres, cmd = m.genres.Update(msg)
		return m, cmd
	}
	if m.listed() {
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

func (m *Model) filtering() bool {
	if m.section == Genres && m.genre == "" {
		return m.genres.FilterState() == list.Filtering
	}
	return m.listed() && m.tracks.FilterState() == list.Filtering
}

// show switches the active section.
func (m *Model) show(s Section) {
	m.section = s
	m.genre = ""
	m.formOpen = false
	m.refresh()
	m.tracks.ResetSelected()
}

// listed reports whether the section body is a track list.
func (m *Model) listed() bool {
	switch m.section {
	case Home, Discover, Library, Admin:
		return true
	case Genres:
		return m.genre != ""
	default:
		return false
	}
}

// sectionTracks returns the tracks the active section lists.
func (m *Model) sectionTracks() []models.Track {
	switch m.section {
	case Home:
		tracks := m.app.Tracks()
		return tracks[:min(len(tracks), homeLatest)]
	case Discover, Admin:
		return m.app.Tracks()
	case Genres:
		return m.app.TracksByGenre(m.genre)
	case Library:
		return m.app.Library()
	default:
		return nil
	}
}

// refresh rebuilds list items from the app's current state.
func (m *Model) refresh() {
	var current string
	if snap := m.app.Transport().Snapshot(); snap.Track != nil {
		current = snap.Track.ID
	}

	tracks := m.sectionTracks()
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t, saved: m.app.InLibrary(t.ID), current: t.ID == current}
	}
	m.tracks.SetItems(items)
	m.tracks.Title = m.listTitle()

	genres := m.app.Genres()
	gitems := make([]list.Item, len(genres))
	for i, g := range genres {
		gitems[i] = genreItem{name: g, count: len(m.app.TracksByGenre(g))}
	}
	m.genres.SetItems(gitems)
}

func (m *Model) listTitle() string {
	switch m.section {
	case Home:
		return "Latest Arrivals"
	case Genres:
		return m.genre
	case Library:
		return "The Vault"
	case Admin:
		return "Catalog"
	default:
		return "All Tracks"
	}
}

func (m *Model) selected() (models.Track, bool) {
	if !m.listed() {
		return models.Track{}, false
	}
	item, ok := m.tracks.SelectedItem().(trackItem)
	if !ok {
		return models.Track{}, false
	}
	return item.track, true
}

func (m *Model) resize() {
	w, h := max(m.width-4, 20), max(m.height-12, 5)
	m.tracks.SetSize(w, h)
	m.genres.SetSize(w, h)
	m.bar.Width = max(m.width-30, 10)
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg(m.app.Start(m.ctx))
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) playback(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return playbackMsg(fn(m.ctx))
	}
}

func (m *Model) seekBy(delta time.Duration) func(context.Context) error {
	return func(context.Context) error {
		return m.app.Transport().SeekBy(delta)
	}
}

func (m *Model) addToLibrary(tr models.Track) tea.Cmd {
	return func() tea.Msg {
		added, err := m.app.AddToLibrary(m.ctx, tr)
		if err != nil {
			return actionMsg("", err)
		}
		if !added {
			return actionMsg(fmt.Sprintf("%q is already in the vault", tr.Title), nil)
		}
		return actionMsg(fmt.Sprintf("Added %q to the vault", tr.Title), nil)
	}
}

func (m *Model) removeFromLibrary(tr models.Track) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.app.RemoveFromLibrary(m.ctx, tr.ID); err != nil {
			return actionMsg("", err)
		}
		return actionMsg(fmt.Sprintf("Removed %q from the vault", tr.Title), nil)
	}
}

func (m *Model) deleteTrack(tr models.Track) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.DeleteTrack(m.ctx, tr.ID); err != nil {
			return actionMsg("", err)
		}
		return actionMsg(fmt.Sprintf("Deleted %q from the catalog", tr.Title), nil)
	}
}

func (m *Model) seed() tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Seed(m.ctx)
		if err != nil {
			return actionMsg("", err)
		}
		if res.Count > 0 {
			return actionMsg(fmt.Sprintf("%s (%d tracks)", res.Message, res.Count), nil)
		}
		return actionMsg(res.Message, nil)
	}
}

func (m *Model) startIngest() tea.Cmd {
	draft := m.form.Draft()
	if err := draft.Validate(); err != nil {
		m.err = err
		return nil
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan ingestResult, 1)
	m.ingestProgress, m.ingestDone = progress, done
	m.err, m.status = nil, ""

	go func() {
		tr, err := m.app.Ingest(m.ctx, draft, progress)
		done <- ingestResult{tr, err}
		close(progress)
	}()

	return waitForProgress(progress, done)
}

func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan ingestResult) tea.Cmd {
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			res := <-done
			return ingestCompleteMsg(res.track, res.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current section.
func (m *Model) View() string {
	if !m.started {
		return styles.help.Render("Loading catalog…")
	}

	parts := []string{m.renderTabs(), m.renderBanner(), m.renderBody(), m.renderPlayer(), m.help.View(m.keys)}
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(AllSections()))
	for i, s := range AllSections() {
		label := fmt.Sprintf("%d %s", i+1, s)
		if s == m.section {
			tabs = append(tabs, styles.active.Render(label))
		} else {
			tabs = append(tabs, styles.tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderBanner() string {
	switch {
	case m.err != nil:
		return styles.err.Render("Error: " + m.err.Error())
	case m.status != "":
		return styles.ok.Render(m.status)
	case m.syncErr != nil:
		return styles.warn.Render("Catalog offline, showing cached tracks: " + m.syncErr.Error())
	default:
		return ""
	}
}

// renderBody draws the active section. Every section must be handled here.
func (m *Model) renderBody() string {
	switch m.section {
	case Home:
		return m.renderHome()
	case Discover:
		return m.renderTrackList()
	case Genres:
		if m.genre == "" {
			if len(m.genres.Items()) == 0 {
				return m.renderEmptyCatalog()
			}
			return m.genres.View()
		}
		return m.renderTrackList()
	case Library:
		if len(m.tracks.Items()) == 0 {
			return styles.help.Render("The vault is empty. Press a on any track to keep it here.")
		}
		return m.tracks.View()
	case Manifesto:
		return renderManifesto()
	case Research:
		return renderResearch()
	case Resources:
		return renderResources()
	case Contact:
		return renderContact()
	case Admin:
		return m.renderAdmin()
	default:
		panic(fmt.Sprintf("ui: no view for section %d", int(m.section)))
	}
}

func (m *Model) renderHome() string {
	featured, ok := m.app.Featured()
	if !ok {
		return m.renderEmptyCatalog()
	}
	hero := lipgloss.JoinVertical(lipgloss.Left,
		styles.help.Render("Featured"),
		styles.title.Render(featured.Title),
		fmt.Sprintf("%s • %s • %s", featured.Artist, featured.Album, featured.Genre),
	)
	return hero + "\n\n" + m.tracks.View()
}

func (m *Model) renderTrackList() string {
	if len(m.tracks.Items()) == 0 {
		return m.renderEmptyCatalog()
	}
	return m.tracks.View()
}

func (m *Model) renderEmptyCatalog() string {
	return styles.warn.Render("The catalog is empty.") + "\n" +
		styles.help.Render("Press s to seed it with the starter tracks.")
}

func (m *Model) renderAdmin() string {
	if m.formOpen {
		header := styles.title.Render("Ingest Track")
		if m.ingestUpdate != nil {
			u := m.ingestUpdate
			return header + "\n" + styles.warn.Render(fmt.Sprintf("[%s] %s", u.Phase, u.Message))
		}
		hint := m.help.ShortHelpView([]key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "commit")),
			m.keys.back,
		})
		return header + "\n" + m.form.View() + "\n" + hint
	}

	hint := m.help.ShortHelpView([]key.Binding{m.keys.form, m.keys.delete, m.keys.seed})
	return m.renderTrackList() + "\n" + hint
}

func (m *Model) renderPlayer() string {
	snap := m.app.Transport().Snapshot()
	if snap.Track == nil {
		return styles.bar.Render(styles.help.Render("Nothing selected"))
	}

	state := "❚❚"
	if snap.Playing {
		state = "▶"
	}
	if snap.Loading {
		state = "…"
	}

	line := fmt.Sprintf("%s %s · %s", state, snap.Track.Title, snap.Track.Artist)
	clock := fmt.Sprintf("%s / %s", shared.FormatDuration(snap.Position), totalOf(snap))
	vol := fmt.Sprintf("vol %d%%", int(snap.Volume*100+0.5))
	return styles.bar.Render(lipgloss.JoinVertical(lipgloss.Left,
		line,
		fmt.Sprintf("%s %s  %s", m.bar.ViewAs(snap.Progress()), clock, styles.help.Render(vol)),
	))
}

func totalOf(snap playback.Snapshot) string {
	if snap.Duration > 0 {
		return shared.FormatDuration(snap.Duration)
	}
	if snap.Track != nil && snap.Track.Duration != "" {
		return snap.Track.Duration
	}
	return "--:--"
}
