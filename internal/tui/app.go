// Package tui is the terminal front end: a page grid with lazy thumbnails, a
// page viewer, and prompts for opening and extracting. It is the host loop of
// a session.Session; every session event is dispatched from Update.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfplanner/internal/apperr"
	"github.com/local/pdfplanner/internal/fileutil"
	"github.com/local/pdfplanner/internal/metrics"
	"github.com/local/pdfplanner/internal/selection"
	"github.com/local/pdfplanner/internal/session"
	"github.com/local/pdfplanner/internal/tui/keymap"
	"github.com/local/pdfplanner/internal/tui/styles"
	"github.com/local/pdfplanner/internal/watch"
)

// Prefs is the part of the preference store the UI reads and writes.
type Prefs interface {
	RecentFiles() []string
	LastInputDir() string
	OutputPath(filename string) string
	Theme() string
	SetTheme(theme string)
}

// Options configures an App.
type Options struct {
	Prefs Prefs

	// ThumbWidth is the initial thumbnail width in pixels.
	ThumbWidth int
	// Tick is the pause between thumbnail batches.
	Tick time.Duration

	// Watch reloads the document when its file changes on disk.
	Watch         bool
	WatchDebounce time.Duration

	// File is opened on start when set.
	File string
}

type mode int

const (
	modeGrid mode = iota
	modeViewer
	modeOpen
	modeSave
	modeRange
	modeConfirm
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// App is the root tea.Model.
type App struct {
	session *session.Session
	prefs   Prefs
	opts    Options

	keys   *keymap.KeyMap
	styles *styles.Styles
	help   help.Model
	bar    progress.Model
	input  textinput.Model

	width, height int
	ready         bool
	layout        layout
	artCols       int

	mode   mode
	cursor int
	top    int
	view   viewer
	art    map[int]artEntry

	// last viewport sent to the loader
	first, last int

	confirmPath string

	status     string
	statusKind statusKind

	loaderQueued  bool
	extractQueued bool

	watcher *watch.Watcher
}

// Verify App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the UI over s.
func NewApp(s *session.Session, opts Options) *App {
	if opts.Tick <= 0 {
		opts.Tick = 15 * time.Millisecond
	}
	artCols := defaultArtCols
	if opts.ThumbWidth > 0 {
		artCols = opts.ThumbWidth / pxPerCol
	}

	theme := styles.Dark
	if opts.Prefs != nil {
		theme = opts.Prefs.Theme()
	}

	a := &App{
		session: s,
		prefs:   opts.Prefs,
		opts:    opts,
		keys:    keymap.DefaultKeyMap(),
		styles:  styles.NewStyles(styles.ByName(theme)),
		help:    help.New(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		input:   newInput(),
		width:   80,
		height:  24,
		artCols: artCols,
		art:     make(map[int]artEntry),
		first:   0,
		last:    -1,
		view:    viewer{zoom: defaultZoom},
	}
	a.layout = newLayout(a.width, a.height, a.artCols)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("pdfplanner")}
	if a.opts.File != "" {
		path := a.opts.File
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		cmds = append(cmds, func() tea.Msg { return openFileMsg{Path: path} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, a.relayout()

	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case openFileMsg:
		return a, a.dispatch(session.FileSelected{Path: msg.Path})

	case loaderTickMsg:
		a.loaderQueued = false
		return a, a.dispatch(session.LoaderTick{})

	case extractTickMsg:
		a.extractQueued = false
		return a, a.dispatch(session.ExtractTick{})

	case sourceChangedMsg:
		if msg.watcher != a.watcher {
			return a, nil
		}
		cmd := a.dispatch(session.SourceChanged{Path: msg.Change.Path, Removed: msg.Change.Removed})
		return a, tea.Batch(cmd, waitForChange(a.watcher))
	}
	return a, nil
}

// SetDimensions sets the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.help.Width = width
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool { return a.ready }

// Close stops watching the source file.
func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
		a.watcher = nil
	}
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := msg.String()
	if k == "ctrl+c" {
		a.Close()
		return tea.Quit
	}

	switch a.mode {
	case modeOpen, modeSave, modeRange:
		return a.updatePrompt(msg)
	case modeConfirm:
		return a.updateConfirm(msg)
	case modeViewer:
		return a.updateViewer(k)
	}
	return a.updateGrid(k)
}

func (a *App) updateGrid(k string) tea.Cmd {
	keys := a.keys
	doc := a.session.Doc()

	switch {
	case keymap.Matches(k, keys.Quit):
		a.Close()
		return tea.Quit
	case keymap.Matches(k, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	case keymap.Matches(k, keys.Open):
		return a.openPrompt(modeOpen)
	case keymap.Matches(k, keys.Theme):
		a.toggleTheme()
		return nil
	case keymap.Matches(k, keys.OpenOutput):
		return a.dispatch(session.OpenOutputFolder{})
	case keymap.Matches(k, keys.Back):
		if a.session.Busy() {
			a.setInfo("Cancelling…")
			return a.dispatch(session.ExtractCancelled{})
		}
		a.help.ShowAll = false
		return nil
	}

	if doc == nil {
		return nil
	}
	n := doc.PageCount

	switch {
	case keymap.Matches(k, keys.Left):
		return a.moveCursor(a.cursor - 1)
	case keymap.Matches(k, keys.Right):
		return a.moveCursor(a.cursor + 1)
	case keymap.Matches(k, keys.Up):
		return a.moveCursor(a.cursor - a.layout.cols)
	case keymap.Matches(k, keys.Down):
		return a.moveCursor(min(a.cursor+a.layout.cols, n-1))
	case keymap.Matches(k, keys.PageUp):
		return a.moveCursor(a.cursor - a.layout.cols*a.layout.rows)
	case keymap.Matches(k, keys.PageDown):
		return a.moveCursor(a.cursor + a.layout.cols*a.layout.rows)
	case keymap.Matches(k, keys.Home):
		return a.moveCursor(0)
	case keymap.Matches(k, keys.End):
		return a.moveCursor(n - 1)

	case keymap.Matches(k, keys.Toggle):
		return a.dispatch(session.ToggledPage{Page: a.cursor})
	case keymap.Matches(k, keys.SelectAll):
		return a.dispatch(session.SelectedAll{})
	case keymap.Matches(k, keys.Clear):
		return a.dispatch(session.ClearedSelection{})
	case keymap.Matches(k, keys.Range):
		return a.openPrompt(modeRange)
	case keymap.Matches(k, keys.First10):
		return a.preset(selection.PresetFirst10)
	case keymap.Matches(k, keys.Last10):
		return a.preset(selection.PresetLast10)
	case keymap.Matches(k, keys.FirstHalf):
		return a.preset(selection.PresetFirstHalf)
	case keymap.Matches(k, keys.All):
		return a.preset(selection.PresetAll)

	case keymap.Matches(k, keys.RotateCW):
		return a.dispatch(session.Rotated{Page: a.cursor, Delta: 90})
	case keymap.Matches(k, keys.RotateCCW):
		return a.dispatch(session.Rotated{Page: a.cursor, Delta: -90})

	case keymap.Matches(k, keys.Bigger):
		return a.resizeThumbs(a.artCols + artStep)
	case keymap.Matches(k, keys.Smaller):
		return a.resizeThumbs(a.artCols - artStep)

	case keymap.Matches(k, keys.View):
		a.mode = modeViewer
		a.view = viewer{page: a.cursor, zoom: a.view.zoom}
		if a.view.zoom == 0 {
			a.view.zoom = defaultZoom
		}
		a.refreshPreview()
		return nil

	case keymap.Matches(k, keys.Extract):
		if a.session.Busy() {
			a.setError(apperr.ErrBusy)
			return nil
		}
		if a.session.Selection().Count() == 0 {
			a.setError(apperr.ErrEmptySelection)
			return nil
		}
		return a.openPrompt(modeSave)
	}
	return nil
}

func (a *App) updateViewer(k string) tea.Cmd {
	keys := a.keys
	n := a.session.Selection().PageCount()
	_, rows := a.viewerArea()

	switch {
	case keymap.Matches(k, keys.Quit), keymap.Matches(k, keys.Back):
		a.mode = modeGrid
		return a.moveCursor(a.view.page)
	case keymap.Matches(k, keys.ZoomIn):
		a.setZoom(a.view.zoom + zoomStep)
	case keymap.Matches(k, keys.ZoomOut):
		a.setZoom(a.view.zoom - zoomStep)
	case keymap.Matches(k, keys.Left):
		if a.view.page > 0 {
			a.view.page--
			a.view.scroll = 0
			a.refreshPreview()
		}
	case keymap.Matches(k, keys.Right):
		if a.view.page < n-1 {
			a.view.page++
			a.view.scroll = 0
			a.refreshPreview()
		}
	case keymap.Matches(k, keys.Up):
		a.view.scroll -= max(rows/4, 1)
		a.clampScroll()
		a.redrawPreview()
	case keymap.Matches(k, keys.Down):
		a.view.scroll += max(rows/4, 1)
		a.clampScroll()
		a.redrawPreview()
	case keymap.Matches(k, keys.Toggle):
		return a.dispatch(session.ToggledPage{Page: a.view.page})
	case keymap.Matches(k, keys.RotateCW):
		cmd := a.dispatch(session.Rotated{Page: a.view.page, Delta: 90})
		a.refreshPreview()
		return cmd
	case keymap.Matches(k, keys.RotateCCW):
		cmd := a.dispatch(session.Rotated{Page: a.view.page, Delta: -90})
		a.refreshPreview()
		return cmd
	}
	return nil
}

func (a *App) setZoom(z int) {
	z = clampZoom(z)
	if z == a.view.zoom {
		return
	}
	a.view.zoom = z
	a.refreshPreview()
}

func (a *App) preset(p selection.Preset) tea.Cmd {
	cmd := a.dispatch(session.PresetChosen{Preset: p})
	if r, ok := p.Range(a.session.Selection().PageCount()); ok {
		a.setInfo(fmt.Sprintf("Selected pages %d-%d", r.Start, r.End))
	}
	return cmd
}

func (a *App) toggleTheme() {
	name := styles.Light
	if a.styles.Theme().Name == styles.Light {
		name = styles.Dark
	}
	a.styles = styles.NewStyles(styles.ByName(name))
	a.art = make(map[int]artEntry)
	if a.prefs != nil {
		a.prefs.SetTheme(name)
	}
	if a.mode == modeViewer {
		a.redrawPreview()
	}
}

func (a *App) moveCursor(page int) tea.Cmd {
	doc := a.session.Doc()
	if doc == nil {
		return nil
	}
	a.cursor = min(max(page, 0), doc.PageCount-1)
	a.top = a.layout.scrollTo(a.top, a.cursor)
	return a.syncViewport()
}

// relayout recomputes the grid for the terminal size and thumbnail size.
func (a *App) relayout() tea.Cmd {
	a.layout = newLayout(a.width, a.height, a.artCols)
	a.top = a.layout.scrollTo(a.top, a.cursor)
	if a.mode == modeViewer {
		a.refreshPreview()
	}
	return a.syncViewport()
}

func (a *App) resizeThumbs(cols int) tea.Cmd {
	cols = min(max(cols, minArtCols), maxArtCols)
	if cols == a.artCols {
		return nil
	}
	a.artCols = cols
	a.art = make(map[int]artEntry)
	a.layout = newLayout(a.width, a.height, a.artCols)
	a.top = a.layout.scrollTo(0, a.cursor)
	resized := a.dispatch(session.Resized{Width: a.layout.thumbWidth()})
	return tea.Batch(resized, a.syncViewport())
}

// syncViewport tells the loader which pages are visible when that changed.
func (a *App) syncViewport() tea.Cmd {
	doc := a.session.Doc()
	if doc == nil {
		return nil
	}
	first, last := a.layout.visible(a.top, doc.PageCount)
	if first == a.first && last == a.last {
		return nil
	}
	a.first, a.last = first, last
	return a.dispatch(session.ViewportChanged{First: first, Last: last})
}

// dispatch sends ev to the session and turns the effect into commands.
func (a *App) dispatch(ev session.Event) tea.Cmd {
	return a.apply(a.session.Dispatch(ev))
}

func (a *App) apply(eff session.Effect) tea.Cmd {
	var cmds []tea.Cmd

	if eff.Err != nil {
		a.setError(eff.Err)
	}
	if eff.Notice != "" {
		a.setInfo(eff.Notice)
	}

	for _, c := range eff.Rendered {
		delete(a.art, c.Page)
	}
	for _, c := range eff.Failed {
		delete(a.art, c.Page)
	}

	if eff.Loaded {
		cmds = append(cmds, a.loaded())
	}

	if eff.Finished != nil {
		res := eff.Finished
		a.setSuccess(fmt.Sprintf("Saved %d pages to %s (%s)",
			res.Pages, fileutil.TruncatePath(res.Path, 50), fileutil.FormatBytes(res.Size)))
	}

	if eff.ScheduleLoader && !a.loaderQueued {
		a.loaderQueued = true
		cmds = append(cmds, loaderTick(a.opts.Tick))
	}
	if eff.ScheduleExtract && !a.extractQueued {
		a.extractQueued = true
		cmds = append(cmds, extractTick)
	}
	return tea.Batch(cmds...)
}

// loaded resets the view for a newly loaded document.
func (a *App) loaded() tea.Cmd {
	doc := a.session.Doc()
	a.art = make(map[int]artEntry)
	a.cursor, a.top = 0, 0
	a.first, a.last = 0, -1
	if a.mode == modeViewer {
		a.mode = modeGrid
	}
	a.setInfo(fmt.Sprintf("Loaded %s", filepath.Base(doc.Path)))

	var cmds []tea.Cmd
	if w := a.session.Loader().Width(); w != a.layout.thumbWidth() {
		cmds = append(cmds, a.dispatch(session.Resized{Width: a.layout.thumbWidth()}))
	}
	cmds = append(cmds, a.syncViewport(), a.watch(doc.Path))
	return tea.Batch(cmds...)
}

// watch starts watching path unless it is already watched.
func (a *App) watch(path string) tea.Cmd {
	if !a.opts.Watch {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	if a.watcher != nil && a.watcher.Path() == abs {
		return nil
	}
	a.Close()
	w, err := watch.New(abs, a.opts.WatchDebounce)
	if err != nil {
		log.Warn().Err(err).Str("path", abs).Msg("cannot watch source file")
		return nil
	}
	a.watcher = w
	return waitForChange(w)
}

func (a *App) setInfo(msg string) {
	a.status, a.statusKind = msg, statusInfo
}

func (a *App) setSuccess(msg string) {
	a.status, a.statusKind = msg, statusSuccess
}

func (a *App) setError(err error) {
	log.Debug().Err(err).Str("kind", string(apperr.KindOf(err))).Msg("shown to user")
	a.status, a.statusKind = apperr.UserMessage(err), statusError
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var body string
	switch a.mode {
	case modeViewer:
		body = a.viewerView()
	case modeOpen, modeSave, modeRange, modeConfirm:
		body = lipgloss.Place(a.width, max(a.height-chromeLines, 1), lipgloss.Center, lipgloss.Center, a.promptView())
	default:
		body = a.gridView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.headerView(),
		body,
		a.statusView(),
		a.helpView(),
	)
}

func (a *App) headerView() string {
	doc := a.session.Doc()
	title := a.styles.Title.Render("pdfplanner")
	if doc == nil {
		return title
	}
	if a.mode == modeViewer {
		return title + "  " + a.viewerTitle()
	}

	parts := []string{
		filepath.Base(doc.Path),
		fmt.Sprintf("%d pages", doc.PageCount),
		fileutil.FormatBytes(doc.Size),
	}
	if doc.Info.Title != "" {
		parts = append(parts, doc.Info.Title)
	}
	if n := a.session.Selection().Count(); n > 0 {
		parts = append(parts, a.styles.Subtitle.Render(fmt.Sprintf("%d selected", n)))
	}
	return title + "  " + a.styles.Normal.Render(strings.Join(parts, " · "))
}

func (a *App) statusView() string {
	var left string
	switch a.statusKind {
	case statusError:
		left = a.styles.Error.Render(a.status)
	case statusSuccess:
		left = a.styles.Success.Render(a.status)
	default:
		left = a.styles.Normal.Render(a.status)
	}

	var right string
	if a.session.Busy() {
		p := a.session.Progress()
		pct := 0.0
		if p.Total > 0 {
			pct = float64(p.Done) / float64(p.Total)
		}
		right = fmt.Sprintf("%d/%d ", p.Done, p.Total) + a.bar.ViewAs(pct)
	} else {
		s := metrics.Snapshot()
		right = a.styles.Muted.Render(fmt.Sprintf("thumbs %d · hit %.0f%%", a.session.Cache().Len(), s.HitRatio()*100))
	}

	padding := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return a.styles.StatusBar.Width(a.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (a *App) helpView() string {
	var bindings []key.Binding
	switch a.mode {
	case modeViewer:
		bindings = a.keys.ViewerHelp()
	case modeOpen, modeSave, modeRange:
		bindings = a.keys.PromptHelp()
	case modeConfirm:
		bindings = a.keys.ConfirmHelp()
	default:
		if a.help.ShowAll {
			return a.help.FullHelpView(a.keys.FullHelp())
		}
		bindings = a.keys.ShortHelp()
	}
	return a.help.ShortHelpView(bindings)
}

// Cursor returns the page under the cursor.
func (a *App) Cursor() int { return a.cursor }

// Status returns the status line text.
func (a *App) Status() string { return a.status }
