package tui

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfplanner/internal/gridload"
	"github.com/local/pdfplanner/internal/imagerender"
	"github.com/local/pdfplanner/internal/pdfdoc"
	"github.com/local/pdfplanner/internal/pdftest"
	"github.com/local/pdfplanner/internal/session"
	"github.com/local/pdfplanner/internal/validate"
)

type stubRenderer struct{ calls int }

func (r *stubRenderer) RenderPage(_ *pdfdoc.Document, _ int, width int) (*imagerender.Raster, error) {
	r.calls++
	img := image.NewRGBA(image.Rect(0, 0, width, width*4/3))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})
	return &imagerender.Raster{Image: img, Width: width, Height: width * 4 / 3}, nil
}

type fakePrefs struct {
	out    string
	recent []string
	theme  string
}

func (p *fakePrefs) RecentFiles() []string  { return p.recent }
func (p *fakePrefs) LastInputDir() string   { return p.out }
func (p *fakePrefs) Theme() string          { return p.theme }
func (p *fakePrefs) SetTheme(theme string)  { p.theme = theme }
func (p *fakePrefs) OutputPath(name string) string {
	return filepath.Join(p.out, validate.EnsurePDFExt(name))
}

type fixture struct {
	app   *App
	s     *session.Session
	dir   string
	path  string
	prefs *fakePrefs
}

func newFixture(t *testing.T, pages int) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:   dir,
		path:  pdftest.Write(t, dir, "doc.pdf", pdftest.Pages(pages)),
		prefs: &fakePrefs{out: dir, theme: "dark"},
	}
	f.s = session.New(session.Deps{Renderer: &stubRenderer{}},
		session.Options{Loader: gridload.Options{Width: defaultArtCols * pxPerCol, BatchSize: 2, Lookahead: -1}})
	f.app = NewApp(f.s, Options{Prefs: f.prefs, Tick: time.Millisecond})
	f.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return f
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	f.app.Update(openFileMsg{Path: f.path})
	require.NotNil(t, f.s.Doc())
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (f *fixture) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = f.app.Update(keyMsg(k))
	}
	return cmd
}

func (f *fixture) drainLoader() {
	for i := 0; i < 50 && f.app.loaderQueued; i++ {
		f.app.Update(loaderTickMsg{})
	}
}

func (f *fixture) drainExtraction() {
	for i := 0; i < 100 && f.app.extractQueued; i++ {
		f.app.Update(extractTickMsg{})
	}
}

func TestNewApp_Defaults(t *testing.T) {
	s := session.New(session.Deps{Renderer: &stubRenderer{}}, session.Options{})

	app := NewApp(s, Options{})

	require.NotNil(t, app)
	assert.False(t, app.Ready())
	assert.Equal(t, defaultArtCols, app.artCols)
	assert.Equal(t, "Loading...", app.View())
}

func TestApp_Init(t *testing.T) {
	s := session.New(session.Deps{Renderer: &stubRenderer{}}, session.Options{})

	assert.NotNil(t, NewApp(s, Options{}).Init())
	assert.NotNil(t, NewApp(s, Options{File: "doc.pdf"}).Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	f := newFixture(t, 3)

	model, _ := f.app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, f.app, model)
	assert.True(t, f.app.Ready())
	assert.Equal(t, 100/(defaultArtCols+2), f.app.layout.cols)
}

func TestApp_LoadRendersVisibleThumbnails(t *testing.T) {
	f := newFixture(t, 6)
	f.load(t)

	assert.True(t, f.app.loaderQueued, "load schedules the loader")
	f.drainLoader()

	for p := 0; p < 6; p++ {
		r, err := f.s.Thumbnail(p)
		require.NoError(t, err)
		assert.NotNil(t, r, "page %d", p)
	}
	assert.Contains(t, f.app.View(), "doc.pdf")
	assert.Contains(t, f.app.View(), "6 pages")
}

func TestApp_LoadFailureKeepsDocument(t *testing.T) {
	f := newFixture(t, 2)
	f.load(t)
	doc := f.s.Doc()

	f.app.Update(openFileMsg{Path: filepath.Join(f.dir, "missing.pdf")})

	assert.Same(t, doc, f.s.Doc())
	assert.Equal(t, statusError, f.app.statusKind)
	assert.NotEmpty(t, f.app.Status())
}

func TestApp_ToggleAndRotate(t *testing.T) {
	f := newFixture(t, 4)
	f.load(t)

	f.press("right", " ")
	assert.Equal(t, 1, f.app.Cursor())
	assert.True(t, f.s.Selection().IsSelected(1))

	f.press("r")
	assert.Equal(t, 90, f.s.Selection().Rotation(1))

	f.press("R", "R")
	assert.Equal(t, 270, f.s.Selection().Rotation(1))

	f.press(" ")
	assert.False(t, f.s.Selection().IsSelected(1))
	assert.Equal(t, 270, f.s.Selection().Rotation(1), "deselecting keeps the rotation")
}

func TestApp_CursorStaysInRange(t *testing.T) {
	f := newFixture(t, 3)
	f.load(t)

	f.press("right", "right", "right", "right")
	assert.Equal(t, 2, f.app.Cursor())

	f.press("G")
	assert.Equal(t, 2, f.app.Cursor())

	f.press("g")
	assert.Equal(t, 0, f.app.Cursor())
}

func TestApp_SelectAllClearAndPresets(t *testing.T) {
	f := newFixture(t, 6)
	f.load(t)

	f.press("a")
	assert.Equal(t, 6, f.s.Selection().Count())

	f.press("c")
	assert.Equal(t, 0, f.s.Selection().Count())

	f.press("3")
	assert.Equal(t, []int{0, 1, 2}, f.s.Selection().Selected())

	f.press("2")
	assert.Equal(t, 6, f.s.Selection().Count(), "last 10 of 6 pages is every page")
}

func TestApp_RangePrompt(t *testing.T) {
	f := newFixture(t, 6)
	f.load(t)

	f.press("s")
	require.Equal(t, modeRange, f.app.mode)

	f.app.input.SetValue("5-2")
	f.press("enter")
	assert.Equal(t, modeRange, f.app.mode, "invalid range keeps the prompt open")
	assert.Equal(t, statusError, f.app.statusKind)

	f.app.input.SetValue("2-4")
	f.press("enter")
	assert.Equal(t, modeGrid, f.app.mode)
	assert.Equal(t, []int{1, 2, 3}, f.s.Selection().Selected())
}

func TestApp_ExtractWithoutSelection(t *testing.T) {
	f := newFixture(t, 2)
	f.load(t)

	f.press("x")

	assert.Equal(t, modeGrid, f.app.mode)
	assert.Equal(t, "Select at least one page to extract", f.app.Status())
}

func TestApp_Extract(t *testing.T) {
	f := newFixture(t, 4)
	f.load(t)

	f.press(" ", "right", "right", " ", "r", "x")
	require.Equal(t, modeSave, f.app.mode)
	want := filepath.Join(f.dir, "doc_selection.pdf")
	assert.Equal(t, want, f.app.input.Value())

	f.press("enter")
	assert.True(t, f.s.Busy())
	assert.Equal(t, modeGrid, f.app.mode)

	f.drainExtraction()

	assert.False(t, f.s.Busy())
	assert.Equal(t, statusSuccess, f.app.statusKind)
	assert.Contains(t, f.app.Status(), "Saved 2 pages")
	assert.Equal(t, []int{0, 2}, pdftest.SourcePages(t, want))

	rot, err := pdfdoc.PageRotations(want)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 90}, rot)
}

func TestApp_ExtractOverwriteKeepBoth(t *testing.T) {
	f := newFixture(t, 2)
	f.load(t)
	existing := filepath.Join(f.dir, "doc_page_1.pdf")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	f.press(" ", "x", "enter")
	require.Equal(t, modeConfirm, f.app.mode)
	assert.Equal(t, existing, f.app.confirmPath)

	f.press("u")
	f.drainExtraction()

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "keep both leaves the existing file alone")
	assert.FileExists(t, filepath.Join(f.dir, "doc_page_1 (1).pdf"))
}

func TestApp_ExtractOverwriteBack(t *testing.T) {
	f := newFixture(t, 2)
	f.load(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "doc_page_1.pdf"), []byte("old"), 0o644))

	f.press(" ", "x", "enter", "n")

	assert.Equal(t, modeSave, f.app.mode)
	assert.False(t, f.s.Busy())
}

func TestApp_SaveRejectsBadName(t *testing.T) {
	f := newFixture(t, 2)
	f.load(t)

	f.press(" ", "x")
	f.app.input.SetValue(filepath.Join(f.dir, "bad:name.pdf"))
	require.Error(t, f.app.input.Err, "validated while typing")

	f.press("enter")

	assert.Equal(t, modeSave, f.app.mode)
	assert.False(t, f.s.Busy())
	assert.Equal(t, statusError, f.app.statusKind)
}

func TestApp_EscapeCancelsExtraction(t *testing.T) {
	f := newFixture(t, 3)
	f.load(t)

	f.press("a", "x", "enter")
	require.True(t, f.s.Busy())

	f.press("esc")
	f.drainExtraction()

	assert.False(t, f.s.Busy())
	assert.Equal(t, "Extraction cancelled", f.app.Status())
	assert.NoFileExists(t, filepath.Join(f.dir, "doc_pages_1-3.pdf"))
}

func TestApp_Viewer(t *testing.T) {
	f := newFixture(t, 3)
	f.load(t)

	f.press("right", "enter")
	require.Equal(t, modeViewer, f.app.mode)
	assert.Equal(t, 1, f.app.view.page)
	assert.NotNil(t, f.app.view.raster)
	assert.NotEmpty(t, f.app.view.art)

	f.press("+")
	assert.Equal(t, 125, f.app.view.zoom)

	for i := 0; i < 20; i++ {
		f.press("-")
	}
	assert.Equal(t, minZoom, f.app.view.zoom)

	for i := 0; i < 20; i++ {
		f.press("+")
	}
	assert.Equal(t, maxZoom, f.app.view.zoom)

	f.press("right")
	assert.Equal(t, 2, f.app.view.page)

	f.press("esc")
	assert.Equal(t, modeGrid, f.app.mode)
	assert.Equal(t, 2, f.app.Cursor())
}

func TestApp_ThemeToggle(t *testing.T) {
	f := newFixture(t, 1)

	f.press("t")
	assert.Equal(t, "light", f.prefs.theme)

	f.press("t")
	assert.Equal(t, "dark", f.prefs.theme)
}

func TestApp_ThumbnailSize(t *testing.T) {
	f := newFixture(t, 4)
	f.load(t)
	f.drainLoader()

	f.press("]")

	assert.Equal(t, defaultArtCols+artStep, f.app.artCols)
	assert.Equal(t, (defaultArtCols+artStep)*pxPerCol, f.s.Loader().Width())
	assert.True(t, f.app.loaderQueued)
}

func TestApp_Quit(t *testing.T) {
	f := newFixture(t, 1)

	cmd := f.press("q")

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_OpenPromptListsRecentFiles(t *testing.T) {
	f := newFixture(t, 1)
	f.prefs.recent = []string{f.path}

	f.press("f")

	require.Equal(t, modeOpen, f.app.mode)
	assert.Contains(t, f.app.View(), "Recent files")

	f.app.input.SetValue(f.path)
	f.press("enter")
	assert.Equal(t, modeGrid, f.app.mode)
	require.NotNil(t, f.s.Doc())
}
