// Package site is the interactive terminal reader for a static Markdown
// site. It routes key presses to the preference engine and repaints from
// the presenter's state.
package site

import (
	"strconv"
	"strings"
	"time"

	"sitetheme/cmd/sitetheme/ui"
	"sitetheme/internal/content"
	"sitetheme/internal/logging"
	"sitetheme/internal/preference"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// Engine is the subset of the preference engine the reader drives.
type Engine interface {
	AcceptConsent()
	DeclineConsent()
	ToggleTheme() preference.Theme
}

// refreshMsg tells the model the presenter state changed outside Update.
type refreshMsg struct{}

// Refresh returns the message that makes a running reader repaint.
func Refresh() tea.Msg { return refreshMsg{} }

const (
	defaultWordWrap = 80
	chromeHeight    = 4 // header, divider, section bar, help line
	bannerHeight    = 4

	renderThreshold = 50 * time.Millisecond
	renderCacheSize = 32
)

// Model is the bubbletea model for the reader.
type Model struct {
	engine    Engine
	presenter *ui.Presenter
	site      *content.Site

	keys     KeyMap
	help     help.Model
	cache    *ui.RenderCache
	viewport viewport.Model
	styles   ui.Styles

	page     int
	wordWrap int
	width    int
	height   int
	ready    bool

	// rendered is cached per (theme, width, page).
	rendered    string
	renderedKey renderKey
	anchors     []int
}

type renderKey struct {
	theme preference.Theme
	width int
	page  int
}

// Option configures a Model.
type Option func(*Model)

// WithWordWrap caps the rendered text width.
func WithWordWrap(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.wordWrap = n
		}
	}
}

// NewModel builds a reader over s. The engine must already be initialized
// so the presenter holds the starting theme.
func NewModel(engine Engine, presenter *ui.Presenter, s *content.Site, opts ...Option) Model {
	m := Model{
		engine:    engine,
		presenter: presenter,
		site:      s,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		cache:     ui.NewRenderCache(renderCacheSize),
		wordWrap:  defaultWordWrap,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.styles = presenter.Styles()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.help.Width = m.width
		if !m.ready {
			m.viewport = viewport.New(m.width, m.viewportHeight())
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.viewportHeight()
		}
		m.refresh()
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	banner := m.presenter.State().BannerVisible

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Close):
		m.help.ShowAll = false
		m.viewport.Height = m.viewportHeight()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.viewport.Height = m.viewportHeight()
		return m, nil

	case banner && key.Matches(msg, m.keys.Accept):
		logging.UIDebug("consent banner: accept")
		m.engine.AcceptConsent()
		m.refresh()
		return m, nil

	case banner && key.Matches(msg, m.keys.Decline):
		logging.UIDebug("consent banner: decline")
		m.engine.DeclineConsent()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.engine.ToggleTheme()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.gotoPage(m.page + 1)
		return m, nil

	case key.Matches(msg, m.keys.PrevPage):
		m.gotoPage(m.page - 1)
		return m, nil

	case key.Matches(msg, m.keys.NextSection):
		m.jumpSection(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevSection):
		m.jumpSection(-1)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh pulls the presenter state and re-renders if anything visible to
// the page changed.
func (m *Model) refresh() {
	state := m.presenter.State()
	m.styles = ui.NewStyles(ui.ThemeFor(state.Theme))
	if !m.ready {
		return
	}
	m.viewport.Height = m.viewportHeight()

	k := renderKey{theme: state.Theme, width: m.width, page: m.page}
	if k == m.renderedKey && m.rendered != "" {
		return
	}
	offset := m.viewport.YOffset
	samePage := k.page == m.renderedKey.page

	timer := logging.StartTimer(logging.CategoryUI, "render page")
	m.rendered, m.anchors = m.render(state.Theme)
	timer.StopWithThreshold(renderThreshold)
	m.renderedKey = k

	m.viewport.SetContent(m.rendered)
	if samePage {
		m.viewport.SetYOffset(offset)
	} else {
		m.viewport.GotoTop()
	}
}

func (m *Model) gotoPage(i int) {
	n := len(m.pages())
	if n == 0 {
		return
	}
	m.page = ((i % n) + n) % n
	m.refresh()
}

// jumpSection scrolls to the next (dir > 0) or previous section anchor.
func (m *Model) jumpSection(dir int) {
	if len(m.anchors) == 0 {
		return
	}
	y := m.viewport.YOffset
	if dir > 0 {
		for _, a := range m.anchors {
			if a > y {
				m.viewport.SetYOffset(a)
				return
			}
		}
		return
	}
	for i := len(m.anchors) - 1; i >= 0; i-- {
		if m.anchors[i] < y {
			m.viewport.SetYOffset(m.anchors[i])
			return
		}
	}
	m.viewport.GotoTop()
}

// activeSection is the index of the section that contains the top of the
// viewport, or -1 above the first heading.
func (m Model) activeSection() int {
	page, ok := m.currentPage()
	if !ok || len(m.anchors) != len(page.Sections) {
		return -1
	}
	rendered := page
	rendered.Sections = make([]content.Section, len(page.Sections))
	for i, s := range page.Sections {
		s.Line = m.anchors[i]
		rendered.Sections[i] = s
	}
	return rendered.ActiveSection(m.viewport.YOffset)
}

func (m Model) pages() []content.Page {
	if m.site == nil {
		return nil
	}
	return m.site.Pages
}

func (m Model) currentPage() (content.Page, bool) {
	pages := m.pages()
	if m.page < 0 || m.page >= len(pages) {
		return content.Page{}, false
	}
	return pages[m.page], true
}

func (m Model) viewportHeight() int {
	h := m.height - chromeHeight
	if m.presenter.State().BannerVisible {
		h -= bannerHeight
	}
	if m.help.ShowAll {
		h -= len(m.keys.FullHelp()[0])
	}
	return max(h, 1)
}

func (m Model) wrapWidth() int {
	w := m.wordWrap
	if m.width > 0 && m.width-4 < w {
		w = m.width - 4
	}
	return max(w, 10)
}

// render produces the page body styled for theme and the rendered line of
// each section heading.
func (m Model) render(theme preference.Theme) (string, []int) {
	page, ok := m.currentPage()
	if !ok {
		return "", nil
	}

	key := ui.ComputeKey(page.Name, page.Body, theme.String(), strconv.Itoa(m.wrapWidth()))
	out := m.cache.GetOrCompute(key, func() string {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(ui.ThemeFor(theme).GlamourStyle()),
			glamour.WithWordWrap(m.wrapWidth()),
		)
		if err != nil {
			logging.Get(logging.CategoryUI).Warn("renderer for %s: %v", theme, err)
			return page.Body
		}
		rendered, err := r.Render(page.Body)
		if err != nil {
			logging.Get(logging.CategoryUI).Warn("render %s: %v", page.Name, err)
			return page.Body
		}
		return rendered
	})
	return out, sectionAnchors(out, page.Sections)
}

// sectionAnchors finds each section heading in rendered output, in order.
// Headings that cannot be located inherit the previous anchor.
func sectionAnchors(rendered string, sections []content.Section) []int {
	lines := strings.Split(ansi.Strip(rendered), "\n")
	anchors := make([]int, len(sections))
	next := 0
	for i, s := range sections {
		found := -1
		for j := next; j < len(lines); j++ {
			if strings.Contains(lines[j], s.Title) {
				found = j
				break
			}
		}
		if found < 0 {
			if i > 0 {
				anchors[i] = anchors[i-1]
			}
			continue
		}
		anchors[i] = found
		next = found + 1
	}
	return anchors
}
