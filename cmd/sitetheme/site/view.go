package site

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	bannerTitle = "Remember your theme?"
	bannerText  = "This reader can store your light/dark choice on this machine. Nothing is saved unless you allow it."
)

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	parts := []string{m.renderHeader(), m.styles.RenderDivider(m.width)}
	if m.presenter.State().BannerVisible {
		parts = append(parts, m.renderBanner())
	}
	parts = append(parts,
		m.styles.Content.Render(m.viewport.View()),
		m.renderSections(),
		m.styles.Footer.Render(m.help.View(m.keys)),
	)
	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderHeader shows one tab per page and the theme toggle icon.
func (m Model) renderHeader() string {
	var tabs []string
	for i, p := range m.pages() {
		if i == m.page {
			tabs = append(tabs, m.styles.TabOn.Render(p.Title))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(p.Title))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	icon := m.styles.Icon.Render(m.presenter.State().Icon)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(icon)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + icon
}

func (m Model) renderBanner() string {
	actions := m.styles.BannerAction.Render("[a] allow") + "  " +
		m.styles.BannerAction.Render("[d] decline")
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.BannerTitle.Render(bannerTitle)+"  "+actions,
		bannerText,
	)
	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return m.styles.Banner.Width(width).Render(body)
}

// renderSections is the in-page navigation bar with the active heading
// highlighted.
func (m Model) renderSections() string {
	page, ok := m.currentPage()
	if !ok || len(page.Sections) == 0 {
		return m.styles.Muted.Render(" ")
	}
	active := m.activeSection()
	items := make([]string, 0, len(page.Sections))
	for i, s := range page.Sections {
		if i == active {
			items = append(items, m.styles.SectionOn.Render(s.Title))
		} else {
			items = append(items, m.styles.Section.Render(s.Title))
		}
	}
	return " " + strings.Join(items, m.styles.Muted.Render(" · "))
}
