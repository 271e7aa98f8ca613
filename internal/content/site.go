// Package content loads the static site: a directory of Markdown pages,
// each split into navigable sections.
package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"sitetheme/internal/logging"
)

// Section is a "## " heading within a page.
type Section struct {
	ID    string
	Title string
	Line  int // zero-based line of the heading in Page.Body
}

// Page is one Markdown document.
type Page struct {
	Name     string
	Title    string
	Body     string
	Sections []Section
}

// Site is the ordered list of pages.
type Site struct {
	Pages []Page
}

const welcomePage = `# Welcome

This reader shows a directory of Markdown pages.

## Themes

Press **t** to switch between the light and dark theme.

## Storage

Your theme choice is only remembered if you allow it in the banner.
`

// LoadSite reads every *.md file in dir, sorted by file name. A missing or
// empty directory yields a single welcome page.
func LoadSite(dir string) (*Site, error) {
	timer := logging.StartTimer(logging.CategoryContent, "LoadSite")
	defer timer.Stop()

	site := &Site{}
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "*.md"))
		if err != nil {
			return nil, fmt.Errorf("failed to list pages: %w", err)
		}
		sort.Strings(matches)
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					logging.ContentWarn("page %s vanished while loading", path)
					continue
				}
				return nil, fmt.Errorf("failed to read page %s: %w", path, err)
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			site.Pages = append(site.Pages, ParsePage(name, string(data)))
		}
	}
	if len(site.Pages) == 0 {
		logging.Content("no pages found in %q, using welcome page", dir)
		site.Pages = append(site.Pages, ParsePage("welcome", welcomePage))
	}
	logging.Content("loaded %d pages", len(site.Pages))
	return site, nil
}

// ParsePage extracts the title and sections of a Markdown body.
func ParsePage(name, body string) Page {
	p := Page{Name: name, Title: name, Body: body}
	seen := make(map[string]int)
	titled := false
	inFence := false

	for i, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		switch {
		case !titled && strings.HasPrefix(trimmed, "# "):
			p.Title = strings.TrimSpace(trimmed[2:])
			titled = true
		case strings.HasPrefix(trimmed, "## "):
			title := strings.TrimSpace(trimmed[3:])
			id := Slug(title)
			if n := seen[id]; n > 0 {
				seen[id] = n + 1
				id = fmt.Sprintf("%s-%d", id, n)
			} else {
				seen[id] = 1
			}
			p.Sections = append(p.Sections, Section{ID: id, Title: title, Line: i})
		}
	}
	return p
}

// Slug lowercases s and joins its letters and digits with hyphens.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// ActiveSection returns the index of the section containing source line,
// or -1 when line is above the first section.
func (p Page) ActiveSection(line int) int {
	active := -1
	for i, s := range p.Sections {
		if s.Line <= line {
			active = i
		}
	}
	return active
}
