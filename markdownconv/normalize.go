package markdownconv

import (
	"regexp"
	"strings"
)

// NormalizeTableRows takes the GFM Markdown table RenderNode produces for
// a <table> fragment and collapses it to one pipe-joined row per line
// ("cell | cell"), dropping the header-separator row and the table's own
// leading/trailing pipe decoration. Parsing the cells through the real
// table plugin handles escaped pipes and inline formatting that a naive
// DOM-text join would mangle; this only reshapes the plugin's output into
// the chunk format, it does not second-guess its cell contents.
func NormalizeTableRows(gfm string) string {
	var rows []string
	for _, line := range strings.Split(gfm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "|") {
			continue
		}
		if isSeparatorRow(line) {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.Join(rows, "\n")
}

func isSeparatorRow(line string) bool {
	trimmed := strings.Trim(line, "|")
	sawDash := false
	for _, field := range strings.Split(trimmed, "|") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		for _, r := range field {
			if r != '-' && r != ':' {
				return false
			}
			if r == '-' {
				sawDash = true
			}
		}
	}
	return sawDash
}

var orderedMarker = regexp.MustCompile(`^\d+[.)]\s+`)

// NormalizeListBullets takes the GFM Markdown list RenderNode produces for
// a <ul>/<ol> fragment and flattens every marker — ordered or unordered,
// at any nesting level — to a leading "• ", preserving indentation so
// nested items stay distinguishable.
func NormalizeListBullets(gfm string) string {
	var out []string
	for _, line := range strings.Split(gfm, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent, rest := splitIndent(line)
		out = append(out, indent+"• "+stripListMarker(rest))
	}
	return strings.Join(out, "\n")
}

func splitIndent(line string) (indent, rest string) {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return line[:i], line[i:]
}

func stripListMarker(s string) string {
	switch {
	case strings.HasPrefix(s, "- "):
		return s[2:]
	case strings.HasPrefix(s, "* "):
		return s[2:]
	case strings.HasPrefix(s, "+ "):
		return s[2:]
	default:
		return orderedMarker.ReplaceAllString(s, "")
	}
}
