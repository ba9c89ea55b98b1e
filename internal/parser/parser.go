// Package parser extracts header fields and wiki links from org content.
package parser

import (
	"regexp"
	"strings"
)

// Header field markers. Entries created by this tool always start with a
// TITLE line followed by a KEYWORDS line.
const (
	TitleMarker    = "#+TITLE:"
	KeywordsMarker = "#+KEYWORDS:"
)

var wikiLinkRe = regexp.MustCompile(`\[\[wiki:([^\]]+)\](?:\[[^\]]*\])?\]`)

// Result holds the output of parsing an org file.
type Result struct {
	Title    string
	Keywords []string
	Body     string
	Links    []string
}

// Parse extracts the header fields, body, and wiki links from raw org bytes.
// Header lines are the leading run of `#+KEY: value` lines; everything after
// them is body. Files without a header are all body.
func Parse(data []byte) (*Result, error) {
	title, keywords, body := splitHeader(string(data))
	if title == "" {
		title = deriveTitle(body)
	}
	return &Result{
		Title:    title,
		Keywords: keywords,
		Body:     body,
		Links:    extractLinks(body),
	}, nil
}

// splitHeader consumes leading `#+...` lines, collecting the TITLE and
// KEYWORDS fields. Blank lines inside the header run are tolerated.
func splitHeader(content string) (title string, keywords []string, body string) {
	lines := strings.Split(content, "\n")
	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" && i > 0 {
			continue
		}
		if !strings.HasPrefix(trimmed, "#+") {
			break
		}
		switch {
		case strings.HasPrefix(trimmed, TitleMarker):
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, TitleMarker))
		case strings.HasPrefix(trimmed, KeywordsMarker):
			keywords = splitKeywords(strings.TrimPrefix(trimmed, KeywordsMarker))
		}
	}
	body = strings.Join(lines[i:], "\n")
	return title, keywords, body
}

// splitKeywords tokenises the free-text keyword field on whitespace.
func splitKeywords(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// extractLinks returns deduplicated [[wiki:...]] targets. The description
// form [[wiki:target][desc]] yields the target only.
func extractLinks(body string) []string {
	matches := wikiLinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// deriveTitle falls back to the first top-level heading when the header
// carries no TITLE field.
func deriveTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "* ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
