package segment

import (
	"regexp"
	"strings"
)

// headerPattern matches an article header at the start of a line: the marker
// word, whitespace, a lazily matched label, then a terminator ("." , " -" or "-").
var headerPattern = regexp.MustCompile(`(?i)^art[íi]culo[\s\p{Zs}]+([\p{L}\p{N}_\s\p{Zs}-]+?)(?:\.|[\s\p{Zs}]-|-)`)

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// Section is one article: its label and its normalized text.
type Section struct {
	Label string
	Text  string
}

// DetectHeader reports whether line opens an article and returns its label.
// The line is expected to be trimmed.
func DetectHeader(line string) (string, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	label := NormalizeLabel(m[1])
	if label == "" {
		return "", false
	}
	return label, true
}

// NormalizeLabel collapses internal whitespace and trims the label.
func NormalizeLabel(label string) string {
	return collapse(label)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Segment splits text into articles. Lines before the first header are
// dropped. A repeated label restarts that article's text but keeps its
// original position in the output.
func Segment(text string) []Section {
	var (
		order   []string
		buffers = make(map[string]*strings.Builder)
		current *strings.Builder
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if label, ok := DetectHeader(line); ok {
			b, seen := buffers[label]
			if !seen {
				b = &strings.Builder{}
				buffers[label] = b
				order = append(order, label)
			}
			b.Reset()
			b.WriteString(line)
			current = b
			continue
		}

		if current != nil {
			current.WriteByte(' ')
			current.WriteString(line)
		}
	}

	sections := make([]Section, 0, len(order))
	for _, label := range order {
		sections = append(sections, Section{
			Label: label,
			Text:  collapse(buffers[label].String()),
		})
	}
	return sections
}
