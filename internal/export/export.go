// Package export renders the conversation history as a markdown transcript
// and optionally publishes it as a GitHub gist.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/ensemble/internal/models"
)

// Markdown renders history as a markdown document. Agent lines carry the
// agent's profession as it was when the message was written.
func Markdown(history []models.ChatMessage, exported time.Time) string {
	var b strings.Builder
	b.WriteString("# Ensemble transcript\n\n")
	fmt.Fprintf(&b, "_Exported %s, %d messages._\n", exported.UTC().Format(time.RFC1123), len(history))

	for _, m := range history {
		b.WriteString("\n")
		b.WriteString("**" + m.Author.Name + "**")
		if p := m.Author.Profile; p != nil && p.Profession != "" {
			fmt.Fprintf(&b, " _(%s)_", p.Profession)
		}
		if !m.Timestamp.IsZero() {
			b.WriteString(" · " + m.Timestamp.UTC().Format("2006-01-02 15:04"))
		}
		b.WriteString("\n\n")
		b.WriteString(quote(m.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// quote renders text as a markdown blockquote so multi-line messages keep
// their line breaks.
func quote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, l := range lines {
		if l == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// Filename is the gist file name for a transcript exported at t.
func Filename(t time.Time) string {
	return "ensemble-transcript-" + t.UTC().Format("20060102-150405") + ".md"
}
