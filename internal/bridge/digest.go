package bridge

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zulandar/ensemble/internal/models"
)

// DigestWindow is the period a digest summarizes.
const DigestWindow = 24 * time.Hour

// AuthorCount is one line of a digest.
type AuthorCount struct {
	Name  string
	Count int
}

// Digest summarizes chat activity in (since, until].
type Digest struct {
	Since   time.Time
	Until   time.Time
	Total   int
	Authors []AuthorCount // busiest first, ties by name
}

// BuildDigest counts messages per author in the window. It reports false
// when there was no activity.
func BuildDigest(history []models.ChatMessage, since, until time.Time) (Digest, bool) {
	d := Digest{Since: since, Until: until}
	counts := make(map[string]int)
	for _, m := range history {
		if !m.Timestamp.After(since) || m.Timestamp.After(until) {
			continue
		}
		counts[m.Author.Name]++
		d.Total++
	}
	if d.Total == 0 {
		return d, false
	}
	for name, n := range counts {
		d.Authors = append(d.Authors, AuthorCount{Name: name, Count: n})
	}
	slices.SortFunc(d.Authors, func(a, b AuthorCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return d, true
}

// Format renders the digest as a chat message body.
func (d Digest) Format() string {
	var b strings.Builder
	noun := "messages"
	if d.Total == 1 {
		noun = "message"
	}
	fmt.Fprintf(&b, "Daily digest: %d %s since %s\n", d.Total, noun, d.Since.UTC().Format("Jan 2 15:04 MST"))
	for _, a := range d.Authors {
		fmt.Fprintf(&b, "- %s: %d\n", a.Name, a.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}
