package main

import (
	"fmt"
	"strings"
)

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// matchOption finds the option named by s. Matching ignores case, and
// "Happy" matches "Happy / Cheerful".
func matchOption[T ~string](kind string, options []T, s string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, o := range options {
		full := strings.ToLower(string(o))
		if full == want {
			return o, nil
		}
		for _, part := range strings.Split(full, "/") {
			if strings.TrimSpace(part) == want {
				return o, nil
			}
		}
	}
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = string(o)
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q (options: %s)", kind, s, strings.Join(names, ", "))
}

// matchOptions resolves a comma-separated list of option names.
func matchOptions[T ~string](kind string, options []T, s string) ([]T, error) {
	out := []T{}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		o, err := matchOption(kind, options, part)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func joinOptions[T ~string](list []T) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, len(list))
	for i, v := range list {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
