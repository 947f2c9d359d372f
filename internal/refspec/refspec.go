// Package refspec implements the narrow refspec matcher the
// transport-facing collaborator (e.g. ls-remote) is permitted to use
// against the reference database's getRefs(prefix) output. It never
// touches the database itself (spec.md §6, "Collaborator interfaces").
package refspec

import "strings"

// Pattern is a single refspec pattern: either a literal reference name
// ("refs/heads/main") or a name with exactly one trailing "*"
// ("refs/heads/*"), matching any name with that prefix.
type Pattern string

// Match reports whether name satisfies p.
func (p Pattern) Match(name string) bool {
	s := string(p)
	if strings.HasSuffix(s, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(s, "*"))
	}
	return s == name
}

// Matcher holds a set of patterns, matching a name when any pattern in
// the set matches it. An empty Matcher matches every name, mirroring
// an unfiltered `ls-remote`.
type Matcher []Pattern

// NewMatcher builds a Matcher from raw pattern strings.
func NewMatcher(patterns ...string) Matcher {
	m := make(Matcher, len(patterns))
	for i, p := range patterns {
		m[i] = Pattern(p)
	}
	return m
}

// Match reports whether name satisfies any pattern in m.
func (m Matcher) Match(name string) bool {
	if len(m) == 0 {
		return true
	}
	for _, p := range m {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Filter returns the subset of names that satisfy m, preserving input
// order.
func (m Matcher) Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
