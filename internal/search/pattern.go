// Package search compiles glob patterns and streams matching entries
// from a subtree. It is read-only and independent of the mutation
// engine.
package search

import (
	"regexp"
	"strings"
)

// Pattern is a compiled glob matcher over slash-separated relative
// paths.
type Pattern struct {
	re       *regexp.Regexp
	original string
}

// Compile translates a glob into an anchored matcher. `**/` matches
// zero or more whole path segments, a lone or trailing `**` matches any
// remainder, `*` any run of non-separator characters, `?` exactly one
// non-separator character. Everything else matches literally. A leading
// "./" is stripped before compilation.
func Compile(pattern string, caseInsensitive bool) (*Pattern, error) {
	p := &Pattern{original: pattern}

	glob := strings.TrimPrefix(pattern, "./")

	var b strings.Builder
	if caseInsensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("^")
	b.WriteString(globToRegex(glob))
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	p.re = re
	return p, nil
}

// Match tests a slash-separated path relative to the search root.
func (p *Pattern) Match(relPath string) bool {
	return p.re.MatchString(relPath)
}

// String returns the original glob.
func (p *Pattern) String() string { return p.original }

func globToRegex(glob string) string {
	var b strings.Builder
	i := 0
	for i < len(glob) {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				if i+2 < len(glob) && glob[i+2] == '/' {
					// Zero or more whole segments.
					b.WriteString("(.*/)?")
					i += 3
				} else {
					// Any remainder, separators included.
					b.WriteString(".*")
					i += 2
				}
			} else {
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		case '/':
			b.WriteByte('/')
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}
