// Package css inspects stylesheets carried into course pages.
package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// References returns every url() and @import target found in stylesheet in
// order of appearance. Duplicates are reported once.
func References(data []byte, log *zap.Logger) []string {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		refs []string
		seen = make(map[string]bool)
	)
	add := func(ref string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, ref)
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()
		if gt == css.ErrorGrammar {
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				log.Debug("CSS parse error", zap.Error(err))
			}
			return refs
		}
		isImport := gt == css.AtRuleGrammar && strings.EqualFold(string(data), "@import")
		for _, t := range parser.Values() {
			switch t.TokenType {
			case css.URLToken:
				add(urlValue(t.Data))
			case css.StringToken:
				if isImport {
					add(unquote(string(t.Data)))
				}
			}
		}
	}
}

// urlValue strips url( ) wrapper and quotes.
func urlValue(data []byte) string {
	s := string(data)
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	return unquote(s)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// IsLocal reports whether reference points to a file relative to the page,
// as opposed to absolute, remote, data or fragment references.
func IsLocal(ref string) bool {
	switch {
	case ref == "",
		strings.HasPrefix(ref, "/"),
		strings.HasPrefix(ref, "#"),
		strings.Contains(ref, "\\"):
		return false
	}
	if i := strings.IndexAny(ref, ":/?#"); i >= 0 && ref[i] == ':' {
		// has scheme: http:, data:, etc.
		return false
	}
	return true
}

// LocalPath returns file path part of local reference without query and
// fragment.
func LocalPath(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return ref
}
