// Package repair turns near-JSON text produced by a language model into valid
// JSON and decodes it into a generic value tree.
package repair

import (
	"strings"

	"github.com/hpungsan/specforge/internal/errors"
)

// Step is one text-to-text repair pass.
type Step func(string) string

// Steps is the ordered repair pipeline applied by Sanitize.
var Steps = []Step{
	StripFences,
	NormalizeNewlines,
	ExtractObject,
	CollapseStringNewlines,
	StripComments,
	NormalizeQuotes,
	QuoteKeys,
	RemoveTrailingCommas,
	QuoteSingleValues,
	ReplaceNonFinite,
}

// Sanitize repairs raw model output into syntactically valid JSON text.
// Empty or whitespace-only input is a validation error.
func Sanitize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", errors.NewValidation("response text is empty")
	}
	text := raw
	for _, step := range Steps {
		text = step(text)
	}
	return text, nil
}

// StripFences removes markdown code fences, optionally tagged json.
func StripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	var b strings.Builder
	rest := text
	for {
		idx := strings.Index(rest, "```")
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		rest = rest[idx+3:]
		// Drop an info string such as "json" up to the end of the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isFenceTag(rest[:nl]) {
			rest = rest[nl+1:]
		} else if isFenceTag(rest) {
			rest = ""
		}
	}
	return b.String()
}

func isFenceTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, r := range s {
		if !isIdentPart(r) {
			return false
		}
	}
	return true
}

// NormalizeNewlines converts CRLF and CR line endings to LF and trims the text.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// ExtractObject returns the first balanced {...} block in text, recovering JSON
// embedded in prose. Text without '{' is returned unchanged; an unterminated
// block is returned from its opening brace so the parser can report it.
func ExtractObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	src := []rune(text[start:])
	sc := newScanner(src, true)
	depth := 0
	for !sc.done() {
		tok := sc.next()
		if tok.kind != kindCode {
			continue
		}
		switch tok.text[0] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(src[:sc.pos])
			}
		}
	}
	return string(src)
}

// CollapseStringNewlines replaces each run of raw line breaks inside string
// literals with a single space.
func CollapseStringNewlines(text string) string {
	sc := newScanner([]rune(text), true)
	var b strings.Builder
	b.Grow(len(text))
	inBreak := false
	for !sc.done() {
		tok := sc.next()
		if tok.kind == kindString && (tok.text[0] == '\n' || tok.text[0] == '\r') {
			if !inBreak {
				b.WriteRune(' ')
				inBreak = true
			}
			continue
		}
		inBreak = false
		writeRunes(&b, tok.text)
	}
	return b.String()
}

// StripComments removes // line comments and /* */ block comments that occur
// outside string literals. The newline ending a line comment is kept.
func StripComments(text string) string {
	sc := newScanner([]rune(text), true)
	var b strings.Builder
	b.Grow(len(text))
	for !sc.done() {
		tok := sc.next()
		if tok.kind == kindComment {
			continue
		}
		writeRunes(&b, tok.text)
	}
	return b.String()
}

// quoteState tracks which delimiter opened the current string in NormalizeQuotes.
type quoteState int

const (
	quoteNone quoteState = iota
	quoteStraightDouble
	quoteSmartDouble
	quoteSingle
)

// NormalizeQuotes turns curly quotes used as delimiters into straight quotes.
// Curly quotes inside strings opened with a straight double quote are content
// and left alone.
func NormalizeQuotes(text string) string {
	if !strings.ContainsAny(text, "“”„‟‘’‚‛") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	st := quoteNone
	escaped := false
	var last rune
	for _, r := range text {
		switch st {
		case quoteNone:
			switch {
			case r == '"':
				st = quoteStraightDouble
			case isSmartDouble(r):
				st = quoteSmartDouble
				r = '"'
			case r == '\'' || isSmartSingle(r):
				if opensValue(last) {
					st = quoteSingle
				}
				r = '\''
			}
			if !isSpace(r) {
				last = r
			}
		case quoteStraightDouble:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				st = quoteNone
			}
		case quoteSmartDouble:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"' || isSmartDouble(r):
				st = quoteNone
				r = '"'
			}
		case quoteSingle:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '\'' || isSmartSingle(r):
				st = quoteNone
				r = '\''
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSmartDouble(r rune) bool {
	switch r {
	case '“', '”', '„', '‟':
		return true
	}
	return false
}

func isSmartSingle(r rune) bool {
	switch r {
	case '‘', '’', '‚', '‛':
		return true
	}
	return false
}

// QuoteKeys wraps bare identifier keys in double quotes. A key is an
// identifier that directly follows '{' or ',' and is followed by ':'.
func QuoteKeys(text string) string {
	src := []rune(text)
	sc := newScanner(src, false)
	var b strings.Builder
	b.Grow(len(text) + 16)
	for !sc.done() {
		prev := sc.lastSig
		if sc.state == stateDefault && isIdentStart(src[sc.pos]) && (prev == '{' || prev == ',') {
			end := sc.pos
			for end < len(src) && isIdentPart(src[end]) {
				end++
			}
			after := end
			for after < len(src) && isSpace(src[after]) {
				after++
			}
			if after < len(src) && src[after] == ':' {
				b.WriteRune('"')
				writeRunes(&b, src[sc.pos:end])
				b.WriteRune('"')
				// Feed the identifier through the scanner to keep its state current.
				for sc.pos < end {
					sc.next()
				}
				continue
			}
		}
		writeRunes(&b, sc.next().text)
	}
	return b.String()
}

// RemoveTrailingCommas drops commas that are followed only by whitespace and
// a closing '}' or ']'.
func RemoveTrailingCommas(text string) string {
	src := []rune(text)
	sc := newScanner(src, false)
	var b strings.Builder
	b.Grow(len(text))
	for !sc.done() {
		tok := sc.next()
		if tok.kind == kindCode && tok.text[0] == ',' {
			i := sc.pos
			for i < len(src) && isSpace(src[i]) {
				i++
			}
			if i < len(src) && (src[i] == '}' || src[i] == ']') {
				continue
			}
		}
		writeRunes(&b, tok.text)
	}
	return b.String()
}

// QuoteSingleValues converts single-quoted strings in key or value position
// to double-quoted strings. Apostrophes inside double-quoted strings and in
// prose are untouched.
func QuoteSingleValues(text string) string {
	if !strings.ContainsRune(text, '\'') {
		return text
	}
	src := []rune(text)
	sc := newScanner(src, false)
	var b strings.Builder
	b.Grow(len(text) + 8)
	for !sc.done() {
		tok := sc.next()
		if tok.quote != '\'' {
			writeRunes(&b, tok.text)
			continue
		}
		switch tok.kind {
		case kindOpenQuote, kindCloseQuote:
			b.WriteRune('"')
		case kindString:
			r := tok.text[0]
			switch {
			case r == '\\' && sc.peek(0) == '\'':
				// \' needs no escape once the delimiter is a double quote.
				sc.next()
				b.WriteRune('\'')
			case r == '\\':
				b.WriteRune(r)
				if !sc.done() {
					writeRunes(&b, sc.next().text)
				}
			case r == '"':
				b.WriteString(`\"`)
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ReplaceNonFinite replaces bare NaN, Infinity, -Infinity and +Infinity
// tokens outside strings with null.
func ReplaceNonFinite(text string) string {
	if !strings.Contains(text, "NaN") && !strings.Contains(text, "Infinity") {
		return text
	}
	src := []rune(text)
	sc := newScanner(src, false)
	var b strings.Builder
	b.Grow(len(text))
	for !sc.done() {
		if sc.state == stateDefault {
			if n := nonFiniteAt(src, sc.pos); n > 0 {
				b.WriteString("null")
				for end := sc.pos + n; sc.pos < end; {
					sc.next()
				}
				continue
			}
		}
		writeRunes(&b, sc.next().text)
	}
	return b.String()
}

// nonFiniteAt returns the length of a non-finite literal starting at i, or 0.
func nonFiniteAt(src []rune, i int) int {
	if i > 0 && isWordRune(src[i-1]) {
		return 0
	}
	for _, lit := range []string{"-Infinity", "+Infinity", "Infinity", "NaN"} {
		n := len(lit)
		if i+n > len(src) || string(src[i:i+n]) != lit {
			continue
		}
		if i+n < len(src) && isWordRune(src[i+n]) {
			continue
		}
		return n
	}
	return 0
}

func writeRunes(b *strings.Builder, rs []rune) {
	for _, r := range rs {
		b.WriteRune(r)
	}
}
