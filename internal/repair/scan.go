package repair

// lexState is the state of the character-level scanner shared by the
// sanitizer steps.
type lexState int

const (
	stateDefault lexState = iota
	stateDoubleString
	stateSingleString
	stateLineComment
	stateBlockComment
)

// tokenKind classifies a scanned token relative to string and comment syntax.
type tokenKind int

const (
	kindCode         tokenKind = iota // structural text outside strings and comments
	kindOpenQuote                     // opening delimiter of a string literal
	kindCloseQuote                    // closing delimiter of a string literal
	kindString                        // content of a string literal, escapes included
	kindComment                       // comment text, delimiters included
)

// token is one or two runes of input together with their classification.
type token struct {
	text  []rune
	kind  tokenKind
	quote rune // delimiter of the enclosing string for quote and string kinds
}

// scanner walks text rune by rune as a finite-state machine over
// Default, InDoubleString, InSingleString, InLineComment and InBlockComment.
//
// A single quote only opens a string in value or key position, that is when
// the previous significant code rune is one of `{ [ : ,` or there is none.
// Apostrophes anywhere else are plain code.
type scanner struct {
	src      []rune
	pos      int
	state    lexState
	escaped  bool
	comments bool
	lastSig  rune
}

func newScanner(src []rune, comments bool) *scanner {
	return &scanner{src: src, comments: comments}
}

func (s *scanner) done() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek(offset int) rune {
	i := s.pos + offset
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// next consumes the next token and advances the state machine.
func (s *scanner) next() token {
	r := s.src[s.pos]
	s.pos++

	switch s.state {
	case stateDoubleString, stateSingleString:
		quote := '"'
		if s.state == stateSingleString {
			quote = '\''
		}
		switch {
		case s.escaped:
			s.escaped = false
		case r == '\\':
			s.escaped = true
		case r == quote:
			s.state = stateDefault
			s.lastSig = quote
			return token{text: []rune{r}, kind: kindCloseQuote, quote: quote}
		}
		return token{text: []rune{r}, kind: kindString, quote: quote}

	case stateLineComment:
		if r == '\n' {
			s.state = stateDefault
			return token{text: []rune{r}, kind: kindCode}
		}
		return token{text: []rune{r}, kind: kindComment}

	case stateBlockComment:
		if r == '*' && s.peek(0) == '/' {
			s.pos++
			s.state = stateDefault
			return token{text: []rune{r, '/'}, kind: kindComment}
		}
		return token{text: []rune{r}, kind: kindComment}
	}

	// stateDefault
	switch {
	case r == '"':
		s.state = stateDoubleString
		return token{text: []rune{r}, kind: kindOpenQuote, quote: '"'}
	case r == '\'' && opensValue(s.lastSig):
		s.state = stateSingleString
		return token{text: []rune{r}, kind: kindOpenQuote, quote: '\''}
	case s.comments && r == '/' && s.peek(0) == '/':
		s.pos++
		s.state = stateLineComment
		return token{text: []rune{r, '/'}, kind: kindComment}
	case s.comments && r == '/' && s.peek(0) == '*':
		s.pos++
		s.state = stateBlockComment
		return token{text: []rune{r, '*'}, kind: kindComment}
	}
	if !isSpace(r) {
		s.lastSig = r
	}
	return token{text: []rune{r}, kind: kindCode}
}

// opensValue reports whether a quote following prev starts a key or value.
func opensValue(prev rune) bool {
	switch prev {
	case 0, '{', '[', ':', ',':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '-'
}

func isWordRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}
