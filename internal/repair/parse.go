package repair

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/specforge/internal/errors"
)

// ContextRadius is the number of characters shown on each side of a parse
// error offset.
const ContextRadius = 30

// Parse decodes cleaned JSON text into a generic value tree of
// map[string]any, []any, string, json.Number, bool and nil.
func Parse(cleaned string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewValidation("invalid JSON: no value found")
		}
		return nil, parseError(cleaned, err)
	}

	if rest := strings.TrimSpace(cleaned[dec.InputOffset():]); rest != "" {
		offset := dec.InputOffset()
		return nil, errors.NewValidationWithDetails(
			fmt.Sprintf("invalid JSON: unexpected data after top-level value at offset %d", offset),
			map[string]any{
				"offset":  offset,
				"context": Snippet(cleaned, offset),
			},
		)
	}

	return v, nil
}

// Decode sanitizes raw model output and parses the result.
func Decode(raw string) (any, error) {
	cleaned, err := Sanitize(raw)
	if err != nil {
		return nil, err
	}
	return Parse(cleaned)
}

// parseError converts a decoder error into a validation error, adding the
// offset and a context snippet when the decoder reports a position.
func parseError(text string, err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		offset    int64 = -1
	)
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	}

	msg := "invalid JSON: " + err.Error()
	if offset < 0 {
		return errors.NewValidation(msg)
	}
	return errors.NewValidationWithDetails(msg, map[string]any{
		"offset":  offset,
		"context": Snippet(text, offset),
	})
}

// Snippet returns up to ContextRadius characters on each side of the byte
// offset in text.
func Snippet(text string, offset int64) string {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	center := utf8.RuneCountInString(text[:offset])
	runes := []rune(text)
	start := max(center-ContextRadius, 0)
	end := min(center+ContextRadius, len(runes))
	return string(runes[start:end])
}
