package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize caps a single chat message at 4KB.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer guards every chat surface against oversized or binary input.
// The zero value applies DefaultMaxInputSize.
type Sanitizer struct {
	MaxSize int
}

// NewSanitizer returns a Sanitizer with the given byte limit; non-positive
// limits fall back to DefaultMaxInputSize.
func NewSanitizer(maxSize int) Sanitizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	return Sanitizer{MaxSize: maxSize}
}

func (s Sanitizer) limit() int {
	if s.MaxSize <= 0 {
		return DefaultMaxInputSize
	}
	return s.MaxSize
}

// Clean rejects messages over the limit or with invalid UTF-8, and drops
// control characters other than \n, \t and \r. Oversized input is never
// truncated.
func (s Sanitizer) Clean(input string) (string, error) {
	if limit := s.limit(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	unsafe := strings.IndexFunc(input, func(r rune) bool {
		return unicode.IsControl(r) && !isSafeControl(r)
	})
	if unsafe < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	b.WriteString(input[:unsafe])
	for _, r := range input[unsafe:] {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeInput cleans input with the default limits.
func SanitizeInput(input string) (string, error) {
	return Sanitizer{}.Clean(input)
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
