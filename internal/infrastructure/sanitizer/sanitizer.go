package sanitizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Level defines how much user supplied text may reach logs and spans.
type Level string

const (
	// LevelNone redacts all user content
	LevelNone Level = "none"
	// LevelHashed replaces detected PII with salted hashes
	LevelHashed Level = "hashed"
	// LevelFull performs no sanitization
	LevelFull Level = "full"
)

const redacted = "[REDACTED]"

var (
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	creditCardPattern = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	ssnPattern        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phonePattern      = regexp.MustCompile(`\+?\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ipv4Pattern       = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// ParseLevel maps a configuration value to a Level. Unknown values hash.
func ParseLevel(raw string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelNone:
		return LevelNone
	case LevelFull:
		return LevelFull
	default:
		return LevelHashed
	}
}

// Sanitizer scrubs client context, notes and generated text before they are logged.
type Sanitizer struct {
	level Level
	salt  string
}

func New(level Level, salt string) *Sanitizer {
	return &Sanitizer{level: level, salt: salt}
}

// Level returns the configured level.
func (s *Sanitizer) Level() Level {
	return s.level
}

// Text sanitizes free text according to the configured level.
func (s *Sanitizer) Text(input string) string {
	switch s.level {
	case LevelFull:
		return input
	case LevelNone:
		if input == "" {
			return ""
		}
		return redacted
	default:
		return s.hashPII(input)
	}
}

// Excerpt sanitizes input and truncates it to at most max runes.
func (s *Sanitizer) Excerpt(input string, max int) string {
	clean := s.Text(input)
	if max <= 0 || utf8.RuneCountInString(clean) <= max {
		return clean
	}
	runes := []rune(clean)
	return string(runes[:max]) + "..."
}

// Subject sanitizes an identity subject or email.
func (s *Sanitizer) Subject(subject string) string {
	if subject == "" {
		return ""
	}
	switch s.level {
	case LevelFull:
		return subject
	case LevelNone:
		return redacted
	default:
		return s.hash(subject)
	}
}

func (s *Sanitizer) hashPII(input string) string {
	result := emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", s.hash(match))
	})
	// card and ssn shapes overlap the phone pattern, so they go first
	result = creditCardPattern.ReplaceAllString(result, "[CC:REDACTED]")
	result = ssnPattern.ReplaceAllString(result, "[SSN:REDACTED]")
	result = phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", s.hash(match))
	})
	result = ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", s.hash(match))
	})
	return result
}

// hash returns the first 8 hex chars of the salted SHA-256.
func (s *Sanitizer) hash(data string) string {
	sum := sha256.Sum256([]byte(data + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}
