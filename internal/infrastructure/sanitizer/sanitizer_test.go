package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"none":    LevelNone,
		" FULL ":  LevelFull,
		"hashed":  LevelHashed,
		"":        LevelHashed,
		"garbage": LevelHashed,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseLevel(raw), raw)
	}
}

func TestTextByLevel(t *testing.T) {
	input := "Reach me at jane@example.com or 555-123-4567"

	assert.Equal(t, input, New(LevelFull, "salt").Text(input))
	assert.Equal(t, "[REDACTED]", New(LevelNone, "salt").Text(input))
	assert.Equal(t, "", New(LevelNone, "salt").Text(""))

	hashed := New(LevelHashed, "salt").Text(input)
	assert.NotContains(t, hashed, "jane@example.com")
	assert.NotContains(t, hashed, "555-123-4567")
	assert.Contains(t, hashed, "[EMAIL:")
	assert.Contains(t, hashed, "[PHONE:")
	assert.True(t, strings.HasPrefix(hashed, "Reach me at "))
}

func TestHashedRedactsCardsAndSSN(t *testing.T) {
	s := New(LevelHashed, "salt")

	assert.Equal(t, "card [CC:REDACTED]", s.Text("card 4111 1111 1111 1111"))
	assert.Equal(t, "ssn [SSN:REDACTED]", s.Text("ssn 123-45-6789"))
	assert.Contains(t, s.Text("from 10.0.0.1"), "[IP:")
}

func TestHashIsSaltedAndStable(t *testing.T) {
	a := New(LevelHashed, "tenant-a")
	b := New(LevelHashed, "tenant-b")

	assert.Equal(t, a.Subject("user-1"), a.Subject("user-1"))
	assert.NotEqual(t, a.Subject("user-1"), b.Subject("user-1"))
	assert.Len(t, a.Subject("user-1"), 8)
	assert.Equal(t, "", a.Subject(""))
}

func TestExcerptTruncatesRunes(t *testing.T) {
	s := New(LevelFull, "")
	assert.Equal(t, "héll...", s.Excerpt("héllo world", 4))
	assert.Equal(t, "short", s.Excerpt("short", 10))
	assert.Equal(t, "no limit", s.Excerpt("no limit", 0))
}
