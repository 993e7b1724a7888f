package geekcms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	for in, want := range map[string]string{
		"Hello World":                "hello-world",
		"  GameGeek -- Summit 2025!": "gamegeek-summit-2025",
		"already-a-slug":             "already-a-slug",
		"":                           "",
	} {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestParseLegacyDate(t *testing.T) {
	assert.Equal(t, "2025-08-28", ParseLegacyDate("August 28, 2025").String())
	assert.Equal(t, "2024-01-05", ParseLegacyDate("2024-01-05").String())
	assert.Equal(t, time.Now().UTC().Format(DateLayout), ParseLegacyDate("sometime").String())
}
