package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeLogMessage(t *testing.T) {
	assert.Equal(t, "hello\tworld\n", SanitizeLogMessage("hello\tworld\n"))
	assert.Equal(t, "abc", SanitizeLogMessage("a\x00b\x07c"))
}

func TestSanitizeLogTitle(t *testing.T) {
	long := strings.Repeat("x", 80)
	got := SanitizeLogTitle(long)
	assert.Equal(t, strings.Repeat("x", 50)+"...", got)
	assert.Equal(t, "sunset", SanitizeLogTitle("sunset"))
}
