// Package sanitize makes log-derived and tool-derived text safe to print on
// a terminal. Firewall logs are attacker-influenced input, and so is the
// output of enforcement tools that echo it back.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength caps any single field in the console summary.
const DefaultMaxLength = 120

// Field sanitizes s for the terminal and truncates it to maxLen bytes.
// A maxLen of zero or less disables truncation.
func Field(s string, maxLen int) string {
	return Truncate(Terminal(s), maxLen)
}

// Truncate shortens s to at most maxLen bytes without splitting a rune.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	suffix := "..."
	if maxLen <= len(suffix) {
		suffix = ""
	}
	cut := maxLen - len(suffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}

// Terminal replaces control characters and strips ANSI escape sequences.
// Tabs and newlines become spaces so multi-line tool output stays on one row.
func Terminal(s string) string {
	if !hasControl(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 0x1B:
			i = skipEscape(s, i)
			b.WriteString("[ESC]")
		case c == '\t' || c == '\n':
			b.WriteByte(' ')
		case c == '\r':
			b.WriteString("[CR]")
		case c == 0x7F:
			b.WriteString("[DEL]")
		case c < 0x20:
			b.WriteString("[CTRL]")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Address keeps only characters that can appear in an IPv4 or IPv6 address.
func Address(addr string) string {
	var b strings.Builder
	b.Grow(len(addr))
	for i := 0; i < len(addr); i++ {
		c := addr[i]
		if (c >= '0' && c <= '9') || c == '.' || c == ':' ||
			(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			b.WriteByte(c)
		}
	}
	if b.Len() == 0 {
		return "[INVALID]"
	}
	return b.String()
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7F {
			return true
		}
	}
	return false
}

// skipEscape returns the index of the last byte of the escape sequence that
// starts at i. CSI sequences run up to their final byte.
func skipEscape(s string, i int) int {
	if i+1 >= len(s) || s[i+1] != '[' {
		return i
	}
	j := i + 2
	for j < len(s) && !isCSIFinal(s[j]) {
		j++
	}
	if j >= len(s) {
		return len(s) - 1
	}
	return j
}

func isCSIFinal(c byte) bool {
	return c >= 0x40 && c <= 0x7E
}
