package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean", "SRC=203.0.113.7 PROTO=TCP", "SRC=203.0.113.7 PROTO=TCP"},
		{"ansi color", "\x1b[31mred\x1b[0m", "[ESC]red[ESC]"},
		{"screen clear payload", "\x1b[2J\x1b[HPWNED", "[ESC][ESC]PWNED"},
		{"bare escape", "a\x1bb", "a[ESC]b"},
		{"unterminated csi", "a\x1b[12", "a[ESC]"},
		{"tab and newline", "ipset v7.1:\tset\ndoes not exist", "ipset v7.1: set does not exist"},
		{"carriage return", "a\rb", "a[CR]b"},
		{"control", "a\x01b", "a[CTRL]b"},
		{"delete", "a\x7fb", "a[DEL]b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Terminal(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "short", Truncate("short", 0))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	// never split a multi-byte rune
	assert.Equal(t, "ab...", Truncate("abé-long-tail", 6))
}

func TestField(t *testing.T) {
	got := Field("\x1b[31mipset command not found on this host\x1b[0m", 20)
	assert.Equal(t, "[ESC]ipset comman...", got)
	assert.LessOrEqual(t, len(Field(strings.Repeat("x", 500), DefaultMaxLength)), DefaultMaxLength)
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "203.0.113.7", Address("203.0.113.7"))
	assert.Equal(t, "2001:db8::1", Address("2001:db8::1"))
	assert.Equal(t, "1.2.3.4", Address("1.2.3.4\n"))
	assert.Equal(t, "[INVALID]", Address("\x1b[xyz"))
}

func BenchmarkTerminal(b *testing.B) {
	line := "Jun 14 10:00:05 gw kernel: IPTABLES-BLOCKED: IN=eth0 OUT= SRC=203.0.113.7 DST=192.0.2.1 PROTO=TCP"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Terminal(line)
	}
}

func BenchmarkTerminal_WithEscape(b *testing.B) {
	line := "\x1b[31mSRC=203.0.113.7\x1b[0m PROTO=TCP"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Terminal(line)
	}
}
