package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{"simple rows", "a,b\nc,d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"quoted comma", `x,"y,z",w`, [][]string{{"x", "y,z", "w"}}},
		{"doubled quote", `"a""b"`, [][]string{{`a"b`}}},
		{"quoted newline", "\"line1\nline2\",b\n", [][]string{{"line1\nline2", "b"}}},
		{"crlf endings", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"bare cr endings", "a\rb", [][]string{{"a"}, {"b"}}},
		{"trailing comma flushes empty field", "a,", [][]string{{"a", ""}}},
		{"empty line is a row", "a\n\nb", [][]string{{"a"}, {""}, {"b"}}},
		{"unterminated quote swallows rest", "a,\"b,c\nd", [][]string{{"a", "b,c\nd"}}},
		{"empty input", "", nil},
		{"utf-8 passes through", "é,ü\n", [][]string{{"é", "ü"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}
