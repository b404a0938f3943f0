// Package source loads the challenge list from a CSV document, either a local
// file or a remote spreadsheet export.
package source

import "strings"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse splits CSV text into rows of fields.
//
// Quoted fields may contain commas and newlines, and a doubled quote inside a
// quoted field is a literal quote. An unterminated quote swallows the rest of
// the input into the current field. Parse never fails.
func Parse(text string) [][]string {
	text = lineEndings.Replace(text)

	var (
		rows    [][]string
		row     []string
		val     strings.Builder
		inQuote bool
	)

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuote && i+1 < len(text) && text[i+1] == '"' {
				val.WriteByte('"')
				i++
			} else {
				inQuote = !inQuote
			}
		case c == ',' && !inQuote:
			row = append(row, val.String())
			val.Reset()
		case c == '\n' && !inQuote:
			row = append(row, val.String())
			rows = append(rows, row)
			row = nil
			val.Reset()
		default:
			val.WriteByte(c)
		}
	}

	// Flush a trailing row with no terminating newline
	if val.Len() > 0 || len(row) > 0 {
		row = append(row, val.String())
		rows = append(rows, row)
	}

	return rows
}
