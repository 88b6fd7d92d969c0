// Package options extracts the [OPTIONS: ...] quick-reply marker from
// generated text. Pure text in, text plus list out, so it stays testable
// independent of the generation call.
package options

import (
	"regexp"
	"strings"
)

// markerPattern matches the structured options marker embedded in a
// generated message, e.g. "[OPTIONS: Yes, No]".
var markerPattern = regexp.MustCompile(`\[OPTIONS:\s*([^\]]*)\]`)

// Extract strips the first options marker from text and splits its
// contents into the ordered option list. Both the neutral comma and the
// Arabic comma act as delimiters; options are trimmed, empties dropped,
// order and duplicates preserved. Text without a marker comes back
// unchanged with a nil list.
func Extract(text string) (string, []string) {
	loc := markerPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return text, nil
	}

	raw := text[loc[2]:loc[3]]
	var opts []string
	for _, part := range strings.FieldsFunc(raw, isDelimiter) {
		if opt := strings.TrimSpace(part); opt != "" {
			opts = append(opts, opt)
		}
	}

	clean := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return clean, opts
}

func isDelimiter(r rune) bool {
	return r == ',' || r == '،'
}
