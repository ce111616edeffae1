package tabular

import (
	"regexp"
	"strings"
)

// lineSplitRegex matches one line terminator. Alternation is leftmost-first,
// so "\r\n" and "\n\r" each count as a single break.
var lineSplitRegex = regexp.MustCompile(`\r\n|\n\r|\n|\r`)

// Parse converts text into rows keyed by the first line's columns.
//
// Text with no data line yields an empty slice. Data lines whose first field
// is empty are skipped. A line shorter than the header only populates the
// columns it has; extra values beyond the header are dropped.
func Parse(text string) []Row {
	lines := SplitLines(text)
	if len(lines) <= 1 {
		return []Row{}
	}

	header := SplitFields(lines[0])
	rows := make([]Row, 0, len(lines)-1)

	for _, line := range lines[1:] {
		values := SplitFields(line)
		if len(values) == 0 || values[0] == "" {
			continue
		}

		n := min(len(header), len(values))
		row := NewRow(n)
		for j := 0; j < n; j++ {
			row.Set(header[j], InferValue(CleanField(values[j])))
		}
		rows = append(rows, *row)
	}

	return rows
}

// Header returns the raw header fields of text, or nil if text is empty.
func Header(text string) []string {
	if text == "" {
		return nil
	}
	return SplitFields(SplitLines(text)[0])
}

// SplitLines splits text at every line terminator. Terminators are dropped,
// so a trailing newline produces a final empty line.
func SplitLines(text string) []string {
	return lineSplitRegex.Split(text, -1)
}

// SplitFields splits a line at each comma followed by an even number of
// double quotes. Quotes are kept in the returned fields.
//
// With unbalanced quotes the result is still well defined: `a,"b,c` splits
// only at the last comma, giving `a,"b` and `c`.
func SplitFields(line string) []string {
	remaining := strings.Count(line, `"`)
	fields := make([]string, 0, strings.Count(line, ",")+1)

	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			remaining--
		case ',':
			if remaining%2 == 0 {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}

	return append(fields, line[start:])
}
