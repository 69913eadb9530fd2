package sqlgateway

import (
	"regexp"
	"strings"
)

// rowsFooter matches the trailing "(N rows)" / "(1 row)" psql footer.
var rowsFooter = regexp.MustCompile(`^\(\d+ rows?\)$`)

// ParseTable parses psql's default aligned table output into rows of
// trimmed cell values. It skips the two header lines (column names,
// then the `---+---` separator) and stops at the "(N rows)" footer.
func ParseTable(text string) [][]string {
	lines := strings.Split(text, "\n")

	var rows [][]string
	headerLinesSeen := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		if rowsFooter.MatchString(strings.TrimSpace(trimmed)) {
			break
		}
		if headerLinesSeen < 2 {
			headerLinesSeen++
			continue
		}
		cells := strings.Split(trimmed, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	return rows
}
