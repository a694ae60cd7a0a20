package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table maps a spell name to a value such as its page number or new name.
type Table map[string]string

// ReadTable reads a tab-separated two-column table. Blank lines are skipped
// and every column is trimmed. A later duplicate key wins.
func ReadTable(r io.Reader) (Table, error) {
	table := Table{}
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected two tab-separated columns, got %q", line, text)
		}
		table[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	return table, nil
}

// LoadTable reads a table from path.
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("loading table %s: %w", path, err)
	}
	return table, nil
}
