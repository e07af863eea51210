package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/amba-hq/amba/internal/config"
)

// SmallDataSizeBytes is the largest query file read in one go when
// Settings.LoadSmallDataInMemory is set.
const SmallDataSizeBytes = 1_000_000

// Query is one line of a batch file: a numeric gene id or an acronym.
type Query struct {
	Line    int
	ID      int
	Acronym string
}

// ByID reports whether the query addresses a gene by numeric id.
func (q Query) ByID() bool { return q.Acronym == "" }

// String returns the query as written in the source file.
func (q Query) String() string {
	if q.ByID() {
		return strconv.Itoa(q.ID)
	}
	return q.Acronym
}

// LoadQueries reads queries from path. Blank lines and lines starting with '#'
// are skipped.
func LoadQueries(path string, settings config.Settings) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat queries file: %w", err)
	}

	if settings.LoadSmallDataInMemory && info.Size() <= SmallDataSizeBytes {
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read queries file: %w", err)
		}
		var out []Query
		for i, line := range strings.Split(string(raw), "\n") {
			if q, ok := parseLine(i+1, line); ok {
				out = append(out, q)
			}
		}
		return out, nil
	}

	return ReadQueries(f)
}

// ReadQueries streams queries from r line by line.
func ReadQueries(r io.Reader) ([]Query, error) {
	var out []Query
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		if q, ok := parseLine(line, sc.Text()); ok {
			out = append(out, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan queries: %w", err)
	}
	return out, nil
}

func parseLine(n int, raw string) (Query, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || strings.HasPrefix(text, "#") {
		return Query{}, false
	}
	if id, err := strconv.Atoi(text); err == nil {
		return Query{Line: n, ID: id}, true
	}
	return Query{Line: n, Acronym: text}, true
}
