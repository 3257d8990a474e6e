package table

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// Read parses a table from r. The first line must be a bracketed header
// of the form [col1|col2|...|colN]; each subsequent line is one row with
// pipe-separated cell values matched positionally to the columns.
func Read(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
				"can't read the table header", err)
		}
		return nil, ferrors.New(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
			"table is empty, expected a [col1|col2|...] header line")
	}

	header := scanner.Text()
	if len(header) < 2 || header[0] != '[' || header[len(header)-1] != ']' {
		return nil, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeMalformedHeader,
			"table header %q is not of the form [col1|col2|...]", header)
	}

	t, err := New(strings.Split(header[1:len(header)-1], "|"))
	if err != nil {
		return nil, err
	}

	line := 1
	for scanner.Scan() {
		line++
		cells := strings.Split(scanner.Text(), "|")
		if len(cells) != len(t.Columns) {
			return nil, ferrors.Newf(ferrors.ErrCategoryFormat, ferrors.CodeColumnMismatch,
				"line %d has %d cells, header declares %d columns", line, len(cells), len(t.Columns))
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't read the table body", err)
	}

	return t, nil
}

// ReadFile parses a table from the file at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't open the table file "+path, err)
	}
	defer f.Close()
	return Read(f)
}

// ReadBytes parses a table from an in-memory buffer.
func ReadBytes(data []byte) (*Table, error) {
	return Read(bytes.NewReader(data))
}
