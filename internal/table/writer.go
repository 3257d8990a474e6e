package table

import (
	"bufio"
	"io"
	"os"
	"strings"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// Write serializes the table to w in the same format Read accepts.
// When writeHeader is false only the data rows are emitted; column order
// always matches the order the table was constructed with.
func (t *Table) Write(w io.Writer, writeHeader bool) error {
	bw := bufio.NewWriter(w)

	if writeHeader {
		if _, err := bw.WriteString("[" + strings.Join(t.Columns, "|") + "]\n"); err != nil {
			return ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeWriteFailed,
				"can't write the table header", err)
		}
	}
	for _, row := range t.Rows {
		if _, err := bw.WriteString(strings.Join(row, "|") + "\n"); err != nil {
			return ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeWriteFailed,
				"can't write a table row", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeWriteFailed,
			"can't flush the table output", err)
	}
	return nil
}

// WriteFile serializes the table to the file at path, creating or
// truncating it.
func (t *Table) WriteFile(path string, writeHeader bool) error {
	f, err := os.Create(path)
	if err != nil {
		return ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeWriteFailed,
			"can't open the output file "+path, err)
	}
	if err := t.Write(f, writeHeader); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeWriteFailed,
			"can't close the output file "+path, err)
	}
	return nil
}
