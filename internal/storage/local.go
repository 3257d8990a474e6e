package storage

import (
	"context"
	"os"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// LocalSource reads files from the local filesystem.
type LocalSource struct{}

// NewLocalSource creates a local filesystem source.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// ReadFile returns the content of the local file at path.
func (l *LocalSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeFileNotFound,
				"file '"+path+"' not found", err)
		}
		return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
			"can't read "+path, err)
	}
	return data, nil
}
