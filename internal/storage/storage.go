// Package storage provides read access to the filter's input files.
// Inputs are addressed by plain local paths or s3:// URLs (build caches
// frequently live in object storage); artifacts with a .snappy suffix
// are transparently decompressed after fetch.
package storage

import (
	"context"
	"strings"

	"github.com/golang/snappy"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

// Source abstracts where input files are fetched from.
// Implementations include the local filesystem and S3.
type Source interface {
	// ReadFile returns the full content of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// s3Scheme prefixes paths that route to the S3 source.
const s3Scheme = "s3://"

// snappySuffix marks artifacts stored snappy-compressed.
const snappySuffix = ".snappy"

// Router dispatches reads by path scheme: s3:// URLs go to the S3
// source, everything else to the local source. The S3 source is built
// lazily on first use so local-only runs never touch AWS config.
type Router struct {
	local  Source
	s3     Source
	makeS3 func(ctx context.Context) (Source, error)
}

// NewRouter creates a router over the local filesystem and, when an
// s3:// path is encountered, an S3 source built by makeS3.
func NewRouter(makeS3 func(ctx context.Context) (Source, error)) *Router {
	return &Router{
		local:  NewLocalSource(),
		makeS3: makeS3,
	}
}

// ReadFile fetches the file at path from the source its scheme selects
// and decompresses it if the path carries the .snappy suffix.
func (r *Router) ReadFile(ctx context.Context, path string) ([]byte, error) {
	src := r.local
	if strings.HasPrefix(path, s3Scheme) {
		if r.s3 == nil {
			s3src, err := r.makeS3(ctx)
			if err != nil {
				return nil, ferrors.Wrap(ferrors.ErrCategoryIO, ferrors.CodeReadFailed,
					"can't initialize the S3 source for "+path, err)
			}
			r.s3 = s3src
		}
		src = r.s3
	}

	data, err := src.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return maybeDecompress(path, data)
}

// maybeDecompress decodes snappy-compressed content for .snappy paths.
func maybeDecompress(path string, data []byte) ([]byte, error) {
	if !strings.HasSuffix(path, snappySuffix) {
		return data, nil
	}
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCategoryFormat, ferrors.CodeMalformedValue,
			"can't decompress "+path, err)
	}
	return decoded, nil
}
