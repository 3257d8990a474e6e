package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"

	ferrors "github.com/sycltools/aspect-filter/internal/errors"
)

func TestLocalSource_ReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.props")
	content := []byte("[SYCL/device requirements]\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	src := NewLocalSource()
	got, err := src.ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestLocalSource_NotFound(t *testing.T) {
	src := NewLocalSource()
	_, err := src.ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected an error")
	}
	want := ferrors.New(ferrors.ErrCategoryIO, ferrors.CodeFileNotFound, "")
	if !errors.Is(err, want) {
		t.Errorf("got %v, want FILE_NOT_FOUND", err)
	}
}

func TestRouter_LocalAndSnappy(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.table")
	if err := os.WriteFile(plain, []byte("[Code]\na.o\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	compressed := filepath.Join(dir, "big.props.snappy")
	payload := []byte("[SYCL/device requirements]\nreqd_sub_group_size|16\n")
	if err := os.WriteFile(compressed, snappy.Encode(nil, payload), 0644); err != nil {
		t.Fatalf("failed to write compressed file: %v", err)
	}

	router := NewRouter(func(ctx context.Context) (Source, error) {
		t.Fatal("local paths must not build an S3 source")
		return nil, nil
	})

	ctx := context.Background()
	got, err := router.ReadFile(ctx, plain)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "[Code]\na.o\n" {
		t.Errorf("got %q", got)
	}

	got, err = router.ReadFile(ctx, compressed)
	if err != nil {
		t.Fatalf("ReadFile of .snappy failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want decompressed payload", got)
	}
}

func TestRouter_CorruptSnappy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.snappy")
	if err := os.WriteFile(path, []byte("not snappy data"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	router := NewRouter(nil)
	_, err := router.ReadFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if ferrors.CategoryOf(err) != ferrors.ErrCategoryFormat {
		t.Errorf("got category %q, want FORMAT", ferrors.CategoryOf(err))
	}
}

func TestRouter_S3SourceIsLazy(t *testing.T) {
	built := 0
	fake := &fakeSource{data: map[string][]byte{
		"s3://cache/props/a.props": []byte("content"),
	}}
	router := NewRouter(func(ctx context.Context) (Source, error) {
		built++
		return fake, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := router.ReadFile(ctx, "s3://cache/props/a.props")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(got) != "content" {
			t.Errorf("got %q, want content", got)
		}
	}
	if built != 1 {
		t.Errorf("S3 source built %d times, want 1", built)
	}
}

func TestSplitS3Path(t *testing.T) {
	bucket, key, err := splitS3Path("s3://cache/props/a.props")
	if err != nil {
		t.Fatalf("splitS3Path failed: %v", err)
	}
	if bucket != "cache" || key != "props/a.props" {
		t.Errorf("got %q/%q, want cache/props/a.props", bucket, key)
	}

	for _, bad := range []string{"s3://", "s3://bucketonly", "s3://bucket/"} {
		if _, _, err := splitS3Path(bad); err == nil {
			t.Errorf("splitS3Path(%q) should fail", bad)
		}
	}
}

type fakeSource struct {
	data map[string][]byte
}

func (f *fakeSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if data, ok := f.data[path]; ok {
		return data, nil
	}
	return nil, ferrors.New(ferrors.ErrCategoryIO, ferrors.CodeFileNotFound, "file '"+path+"' not found")
}
