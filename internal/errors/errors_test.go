package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFilterError_Error(t *testing.T) {
	err := New(ErrCategoryIO, CodeReadFailed, "can't read the property file a.props")
	expected := "[IO:READ_FAILED] can't read the property file a.props"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestFilterError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := Wrap(ErrCategoryIO, CodeWriteFailed, "can't open the output file", cause)
	expected := "[IO:WRITE_FAILED] can't open the output file: permission denied"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestFilterError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryFormat, CodeMalformedBlob, "aspects blob truncated", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestFilterError_Is(t *testing.T) {
	err1 := New(ErrCategoryFormat, CodeMalformedBlob, "first")
	err2 := New(ErrCategoryFormat, CodeMalformedBlob, "second")
	err3 := New(ErrCategoryFormat, CodeColumnMismatch, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestFilterError_IsThroughWrapping(t *testing.T) {
	inner := New(ErrCategoryConfig, CodeUnknownTarget, "unknown target xyz")
	outer := fmt.Errorf("loading capabilities: %w", inner)
	if !errors.Is(outer, New(ErrCategoryConfig, CodeUnknownTarget, "")) {
		t.Error("Is should match category+code through fmt.Errorf wrapping")
	}
}

func TestCategoryOf(t *testing.T) {
	err := New(ErrCategoryArgument, CodeMissingArgument, "target not provided")
	if CategoryOf(err) != ErrCategoryArgument {
		t.Errorf("got %q, want %q", CategoryOf(err), ErrCategoryArgument)
	}
	if CategoryOf(fmt.Errorf("plain error")) != "" {
		t.Error("non-FilterError should return empty category")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if CategoryOf(wrapped) != ErrCategoryArgument {
		t.Error("CategoryOf should see through wrapping")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCategoryFormat, CodeColumnMismatch, "row %d has %d cells, want %d", 3, 2, 4)
	expected := "[FORMAT:COLUMN_MISMATCH] row 3 has 2 cells, want 4"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}
