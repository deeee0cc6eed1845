package model

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestOpErrorMessage(t *testing.T) {
	t.Parallel()

	err := &OpError{Op: "patch.read", Kind: KindRead, Path: "index.html", Err: fs.ErrPermission}
	got := err.Error()
	for _, want := range []string{"patch.read", "read", "path=index.html", "permission denied"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}

	var nilErr *OpError
	if nilErr.Error() != "<nil>" {
		t.Errorf("nil Error() = %q", nilErr.Error())
	}
}

func TestIsKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &OpError{Op: "patch.write", Kind: KindWrite, Err: fs.ErrNotExist})

	if !IsKind(err, KindWrite) {
		t.Error("expected KindWrite")
	}
	if IsKind(err, KindRead) {
		t.Error("unexpected KindRead")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("Unwrap should expose the cause")
	}
	if IsKind(errors.New("plain"), KindWrite) {
		t.Error("plain error should not match")
	}
}

func TestLinkIsIssue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status LinkStatus
		want   bool
	}{
		{StatusOK, false},
		{StatusExternal, false},
		{StatusAbsolute, true},
		{StatusBroken, true},
	}
	for _, tt := range tests {
		if got := (Link{Status: tt.status}).IsIssue(); got != tt.want {
			t.Errorf("IsIssue(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
