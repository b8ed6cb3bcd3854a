package tools

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFileTools(t *testing.T) (*FileTools, string) {
	t.Helper()
	dir := t.TempDir()
	ft := NewFileTools(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return ft, dir
}

func kindIs(t *testing.T, err error, want Kind) {
	t.Helper()
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("error %v is not a classified tool error", err)
	}
	if te.Kind != want {
		t.Errorf("error kind = %q, want %q", te.Kind, want)
	}
}

func TestResolvePathEscapes(t *testing.T) {
	ft, _ := newTestFileTools(t)

	tests := []struct {
		name string
		path string
	}{
		{"parent traversal", "../outside.txt"},
		{"nested traversal", "dir/../../outside.txt"},
		{"absolute path", "/etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ft.Read(context.Background(), tt.path); err == nil {
				t.Errorf("Read(%q) succeeded, want rejection", tt.path)
			}
			if _, err := ft.Write(context.Background(), tt.path, "x"); err == nil {
				t.Errorf("Write(%q) succeeded, want rejection", tt.path)
			}
		})
	}
}

func TestListHidesDotfiles(t *testing.T) {
	ft, dir := newTestFileTools(t)

	for _, name := range []string{"visible.txt", ".hidden", ".git"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := ft.List(context.Background(), ".")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"sub/", "visible.txt"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListMissingDirectory(t *testing.T) {
	ft, _ := newTestFileTools(t)
	_, err := ft.List(context.Background(), "no-such-dir")
	kindIs(t, err, KindNotFound)
}

func TestReadMissingFile(t *testing.T) {
	ft, _ := newTestFileTools(t)
	_, err := ft.Read(context.Background(), "missing.txt")
	kindIs(t, err, KindNotFound)
}

func TestReadOversizeFile(t *testing.T) {
	ft, dir := newTestFileTools(t)
	big := strings.Repeat("a", MaxReadFileBytes+1)
	if err := os.WriteFile(filepath.Join(dir, "big.txt"), []byte(big), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ft.Read(context.Background(), "big.txt")
	kindIs(t, err, KindTruncated)
}

func TestReadNonUTF8(t *testing.T) {
	ft, dir := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(dir, "bin.dat"), []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ft.Read(context.Background(), "bin.dat")
	kindIs(t, err, KindInvalid)
}

func TestWriteCreatesParentsAndOverwrites(t *testing.T) {
	ft, dir := newTestFileTools(t)

	out, err := ft.Write(context.Background(), "deep/nested/file.txt", "first")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "file.txt") {
		t.Errorf("Write confirmation = %q, want path mention", out)
	}

	if _, err := ft.Write(context.Background(), "deep/nested/file.txt", "second"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "deep", "nested", "file.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("file content = %q, want second", data)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	ft, _ := newTestFileTools(t)

	if _, err := ft.Write(context.Background(), "note.txt", "remember this"); err != nil {
		t.Fatal(err)
	}
	got, err := ft.Read(context.Background(), "note.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "remember this" {
		t.Errorf("Read = %q, want the written content", got)
	}
}

func TestFileToolsDisabledWithoutWorkspace(t *testing.T) {
	ft := NewFileTools("", nil)
	if ft.Enabled() {
		t.Error("Enabled() = true without a workspace")
	}
	if _, err := ft.Read(context.Background(), "x"); err == nil {
		t.Error("Read succeeded without a workspace")
	}
}

func TestRegisteredFileTools(t *testing.T) {
	ft, dir := newTestFileTools(t)
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRegistry(0)
	RegisterFileTools(r, ft)

	res := r.Dispatch(context.Background(), Call{
		Name:      "read_file",
		Arguments: map[string]any{"path": "hello.txt"},
	})
	if res.IsError || res.Content != "hi" {
		t.Errorf("read_file result = %+v, want content hi", res)
	}

	res = r.Dispatch(context.Background(), Call{Name: "list_files", Arguments: map[string]any{}})
	if res.IsError || !strings.Contains(res.Content, "hello.txt") {
		t.Errorf("list_files result = %+v, want hello.txt listed", res)
	}

	res = r.Dispatch(context.Background(), Call{
		Name:      "write_file",
		Arguments: map[string]any{"path": "out.txt", "content": "data"},
	})
	if res.IsError {
		t.Errorf("write_file failed: %s", res.Content)
	}
}
