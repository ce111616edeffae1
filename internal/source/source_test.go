package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFileProvider_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "props.csv", []byte("name,x\nfoo,1\n"))
	writeFile(t, dir, "notes.txt", []byte("a\n1\n"))
	writeFile(t, dir, "exact", []byte("exact\n1\n"))
	writeFile(t, dir, "levels/one.csv", []byte("nested\n1\n"))

	p := NewFileProvider(dir, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		want string
	}{
		{name: "props", want: "name,x\nfoo,1\n"},
		{name: "props.csv", want: "name,x\nfoo,1\n"},
		{name: "notes", want: "a\n1\n"},
		{name: "exact", want: "exact\n1\n"},
		{name: "levels/one", want: "nested\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Load(ctx, tt.name)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("Load(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileProvider_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "big.csv", bytes.Repeat([]byte("a"), 64))

	p := NewFileProvider(dir, 32)
	ctx := context.Background()

	tests := []struct {
		name    string
		wantErr error
	}{
		{name: "missing", wantErr: ErrSourceNotFound},
		{name: "big", wantErr: ErrSourceTooLarge},
		{name: "../outside", wantErr: ErrInvalidName},
		{name: "/etc/passwd", wantErr: ErrInvalidName},
		{name: "", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Load(ctx, tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestFileProvider_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "props.csv", []byte("a\n1\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileProvider(dir, 0).Load(ctx, "props")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestFileProvider_StripsBOMAndSanitizes(t *testing.T) {
	dir := t.TempDir()
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\ncaf\xe9\n")...)
	writeFile(t, dir, "bom.csv", data)

	got, err := NewFileProvider(dir, 0).Load(context.Background(), "bom")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := "name\ncaf�\n"
	if got != want {
		t.Errorf("Load() = %q, want %q", got, want)
	}
}

func TestFileProvider_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", []byte("x"))
	writeFile(t, dir, "a.txt", []byte("x"))
	writeFile(t, dir, "upper.CSV", []byte("x"))
	writeFile(t, dir, "ignored.json", []byte("x"))
	writeFile(t, dir, "sub/c.csv", []byte("x"))

	got, err := NewFileProvider(dir, 0).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("List() = %v, want [a b]", got)
	}
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{"props": "a\n1\n"}

	got, err := p.Load(context.Background(), "props")
	if err != nil || got != "a\n1\n" {
		t.Errorf("Load(props) = %q, %v", got, err)
	}

	if _, err := p.Load(context.Background(), "nope"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Load(nope) error = %v, want ErrSourceNotFound", err)
	}
}

// ============================================================================
// Encoding Tests
// ============================================================================

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "with BOM", input: []byte("\xEF\xBB\xBFhello"), want: "hello"},
		{name: "without BOM", input: []byte("hello"), want: "hello"},
		{name: "empty", input: []byte{}, want: ""},
		{name: "only BOM", input: []byte("\xEF\xBB\xBF"), want: ""},
		{name: "short input", input: []byte("hi"), want: "hi"},
		{name: "partial BOM kept", input: []byte("\xEF\xBBx"), want: "\xEF\xBBx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("ReadAll error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []byte
	}{
		{name: "valid unchanged", input: []byte("hello world"), want: []byte("hello world")},
		{name: "valid unicode", input: []byte("hello \xe4\xb8\x96"), want: []byte("hello \xe4\xb8\x96")},
		{name: "invalid byte", input: []byte{0x80}, want: []byte("�")},
		{name: "truncated sequence", input: []byte{0xc3}, want: []byte("�")},
		{name: "mixed", input: []byte("hello\x80world"), want: []byte("hello�world")},
		{name: "Windows-1252 quotes", input: []byte("\x93q\x94"), want: []byte("�q�")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeUTF8(tt.input)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("SanitizeUTF8(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
