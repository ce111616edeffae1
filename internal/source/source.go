// Package source supplies the raw text that the tabular parser reads.
//
// A logical source name such as "level1/props" is resolved by a [Provider].
// [FileProvider] reads from a directory and tries the bare name first, then
// the name with each known extension, so callers never need to spell out
// ".csv".
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrSourceNotFound is returned when no file matches a source name.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceTooLarge is returned when a source exceeds the size limit.
	ErrSourceTooLarge = errors.New("source file too large")

	// ErrInvalidName is returned for names that escape the provider root.
	ErrInvalidName = errors.New("invalid source name")
)

// DefaultMaxSize is the size limit used when none is configured (100MB).
const DefaultMaxSize int64 = 100 * 1024 * 1024

// DefaultExtensions are tried, in order, after the bare name.
var DefaultExtensions = []string{".csv", ".txt"}

// Provider returns the raw text for a logical source name.
type Provider interface {
	Load(ctx context.Context, name string) (string, error)
}

// FileProvider loads sources from files below Root.
type FileProvider struct {
	Root       string
	MaxSize    int64
	Extensions []string
}

// NewFileProvider creates a provider rooted at root. A non-positive maxSize
// selects DefaultMaxSize.
func NewFileProvider(root string, maxSize int64) *FileProvider {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FileProvider{
		Root:       root,
		MaxSize:    maxSize,
		Extensions: DefaultExtensions,
	}
}

// Load reads the named source, strips a UTF-8 BOM and replaces invalid
// UTF-8 bytes.
func (p *FileProvider) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("load source %q: %w", name, err)
	}

	path, err := p.resolve(name)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source %q: %w", name, err)
	}
	defer f.Close()

	data, err := readLimited(NewBOMSkippingReader(f), p.maxSize())
	if err != nil {
		return "", fmt.Errorf("read source %q: %w", name, err)
	}

	return string(SanitizeUTF8(data)), nil
}

// List returns the names of all loadable files directly under Root,
// without extension for files with a known extension.
func (p *FileProvider) List() ([]string, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		for _, known := range p.extensions() {
			if ext == known {
				names = append(names, strings.TrimSuffix(name, ext))
				break
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

// resolve maps a logical name to an existing file path below Root.
func (p *FileProvider) resolve(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	candidates := []string{clean}
	for _, ext := range p.extensions() {
		candidates = append(candidates, clean+ext)
	}

	for _, c := range candidates {
		path := filepath.Join(p.Root, c)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrSourceNotFound, name)
}

func (p *FileProvider) maxSize() int64 {
	if p.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return p.MaxSize
}

func (p *FileProvider) extensions() []string {
	if p.Extensions == nil {
		return DefaultExtensions
	}
	return p.Extensions
}

// readLimited reads all of r, failing with ErrSourceTooLarge past max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrSourceTooLarge, max)
	}
	return data, nil
}

// StaticProvider serves sources from memory.
type StaticProvider map[string]string

// Load returns the text stored under name.
func (p StaticProvider) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, ok := p[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSourceNotFound, name)
	}
	return text, nil
}
