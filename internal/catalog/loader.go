package catalog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/khanglvm/tool-hub-search/internal/jsonx"
)

// Format names an on-disk snapshot encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCBOR  Format = "cbor"
)

// compressedExt marks a zstd-compressed snapshot ("tools.json.zst").
const compressedExt = ".zst"

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// snapshot is the document layout shared by every structured format.
type snapshot struct {
	Version string       `json:"version" yaml:"version"`
	Tools   []ToolRecord `json:"tools" yaml:"tools"`
}

// ParseFormat converts a format name, accepting "yml" for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "jsonc":
		return FormatJSONC, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath derives the format from a file name and reports whether
// the file is zstd-compressed.
func FormatFromPath(path string) (Format, bool, error) {
	compressed := strings.HasSuffix(path, compressedExt)
	if compressed {
		path = strings.TrimSuffix(path, compressedExt)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	format, err := ParseFormat(ext)
	if err != nil {
		return "", false, err
	}
	return format, compressed, nil
}

// Load reads a catalog snapshot file. The format follows the file
// extension; a trailing ".zst" means the payload is zstd-compressed.
func Load(path string) (*ToolCatalog, error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if compressed {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
		}
	}

	cat, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadDir loads every file under root matching a doublestar pattern
// (e.g. "**/*.json") in sorted path order and merges their tools into one
// catalog. The merged catalog's version is its fingerprint.
func LoadDir(root, pattern string) (*ToolCatalog, error) {
	fsys := os.DirFS(root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	var records []ToolRecord
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil || info.IsDir() {
			continue
		}
		cat, err := Load(filepath.Join(root, filepath.FromSlash(match)))
		if err != nil {
			return nil, err
		}
		records = append(records, cat.tools...)
	}

	return New("", records)
}

// Decode parses an uncompressed snapshot. Structured formats accept either
// {"version": ..., "tools": [...]} or a bare array of tools.
func Decode(data []byte, format Format) (*ToolCatalog, error) {
	switch format {
	case FormatJSON, FormatJSONC:
		return decodeDocument(jsonc.ToJSON(data), jsonx.Unmarshal)
	case FormatJSONL:
		return decodeLines(data)
	case FormatYAML:
		return decodeDocument(data, yaml.Unmarshal)
	case FormatCBOR:
		return decodeDocument(data, cbor.Unmarshal)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func decodeDocument(data []byte, unmarshal func([]byte, any) error) (*ToolCatalog, error) {
	var doc snapshot
	docErr := unmarshal(data, &doc)
	if docErr == nil {
		return New(doc.Version, doc.Tools)
	}

	var tools []ToolRecord
	if err := unmarshal(data, &tools); err != nil {
		return nil, docErr
	}
	return New("", tools)
}

func decodeLines(data []byte) (*ToolCatalog, error) {
	var tools []ToolRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var r ToolRecord
		if err := jsonx.Unmarshal(text, &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		tools = append(tools, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return New("", tools)
}

// Write encodes the catalog in the given format.
func Write(w io.Writer, c *ToolCatalog, format Format) error {
	doc := snapshot{Version: c.version, Tools: c.tools}

	switch format {
	case FormatJSON, FormatJSONC:
		enc := jsonx.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatJSONL:
		enc := jsonx.NewEncoder(w)
		for _, r := range c.tools {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("failed to encode tool %s: %w", r.Key(), err)
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		data, err := cbor.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteFile writes the catalog to path, choosing format and compression
// from the extension the same way Load does.
func WriteFile(path string, c *ToolCatalog) error {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Write(&buf, c, format); err != nil {
		return err
	}

	data := buf.Bytes()
	if compressed {
		data, err = compress(data)
		if err != nil {
			return fmt.Errorf("failed to compress catalog: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}
