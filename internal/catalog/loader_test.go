package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSample(t *testing.T, cat *ToolCatalog) {
	t.Helper()
	require.Equal(t, 2, cat.Len())
	tools := cat.Tools()
	assert.Equal(t, "github_create_issue", tools[0].Name)
	assert.Equal(t, SourceMCP, tools[0].Source)
	assert.True(t, tools[0].DeferLoading)
	assert.Equal(t, "read_file", tools[1].Name)
	assert.Equal(t, SourceBuiltin, tools[1].Source)
	assert.False(t, tools[1].DeferLoading)
}

func TestLoadFormats(t *testing.T) {
	for _, name := range []string{"tools.jsonc", "tools.yaml"} {
		t.Run(name, func(t *testing.T) {
			cat, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			assertSample(t, cat)
			assert.Equal(t, "2026.10.1", cat.Version())
		})
	}
}

func TestLoadJSONLines(t *testing.T) {
	cat, err := Load(filepath.Join("testdata", "tools.jsonl"))
	require.NoError(t, err)
	assertSample(t, cat)
	assert.Equal(t, Fingerprint(cat.Tools()), cat.Version())
}

func TestLoadBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	data := `[{"name": "ping", "server": "net", "source": "builtin"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cat, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())
	assert.Equal(t, "ping", cat.Tools()[0].Name)
}

func TestWriteFileRoundTripsEveryFormat(t *testing.T) {
	src, err := New("v7", sampleRecords())
	require.NoError(t, err)

	for _, name := range []string{"out.json", "out.yaml", "out.cbor", "out.json.zst", "out.cbor.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, src))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.Tools(), got.Tools())
			assert.Equal(t, "v7", got.Version())
		})
	}
}

func TestWriteJSONLines(t *testing.T) {
	src, err := New("", sampleRecords())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, src, FormatJSONL))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))

	got, err := Decode(buf.Bytes(), FormatJSONL)
	require.NoError(t, err)
	assert.Equal(t, src.Tools(), got.Tools())
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("tools.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load("tools")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.json")
	data := `{"tools": [
		{"name": "ping", "server": "net", "source": "builtin"},
		{"name": "ping", "server": "net", "source": "mcp"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "servers", "vcs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "servers", "vcs", "tools.json"),
		[]byte(`[{"name": "github_create_issue", "server": "vcs", "source": "mcp"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "builtin.json"),
		[]byte(`[{"name": "read_file", "server": "fs", "source": "builtin"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# ignored"), 0644))

	cat, err := LoadDir(root, "**/*.json")
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	// Sorted path order: builtin.json before servers/vcs/tools.json.
	tools := cat.Tools()
	assert.Equal(t, "read_file", tools[0].Name)
	assert.Equal(t, "github_create_issue", tools[1].Name)
}

func TestLoadDirDuplicateAcrossFiles(t *testing.T) {
	root := t.TempDir()
	rec := []byte(`[{"name": "ping", "server": "net", "source": "builtin"}]`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.json"), rec, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.json"), rec, 0644))

	_, err := LoadDir(root, "*.json")
	assert.ErrorIs(t, err, ErrDuplicateTool)
}
