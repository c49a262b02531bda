package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []ToolRecord {
	return []ToolRecord{
		{Name: "github_create_issue", Server: "vcs", Description: "Create an issue on a repository", Category: "development", Source: SourceMCP, DeferLoading: true},
		{Name: "read_file", Server: "fs", Description: "Read a file from disk", Category: "filesystem", Source: SourceBuiltin},
	}
}

func TestNewCopiesRecords(t *testing.T) {
	records := sampleRecords()
	cat, err := New("v1", records)
	require.NoError(t, err)

	records[0].Name = "mutated"
	assert.Equal(t, "github_create_issue", cat.Tools()[0].Name)

	tools := cat.Tools()
	tools[1].Name = "mutated"
	assert.Equal(t, "read_file", cat.Tools()[1].Name)

	assert.Equal(t, "v1", cat.Version())
	assert.Equal(t, 2, cat.Len())
}

func TestNewRejectsDuplicates(t *testing.T) {
	records := append(sampleRecords(), ToolRecord{Name: "read_file", Server: "fs", Source: SourceBuiltin})

	_, err := New("", records)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateTool))
}

func TestNewAllowsSameNameOnDifferentServers(t *testing.T) {
	records := append(sampleRecords(), ToolRecord{Name: "read_file", Server: "remote", Source: SourceMCP})

	cat, err := New("", records)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record ToolRecord
		target error
	}{
		{"empty name", ToolRecord{Server: "x", Source: SourceMCP}, ErrInvalidTool},
		{"unknown source", ToolRecord{Name: "t", Server: "x", Source: "plugin"}, ErrInvalidSource},
		{"missing source", ToolRecord{Name: "t", Server: "x"}, ErrInvalidTool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("", []ToolRecord{tt.record})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestFingerprintVersion(t *testing.T) {
	a, err := New("", sampleRecords())
	require.NoError(t, err)
	b, err := New("", sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version())
	assert.Contains(t, a.Version(), "xxh64:")

	changed := sampleRecords()
	changed[1].DeferLoading = true
	c, err := New("", changed)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), c.Version())
}

func TestEmpty(t *testing.T) {
	cat := Empty()
	assert.Equal(t, 0, cat.Len())
	assert.NotEmpty(t, cat.Version())
}

func TestParseSource(t *testing.T) {
	for _, s := range Sources {
		got, err := ParseSource(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseSource("crate")
	assert.ErrorIs(t, err, ErrInvalidSource)
}
