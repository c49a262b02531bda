package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var format string
	var output string
	var compress bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tool catalog as a single snapshot file",
		Long: `Write the loaded catalog (a single file or a merged directory) to one
snapshot file for offline grep/jq searching or for shipping to another host.

The format follows the output extension: .json, .jsonl, .yaml, .cbor, any of
them optionally followed by .zst for zstd compression.

Default output: ~/.tool-hub-search-index.jsonl`,
		Example: `  # Export to default location (JSONL, one tool per line)
  tool-hub-search export

  # Export as a compressed CBOR snapshot
  tool-hub-search export --output ./tools.cbor.zst

  # Merge a directory of catalogs into one YAML file
  tool-hub-search export --catalog ./catalogs --format yaml --output ./tools.yaml

Grep usage examples:
  # Find filesystem tools
  grep '"filesystem"' ~/.tool-hub-search-index.jsonl

  # Extract all tool names
  jq -r '.name' ~/.tool-hub-search-index.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := exportPath(output, format, compress, cmd.Flags().Changed("format"))
			if err != nil {
				return err
			}

			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			if err := exportCatalog(cat, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d tools to %s\n", cat.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format: json, jsonl, yaml or cbor")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: ~/.tool-hub-search-index.<format>)")
	cmd.Flags().BoolVar(&compress, "zstd", false, "Compress the default output with zstd")

	return cmd
}

// exportPath resolves the output file. An explicit output decides the
// format by extension; --format must agree with it when both are given.
func exportPath(output, format string, compress, formatSet bool) (string, error) {
	want, err := catalog.ParseFormat(format)
	if err != nil {
		return "", err
	}

	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		output = filepath.Join(home, ".tool-hub-search-index."+string(want))
		if compress {
			output += ".zst"
		}
		return output, nil
	}

	got, _, err := catalog.FormatFromPath(output)
	if err != nil {
		return "", err
	}
	if formatSet && got != want {
		return "", fmt.Errorf("--format %s does not match output extension of %s", want, output)
	}
	return output, nil
}

// exportCatalog writes c to path while holding an exclusive lock.
func exportCatalog(c *catalog.ToolCatalog, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Acquire file lock to prevent concurrent writes
	lockFile, err := acquireFileLock(path)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer releaseFileLock(lockFile) //nolint:errcheck

	if err := catalog.WriteFile(path, c); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// acquireFileLock acquires an exclusive lock on the snapshot file.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire exclusive lock (non-blocking)
	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another export in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the file lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()

	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN) //nolint:errcheck
	lockFile.Close()

	return os.Remove(lockPath)
}
