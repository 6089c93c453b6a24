package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"borsch/internal/config"
)

const maxSourceBytes = 1 << 20

// readSource loads program text from the named file, or stdin for "-" or no
// argument. Content is passed through unchanged.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	name := "-"
	if len(args) > 0 {
		name = args[0]
	}

	var r io.Reader
	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		path, err := config.ExpandPath(name)
		if err != nil {
			return "", "", fmt.Errorf("resolve source path: %w", err)
		}
		f, err := os.Open(path)
		if err != nil {
			return "", "", fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		r = f
		name = path
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return "", "", fmt.Errorf("read source: %w", err)
	}
	if len(data) > maxSourceBytes {
		return "", "", fmt.Errorf("source %s exceeds %d bytes", name, maxSourceBytes)
	}
	return string(data), name, nil
}
