// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aisuite/internal/diff"
)

// diffResult is the --json payload of the diff command.
type diffResult struct {
	Diff     *diff.TextDiff `json:"diff"`
	Segments []diff.Segment `json:"segments"`
	Stats    diff.DiffStats `json:"stats"`
}

func newDiffCmd(app *App) *cobra.Command {
	var fromFile bool

	cmd := &cobra.Command{
		Use:   "diff <original> <formatted>",
		Short: "Show a character diff between two texts",
		Long: `Computes the same inline diff the formatter shows, locally and without
a server. With --file the two arguments are file paths.`,
		Example: `  aisuite diff "teh quick fox" "the quick fox"
  aisuite diff --file draft.txt final.txt`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			orig, formatted := args[0], args[1]
			if fromFile {
				var err error
				if orig, err = readTextFile(orig); err != nil {
					return err
				}
				if formatted, err = readTextFile(formatted); err != nil {
					return err
				}
			}

			d := diff.New(orig, formatted)
			segs := d.Segments()
			res := diffResult{Diff: d, Segments: segs, Stats: diff.Stats(segs)}
			return app.emit(cmd, res, func() string {
				return app.renderer.Diff(segs) + "\n\n" + app.renderer.DiffStats(res.Stats)
			})
		},
	}
	cmd.Flags().BoolVarP(&fromFile, "file", "f", false, "treat the arguments as file paths")
	return cmd
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
