// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// VersionInfo is the --json payload of the version command.
type VersionInfo struct {
	Version       string `json:"version"`
	GitCommit     string `json:"git_commit"`
	BuildDate     string `json:"build_date"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	Server        string `json:"server,omitempty"`
	ServerStatus  string `json:"server_status,omitempty"`
	ServerVersion string `json:"server_version,omitempty"`
}

func newVersionCmd(app *App) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if check {
				api, err := app.client()
				if err != nil {
					return err
				}
				h, err := api.Health(cmd.Context())
				if err != nil {
					return err
				}
				info.Server = api.BaseURL()
				info.ServerStatus = h.Status
				info.ServerVersion = h.Version
			}

			return app.emit(cmd, info, func() string {
				lines := []string{
					fmt.Sprintf("aisuite %s", info.Version),
					fmt.Sprintf("  commit:   %s", info.GitCommit),
					fmt.Sprintf("  built:    %s", info.BuildDate),
					fmt.Sprintf("  go:       %s %s", info.GoVersion, info.Platform),
				}
				if info.Server != "" {
					lines = append(lines, fmt.Sprintf("  server:   %s (%s, %s)", info.Server, info.ServerStatus, info.ServerVersion))
				}
				return strings.Join(lines, "\n")
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also check that the server is reachable")
	return cmd
}
