// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aisuite/internal/plugin"
	"github.com/jeranaias/aisuite/internal/render"
)

// Run shows panel full screen until the user quits or ctx is done. Panel
// changes reach the program as ViewMsg.
func Run(ctx context.Context, panel *plugin.SummaryPanel, r *render.Renderer, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		New(panel, r),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)

	unsub := panel.Subscribe(func(v plugin.PanelView) {
		p.Send(ViewMsg(v))
	})
	defer unsub()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
