// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package plugin registers the AI suite's summary entry points with a host
// UI and drives the summary panel.
//
// A host exposes any subset of the registrar interfaces. Initialize checks
// the host for each one and registers what it can; missing capabilities
// are skipped silently.
//
// # Key Types
//
//   - Plugin: the registration entry point
//   - Bridge: publishes the current summary target to subscribers
//   - SummaryPanel: turns targets into cached summary loads
//   - TerminalHost: a host for the command line that implements every registrar
//
// # Usage
//
//	p := plugin.New(apiClient)
//	host := plugin.NewTerminalHost()
//	p.Initialize(host)
//	defer p.Uninitialize()
//
//	if err := host.ClickPostMenu(plugin.ActionSummarizeThread, postID); err != nil {
//	    return err
//	}
//	p.Panel().Wait()
//	view := p.Panel().View()
package plugin
