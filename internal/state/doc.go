// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds client-side application state for summaries, action
// items and the formatter.
//
// State changes only through Reduce, a pure function from the previous
// state and an Action to the next state. Reduce never mutates its input:
// it copies whatever it changes, so a state pointer handed to a
// subscriber stays valid.
//
// # Key Types
//
//   - AppState: the whole state tree
//   - Action: a sealed interface; one struct per event
//   - Store: holds the current state and notifies subscribers
//
// # Usage
//
//	store := state.NewStore(nil)
//	unsubscribe := store.Subscribe(func(s *state.AppState) {
//	    render(state.ActiveActionItems(s))
//	})
//	defer unsubscribe()
//
//	_, err := state.FetchActionItems(ctx, store, apiClient, filters)
package state
