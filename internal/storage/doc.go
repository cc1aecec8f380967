// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local persistence for aisuite.
//
// A single sqlite database (pure Go driver, no cgo) holds the summary
// history shown by `aisuite history` and the action items served by the
// development server.
//
// # Key Types
//
//   - Store: the database handle, safe for concurrent use
//   - SummaryRecord: a lightweight history row for listing
//
// # Usage
//
//	store, err := storage.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	err = store.SaveSummary(ctx, resp)
//	recent, err := store.RecentSummaries(ctx, 20)
//
// Action items are soft-deleted; deleted rows are invisible to every read:
//
//	item, err := store.CreateActionItem(ctx, req.ToItem(userID))
//	err = store.DeleteActionItem(ctx, item.ID)
//	_, err = store.ActionItem(ctx, item.ID) // errors.Is(err, storage.ErrNotFound)
//
// # Storage Location
//
// The history database defaults to ~/.aisuite/history.db.
package storage
