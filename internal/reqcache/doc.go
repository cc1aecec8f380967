// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reqcache keeps per-session responses keyed on request shape.
//
// A Loader tracks one current request. Loading it returns the cached
// response when one exists for the request's logical key, otherwise it calls
// the wrapped fetch function and remembers the result. The force flag is
// never part of the key, so a forced refresh overwrites the entry that a
// plain load would read.
//
// # Key Types
//
//   - Loader: Cache plus current-request state
//   - Snapshot: What a view should display right now
//   - FetchFunc: The network call being wrapped
//
// # Usage
//
//	loader := reqcache.New(func(ctx context.Context, req model.SummaryRequest, force bool) (*model.SummaryResponse, error) {
//	    req.Force = force
//	    return api.Summarize(ctx, req)
//	})
//	defer loader.Close()
//
//	snap, _ := loader.SetRequest(ctx, &req)
//	if snap.Error != "" {
//	    fmt.Println(snap.Error)
//	}
//
// Entries never expire. Close drops them along with any in-flight fetches.
package reqcache
