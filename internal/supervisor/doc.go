// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package supervisor provides process supervision for Vidsift using suture v4.

All long-running components run under a hierarchical supervisor tree with
Erlang/OTP-style restart semantics: crashed services are restarted with
exponential backoff, and failures are isolated per layer.

# Tree layout

	RootSupervisor ("vidsift")
	├── DataSupervisor ("data-layer")
	│   └── maintenance scheduler (session sweep, history prune, badger GC)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── analysis history writer
	│   ├── WebSocket hub
	│   └── WebSocket analysis feed
	└── APISupervisor ("api-layer")
	    └── HTTP server

The layering keeps faults contained: a wedged maintenance job restarts
inside the data layer without touching WebSocket connections, and a failing
bus consumer never takes the HTTP server offline.

# Service contract

A service is anything with Serve(ctx context.Context) error that blocks
until the context is cancelled, plus an optional String() for log names.
The history writer, feed, hub, and maintenance scheduler implement this
directly; the HTTP server is adapted by services.HTTPServerService.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(maint)
	tree.AddMessagingService(writer)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(feed)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

Suture lifecycle events are logged through the process logger's slog bridge
(sutureslog). On shutdown, UnstoppedServiceReport names any service that
ignored its deadline.
*/
package supervisor
