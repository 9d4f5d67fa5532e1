// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package services adapts components with their own lifecycle APIs to the
supervisor's service contract.

Most of Vidsift's long-running pieces (history writer, analysis feed,
maintenance scheduler) implement Serve(ctx) error natively and are added
to the tree directly. Two need adapters:

  - HTTPServerService: bridges http.Server's blocking ListenAndServe and
    explicit Shutdown to a single context-driven Serve.
  - WebSocketHubService: names the hub in supervisor logs and delegates to
    its RunWithContext loop.

Adapters here must return promptly when their context is cancelled:
suture treats an overrun of the shutdown timeout as an unstopped service
and reports it at process exit.
*/
package services
