// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package supervisor runs Sentinel's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("sentinel")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── RetentionService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Each layer counts
failures independently, so a retention sweep that keeps failing does not
take the HTTP API down. Supervisor events are logged through sutureslog,
which main wires to the zerolog-backed slog handler from the logging
package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(services.NewRetentionService(auditLogger, alerts, retentionCfg))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
