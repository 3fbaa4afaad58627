// Package app wires and runs the dashboard server.
//
// NewApplication builds the services, handlers and middleware chain from
// the configuration; Run serves until SIGINT or SIGTERM and then shuts the
// server and the OpenTelemetry providers down.
//
// # Routes
//
//	/api/health               health of the server and of the generated data
//	/api/documents[/{name}]   the dashboard documents as JSON
//	/metrics                  Prometheus metrics, when enabled
//	/data/*                   the output directory as static files
//	/<document file>          each output file at the site root
//	/*                        the static dashboard pages
//
// The server only reads the output directory. Documents are produced by the
// processor binary.
package app
