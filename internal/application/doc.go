// Package application provides application initialization and dependency wiring.
// It resolves the catalog, builds the storage, metrics registry, handlers and
// routers, and the HTTP server, keeping the main package focused on CLI
// parsing and orchestration.
package application
