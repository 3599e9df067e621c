// Package driving defines the interfaces through which external
// actors (CLI, MCP server, vault watcher) drive the core services.
package driving
