// Package domain contains the core entities of the vault index:
// documents, folders, term rows, tokens, change events and search
// results. It has no dependencies on adapters or external services.
package domain
