// Package driven defines the interfaces the core requires from
// infrastructure adapters: the index store, content access and
// settings persistence.
package driven
