// Package sqlite implements the index store on an embedded SQLite
// database: Documents, Terms and Folders with transactional
// per-document term replacement.
package sqlite
