// Package services contains the core application services: the
// indexer orchestrating re-indexing of changed documents, and the
// search engine scoring candidates with TF-IDF.
package services
