// Package analyzers provides post-tokenization token expansion:
// delimiter splitting and stemming. Analyzers compose through a
// pipeline that folds their output into a term-keyed map, merging
// counts and positions on collision, so downstream consumers always
// see de-duplicated terms.
package analyzers
