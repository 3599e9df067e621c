package domain

import (
	"fmt"
	"time"
)

// Settings holds the user-tunable configuration of the engine.
// It is persisted as TOML by the file settings store.
type Settings struct {
	// VaultPath is the root directory of the document vault.
	VaultPath string `toml:"vault_path"`

	// DataDir is where the index database lives. Empty selects the
	// default under the user home directory.
	DataDir string `toml:"data_dir"`

	// StopwordThreshold is the stopword-ratio above which stopword
	// removal is skipped entirely for a text.
	StopwordThreshold float64 `toml:"stopword_threshold"`

	// PartialStopwordRemoval switches the tokenizer to the partial
	// removal variant: stopwords are dropped only until the remaining
	// ratio falls below the threshold.
	PartialStopwordRemoval bool `toml:"partial_stopword_removal"`

	// FilenameWeight multiplies scores of filename-source matches.
	FilenameWeight float64 `toml:"filename_weight"`

	// ContentNormalizers is the ordered transform list applied to
	// document bodies before word splitting.
	ContentNormalizers []string `toml:"content_normalizers"`

	// FilenameNormalizers is the ordered transform list applied to
	// file names before word splitting.
	FilenameNormalizers []string `toml:"filename_normalizers"`

	// SqueezePatterns are editor-specific markup patterns stripped by
	// the "markup" transform. Treated as opaque regular expressions.
	SqueezePatterns []string `toml:"squeeze_patterns"`

	// DebounceWindow is how long the indexer waits after a change
	// notification before re-indexing, coalescing bursts per path.
	DebounceWindow time.Duration `toml:"debounce_window"`

	// PageSize is the default search page size.
	PageSize int `toml:"page_size"`

	// RebuildConcurrency bounds concurrent document indexing during a
	// full vault rebuild.
	RebuildConcurrency int `toml:"rebuild_concurrency"`
}

// DefaultSettings returns the settings applied when no configuration
// file exists.
func DefaultSettings() Settings {
	return Settings{
		StopwordThreshold:  0.5,
		FilenameWeight:     2.0,
		ContentNormalizers: DefaultContentNormalizers(),
		FilenameNormalizers: []string{
			"camelcase", "lowercase", "charset", "diacritics", "hashtags",
		},
		DebounceWindow:     200 * time.Millisecond,
		PageSize:           10,
		RebuildConcurrency: 4,
	}
}

// DefaultContentNormalizers is the default ordered transform list for
// document bodies. Order is significant: camel-case splitting must run
// before lowercasing, and hashtag stripping after charset filtering.
func DefaultContentNormalizers() []string {
	return []string{
		"comments", "camelcase", "lowercase", "charset",
		"diacritics", "markup", "hashtags",
	}
}

// Validate checks settings for values the engine cannot run with.
func (s Settings) Validate() error {
	if s.StopwordThreshold < 0 || s.StopwordThreshold > 1 {
		return fmt.Errorf("%w: stopword_threshold %v outside [0,1]", ErrInvalidInput, s.StopwordThreshold)
	}
	if s.FilenameWeight < 0 {
		return fmt.Errorf("%w: filename_weight %v is negative", ErrInvalidInput, s.FilenameWeight)
	}
	if s.RebuildConcurrency < 0 {
		return fmt.Errorf("%w: rebuild_concurrency %d is negative", ErrInvalidInput, s.RebuildConcurrency)
	}
	return nil
}
