package domain

// Token is a de-duplicated term produced by the tokenizer or expanded
// by the analyzer pipeline, carrying its occurrence statistics.
type Token struct {
	// Term is the token text.
	Term string

	// Count is the number of occurrences.
	Count int

	// Positions holds zero-based token indices, assigned after
	// stopword filtering (position 0 is the first surviving word).
	Positions []int

	// IsOriginal is true for surface forms found in the text and
	// false for derived forms (stems, delimiter-split parts).
	IsOriginal bool
}
