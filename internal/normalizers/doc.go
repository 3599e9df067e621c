// Package normalizers provides the ordered text-level transforms
// applied to raw content before word splitting. Transforms are pure
// string functions resolved by name from a registry into a pipeline;
// order is significant and configurable per invocation, so content and
// filename indexing can use different subsets.
package normalizers
