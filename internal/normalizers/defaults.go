package normalizers

import (
	"fmt"
	"strings"

	"github.com/memento-labs/vaultsearch/internal/core/domain"
)

// RegisterDefaults registers all built-in transforms with the registry.
// Call this during application initialization.
func RegisterDefaults(r *Registry) {
	r.Register("comments", func(_ map[string]any) (Transform, error) {
		return StripComments, nil
	})
	r.Register("camelcase", func(_ map[string]any) (Transform, error) {
		return SplitCamelCase, nil
	})
	r.Register("lowercase", func(_ map[string]any) (Transform, error) {
		return strings.ToLower, nil
	})
	r.Register("charset", func(_ map[string]any) (Transform, error) {
		return FilterCharset, nil
	})
	r.Register("diacritics", func(_ map[string]any) (Transform, error) {
		return StripDiacritics, nil
	})
	r.Register("markup", buildMarkupStripper)
	r.Register("hashtags", func(_ map[string]any) (Transform, error) {
		return StripHashtagPrefix, nil
	})
}

// buildMarkupStripper creates the markup transform from generic config.
// Supported config keys:
//   - patterns ([]string): regular expressions to strip (default: none)
func buildMarkupStripper(cfg map[string]any) (Transform, error) {
	patterns := stringsFromConfig(cfg, "patterns")

	t, err := NewMarkupStripper(patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPattern, err)
	}
	return t, nil
}

// stringsFromConfig safely extracts a string slice from generic config.
// Handles []string and []any element types that may come from TOML
// parsing.
func stringsFromConfig(cfg map[string]any, key string) []string {
	if cfg == nil {
		return nil
	}

	switch v := cfg[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
