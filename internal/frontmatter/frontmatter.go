// Package frontmatter extracts tags from note content: YAML
// frontmatter blocks and inline hashtags.
package frontmatter

import (
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// inlineTagRe matches inline hashtags, including nested forms like
// "#project/alpha".
var inlineTagRe = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}][\p{L}\p{N}/_-]*)`)

// header is the subset of frontmatter fields the indexer cares about.
// Tags may be a YAML list or a scalar of delimited names.
type header struct {
	Tags any `yaml:"tags"`
}

// ExtractTags returns the lowercase, de-duplicated tag set of a note:
// frontmatter tags merged with inline hashtags. Malformed frontmatter
// is ignored rather than failing the document.
func ExtractTags(content string) []string {
	set := make(map[string]struct{})

	for _, tag := range frontmatterTags(content) {
		addTag(set, tag)
	}
	for _, m := range inlineTagRe.FindAllStringSubmatch(content, -1) {
		addTag(set, m[1])
	}

	if len(set) == 0 {
		return nil
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// frontmatterTags parses the leading YAML block, if any.
func frontmatterTags(content string) []string {
	block, ok := frontmatterBlock(content)
	if !ok {
		return nil
	}

	var h header
	if err := yaml.Unmarshal([]byte(block), &h); err != nil {
		return nil
	}

	switch v := h.Tags.(type) {
	case string:
		// Scalar form: "tags: work, meetings" or space separated.
		return strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' '
		})
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

// frontmatterBlock returns the YAML between the leading "---" fences.
func frontmatterBlock(content string) (string, bool) {
	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return "", false
	}
	rest := strings.TrimPrefix(content, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// addTag normalizes and records one tag name.
func addTag(set map[string]struct{}, tag string) {
	tag = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(tag, "#")))
	if tag == "" {
		return
	}
	set[tag] = struct{}{}
}
