package branch

import "regexp"

var entityRefPattern = regexp.MustCompile(`\[([a-z0-9_]+):([^\]]+)\]`)

// EntityRef is one [key:text] reference found in narrative text.
type EntityRef struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// StripMarkup replaces every [key:text] with its display text.
func StripMarkup(text string) string {
	return entityRefPattern.ReplaceAllString(text, "$2")
}

// ExtractRefs returns the references in text in order of appearance.
func ExtractRefs(text string) []EntityRef {
	matches := entityRefPattern.FindAllStringSubmatch(text, -1)
	refs := make([]EntityRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, EntityRef{Key: m[1], Text: m[2]})
	}
	return refs
}
