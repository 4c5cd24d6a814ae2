// File: /utils/tags.go
package utils

import (
	"encoding/json"
	"strings"
)

// NormalizeTags parses free-form tag input into a canonical list: trimmed,
// empty entries dropped, duplicates removed keeping the first occurrence.
// The input is either a JSON array of strings or a comma-separated string;
// malformed JSON falls back to comma splitting so the ingestion boundary
// stays permissive.
func NormalizeTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			parts = strings.Split(raw, ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	return NormalizeTagList(parts)
}

// NormalizeTagList canonicalizes an already-structured tag sequence.
func NormalizeTagList(parts []string) []string {
	tags := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

// SerializeTags renders a canonical tag list back to its comma form.
func SerializeTags(tags []string) string {
	return strings.Join(tags, ",")
}
