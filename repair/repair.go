// Package repair recovers structured data from the extraction service's
// raw output. The service is instructed to return a single closed JSON
// array, but the instruction is routinely violated: responses arrive
// wrapped in markdown fences, or cut off mid-object at the output length
// limit. Repair yields the largest valid prefix it can find.
package repair

import (
	"encoding/json"
	"strings"

	"github.com/zoontopia/shopcrawl/models"
)

// Repair normalizes raw extraction output into a slice of loosely-typed
// field maps.
//
// Steps, each a pure transformation:
//  1. Strip markdown code fences and surrounding whitespace.
//  2. If the text does not end with ']', treat it as truncated: cut back
//     to the last complete object and close the array. No complete object
//     at all yields an empty slice; zero items is a valid outcome.
//  3. Parse as a JSON array of maps. Failure after repair is a
//     MALFORMED_RESPONSE error; callers absorb it to an empty result.
//
// Already-valid array text passes through unchanged, so Repair agrees
// with plain parsing on well-formed input.
func Repair(raw string) ([]map[string]any, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return []map[string]any{}, nil
	}

	if !strings.HasSuffix(cleaned, "]") {
		idx := strings.LastIndex(cleaned, "}")
		if idx < 0 {
			// Truncated before the first object completed.
			return []map[string]any{}, nil
		}
		cleaned = cleaned[:idx+1] + "]"
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeMalformedResponse,
			"extraction output is not a JSON array even after repair",
			err,
		)
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items, nil
}

// stripFences removes markdown code-fence markers the service adds despite
// being told not to, then trims surrounding whitespace.
func stripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
