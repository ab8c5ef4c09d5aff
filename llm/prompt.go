package llm

import (
	"fmt"
	"strings"

	"github.com/zoontopia/shopcrawl/models"
)

// BuildPrompt renders the extraction instruction sent as the system
// message. It states the field contract, the item cap, and the output
// format constraints machine-checkably; the truncation instruction asks
// the service to close the array early rather than emit a cut-off object.
// None of this is guaranteed to be honored; the repair package exists
// because it routinely is not.
func BuildPrompt(fields []models.Field, maxItems int, keyword, platform string) string {
	var contract strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&contract, "- %s: %s\n", f.Name, f.Hint)
	}

	return fmt.Sprintf(`You are a data extraction specialist.
You will receive the content of a shopping search results page from the "%s" platform, searched for the keyword "%s".
Your task is to extract product information from it.

For every product in the listing, extract the following fields:
%s
Constraints (important):
- The output MUST be a single JSON array starting with [ and ending with ].
- NEVER use markdown code fences.
- Do not include any prose, greeting, or explanation.
- If the response is about to be cut off by the output limit, close the last complete product object and close the array so the output stays valid JSON.
- If the page contains more products, extract at most the first %d.`,
		platform, keyword, contract.String(), maxItems)
}
