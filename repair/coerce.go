package repair

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zoontopia/shopcrawl/models"
)

// CoerceInt turns any extracted price-like value into a non-negative
// integer. Numeric values are truncated; strings are reduced to their
// digits ("1,500원" -> 1500). Absent, empty, unparseable, or negative
// values all become 0; a coercion failure is never propagated.
func CoerceInt(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		if n < 0 {
			return 0
		}
		return n
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case string:
		return digitsToInt(n)
	default:
		return digitsToInt(fmt.Sprint(v))
	}
}

// CoerceString turns any extracted value into its string form, with
// absent values becoming "".
func CoerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

// digitsToInt strips every non-digit rune and parses the remainder,
// defaulting to 0 when nothing parseable is left.
func digitsToInt(s string) int {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	if len(b) == 0 {
		return 0
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0
	}
	return n
}

// AssembleProducts coerces the repaired field maps into Product records
// stamped with the job's platform and keyword. The crawl timestamps are
// taken at assembly time, not request time: assembly can happen after an
// arbitrarily long extraction call.
func AssembleProducts(platform, keyword string, items []map[string]any) []models.Product {
	now := time.Now()
	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		products = append(products, models.Product{
			Platform:    platform,
			Keyword:     keyword,
			ProductName: CoerceString(item["productName"]),
			Price:       CoerceInt(item["price"]),
			UnitPrice:   CoerceInt(item["unitPrice"]),
			Seller:      CoerceString(item["seller"]),
			ProductURL:  CoerceString(item["productUrl"]),
			CrawledDate: now.Format("2006-01-02"),
			CrawledAt:   now,
		})
	}
	return products
}
