package models

import "time"

// Product is one extracted search result, fully coerced and stamped.
// Price and UnitPrice are always non-negative integers after assembly:
// never null, never a formatted string with currency symbols.
// Products are immutable once assembled.
type Product struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	Platform    string    `json:"platform" bson:"platform"`
	Keyword     string    `json:"keyword" bson:"keyword"`
	ProductName string    `json:"productName" bson:"productName"`
	Price       int       `json:"price" bson:"price"`
	UnitPrice   int       `json:"unitPrice" bson:"unitPrice"`
	Seller      string    `json:"seller" bson:"seller"`
	ProductURL  string    `json:"productUrl" bson:"productUrl"`
	CrawledDate string    `json:"crawledDate" bson:"crawledDate"` // "YYYY-MM-DD"
	CrawledAt   time.Time `json:"crawledAt" bson:"crawledAt"`
}

// Field is one entry of the extraction field contract: the name the
// service must emit plus a hint describing how to find and format it.
type Field struct {
	Name string
	Hint string
}

// ProductFields is the field contract sent with every extraction request.
// Order matters: it is rendered into the prompt as-is.
var ProductFields = []Field{
	{Name: "productName", Hint: "product name or title"},
	{Name: "price", Hint: `product price as a number (e.g. "10,000원" becomes 10000)`},
	{Name: "unitPrice", Hint: `unit price as a number (e.g. "1,000원 per 100g" becomes 1000); only when the page shows one`},
	{Name: "seller", Hint: "seller or shop name"},
	{Name: "productUrl", Hint: "link to the product detail page"},
}
