package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// NewMarkdownConverter creates a reusable, goroutine-safe converter used
// when the extraction payload is sent as Markdown instead of HTML.
// Markdown keeps the product grid readable for the model at a fraction of
// the token count of the equivalent HTML.
//
//   - base plugin: strips leftover script/style/meta noise.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: price-comparison grids are often real tables; minimal
//     cell padding saves tokens without losing structure.
func NewMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts sanitized HTML to Markdown. The domain resolves
// relative product links into absolute URLs so the extracted productUrl
// fields are usable on their own.
func ToMarkdown(conv *converter.Converter, htmlContent string, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
