package extract

// Query locates values in one parsed page. How an anchor is interpreted is up
// to the implementation: HTMLDoc takes anchor text and CSS selectors, XPathDoc
// takes XPath expressions.
type Query interface {
	// Value reads the single value attached to anchor.
	Value(anchor string) Field[string]
	// Values reads the list attached to anchor.
	Values(anchor string) Field[[]string]
	// Rows reads the data rows of the table located by anchor, header excluded.
	Rows(anchor string) Field[[][]string]
}
