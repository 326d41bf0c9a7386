package sanitize

import "github.com/microcosm-cc/bluemonday"

// outputPolicy is the fixed allowlist for model-generated HTML: basic text
// structure only, no attributes, no links, no media. The model is prompted
// to answer in these tags; anything else it produces is dropped here.
var outputPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "strong", "em", "ul", "ol", "li",
		"h1", "h2", "h3", "h4", "h5", "h6", "br",
	)
	return p
}()

// ModelOutput reduces model-generated HTML to the output allowlist before
// it is returned to clients.
func ModelOutput(html string) string {
	return outputPolicy.Sanitize(html)
}
