package render

import "github.com/microcosm-cc/bluemonday"

// FragmentPolicy keeps the presentational markup used by section templates
// and strips anything executable.
func FragmentPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("article", "section", "figure", "figcaption", "canvas", "span", "div")
	policy.AllowAttrs("class", "id").Globally()
	policy.AllowAttrs("aria-hidden", "aria-label", "role").Globally()
	policy.AllowAttrs("width", "height").OnElements("canvas")
	policy.AllowAttrs("loading").OnElements("img")
	policy.AllowDataAttributes()
	policy.RequireNoFollowOnLinks(true)
	return policy
}
