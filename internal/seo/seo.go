// Package seo builds the head metadata and schema.org payloads of a page.
package seo

type OpenGraph struct {
	Title       string
	Description string
	Type        string
	URL         string
}

type Twitter struct {
	Card string
	Site string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	Twitter     Twitter
}
