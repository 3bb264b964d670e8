// Package options resolves the option records of select-like attributes.
//
// Static sources return their declared items. Dynamic sources are fetched
// through a Provider: URLs containing template markers are rendered with
// pongo2 against the current form values and refetched on every resolve,
// plain URLs are fetched once and cached for the resolver's lifetime.
package options
