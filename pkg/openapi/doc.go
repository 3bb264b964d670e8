// Package openapi imports a FormConfig from the request-body schema of one
// OpenAPI 3 operation, using kin-openapi to load and resolve the document.
//
// Objects become groups, arrays become arrays with a single "item"
// attribute, enums become selects with static options and readOnly
// properties become readonly editable rules. The x-endpoint extension turns a
// property into a select backed by a dynamic option source.
package openapi
