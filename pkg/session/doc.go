// Package session ties a FormConfig to one live control tree: it builds the
// tree, attaches validators, evaluates access for the acting user and
// workflow status, reconciles saved records and projects the tree back to
// storable data.
//
// A Session is owned by a single caller and is not safe for concurrent use.
package session
