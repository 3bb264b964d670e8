// Package patch reconciles externally supplied record data into a control
// tree and projects a tree back into storable data.
//
// Patching never fails: shape mismatches, unknown keys, the depth limit and
// leaf assignment failures are logged, collected as warnings and skip only
// the affected branch.
package patch
