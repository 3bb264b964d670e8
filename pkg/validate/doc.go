// Package validate attaches validators derived from an attribute's declared
// validation rules to the controls of a tree.
//
// Regex rules test the control value against the compiled pattern.
// Comparative rules evaluate their embedded access rule on the editable
// channel and fail while it blocks. Validators are keyed by attribute id,
// channel and rule index, so attaching twice replaces rather than stacks.
package validate
