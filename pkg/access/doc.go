// Package access evaluates the visibility and editable channels of an
// attribute against its AccessRule, the current control tree, the workflow
// status and the acting user.
//
// Evaluation is a pure function of its inputs with one exception: a readonly
// rule disables the evaluated control.
package access
