// Package control holds the runtime control tree built from a form config.
// A tree is made of three node variants: *Leaf holds a single value, *Group
// holds named children mirroring a nested spec, and *Array holds ordered rows
// that all share one attribute spec. Node is sealed; callers switch on the
// concrete type.
//
// Trees are owned by a single form session and are not safe for concurrent
// use.
package control
