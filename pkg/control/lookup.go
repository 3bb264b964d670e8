package control

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Find returns the first control built from attribute id, searching depth
// first in layout order. Array rows are searched in order.
func Find(root Node, id string) (Node, bool) {
	if root == nil || id == "" {
		return nil, false
	}
	if attr := root.Attribute(); attr != nil && attr.ID == id {
		return root, true
	}
	switch node := root.(type) {
	case *Group:
		if child, ok := node.children[id]; ok {
			return child, true
		}
		for _, key := range node.order {
			if found, ok := Find(node.children[key], id); ok {
				return found, true
			}
		}
	case *Array:
		for _, row := range node.rows {
			if found, ok := Find(row, id); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Lookup resolves a dotted path such as "LINES.0.qty". Group segments are
// attribute ids and array segments are row indexes.
func Lookup(root Node, path string) (Node, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return root, nil
	}

	current := root
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case *Group:
			child, ok := node.children[segment]
			if !ok {
				return nil, fmt.Errorf("%w: %q (segment %q)", ErrPathNotFound, path, segment)
			}
			current = child
		case *Array:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, fmt.Errorf("%w: %q (expected row index, got %q)", ErrPathNotFound, path, segment)
			}
			row, ok := node.Row(idx)
			if !ok {
				return nil, fmt.Errorf("%w: %q (row %d)", ErrPathNotFound, path, idx)
			}
			current = row
		default:
			return nil, fmt.Errorf("%w: %q (segment %q below a leaf)", ErrPathNotFound, path, segment)
		}
	}
	return current, nil
}

// WalkFunc is called for every node visited by Walk. Returning an error stops
// the walk.
type WalkFunc func(path string, node Node) error

// Walk visits root and its descendants depth first in layout order.
func Walk(root Node, fn WalkFunc) error {
	return walk(root, "", fn)
}

func walk(node Node, path string, fn WalkFunc) error {
	if node == nil {
		return nil
	}
	if err := fn(path, node); err != nil {
		return err
	}
	switch typed := node.(type) {
	case *Group:
		for _, key := range typed.order {
			if err := walk(typed.children[key], joinPath(path, key), fn); err != nil {
				return err
			}
		}
	case *Array:
		for i, row := range typed.rows {
			if err := walk(row, joinPath(path, strconv.Itoa(i)), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScopedWalkFunc is called by WalkScoped with the innermost array row that
// encloses node, or nil outside any array.
type ScopedWalkFunc func(path string, node, scope Node) error

// WalkScoped is Walk with the enclosing row passed along. Rows are their own
// scope.
func WalkScoped(root Node, fn ScopedWalkFunc) error {
	return walkScoped(root, "", nil, fn)
}

func walkScoped(node Node, path string, scope Node, fn ScopedWalkFunc) error {
	if node == nil {
		return nil
	}
	if err := fn(path, node, scope); err != nil {
		return err
	}
	switch typed := node.(type) {
	case *Group:
		for _, key := range typed.order {
			if err := walkScoped(typed.children[key], joinPath(path, key), scope, fn); err != nil {
				return err
			}
		}
	case *Array:
		for i, row := range typed.rows {
			if err := walkScoped(row, joinPath(path, strconv.Itoa(i)), row, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

var errStopWalk = errors.New("control: stop walk")

// ScopeOf returns the innermost array row enclosing target, or nil when
// target is not inside an array or not part of root.
func ScopeOf(root, target Node) Node {
	var found Node
	_ = WalkScoped(root, func(_ string, node, scope Node) error {
		if node == target {
			found = scope
			return errStopWalk
		}
		return nil
	})
	return found
}
