// Package extractfiles walks a tree of GraphQL request values, replaces every
// extractable file with null in a fresh clone and records the paths each file
// was found at.
package extractfiles

import (
	"github.com/pkg/errors"
)

// ErrCyclicValue is returned when a container is reachable from itself.
var ErrCyclicValue = errors.New("extractfiles: value contains a cycle")

// Extraction is the result of a single Extract call.
type Extraction struct {
	// Clone is structurally identical to the walked tree with every file
	// replaced by nil. It never shares mutable containers with the input.
	Clone any
	// Files maps every distinct file to the paths it was found at.
	Files *FileIndex
}

// Extract walks tree depth first. rootPath prefixes every recorded path, an
// empty rootPath records paths relative to tree itself.
//
// Maps are walked in sorted key order, structs and ordered maps in field
// order, sequences in index order. The resulting enumeration of files is
// therefore deterministic for a given input.
func Extract(tree any, isFile Matcher, rootPath string) (*Extraction, error) {
	e := &extractor{
		isFile:   isFile,
		files:    NewFileIndex(),
		recursed: map[containerRef]struct{}{},
	}
	if rootPath != "" {
		e.path.pushObjectPath(rootPath)
	}
	clone, err := e.walk(tree)
	if err != nil {
		return nil, err
	}
	return &Extraction{
		Clone: clone,
		Files: e.files,
	}, nil
}

type extractor struct {
	isFile   Matcher
	files    *FileIndex
	path     Path
	recursed map[containerRef]struct{}
}

func (e *extractor) walk(value any) (any, error) {
	n := classify(value, e.isFile)

	switch n.kind {
	case nodeKindFile:
		e.files.Record(n.value, e.path.render())
		return nil, nil
	case nodeKindSequence:
		if err := e.enter(n.ref); err != nil {
			return nil, err
		}
		defer e.leave(n.ref)
		return e.walkSequence(n)
	case nodeKindKeyed:
		if err := e.enter(n.ref); err != nil {
			return nil, err
		}
		defer e.leave(n.ref)
		return e.walkKeyed(n)
	default:
		return n.value, nil
	}
}

func (e *extractor) walkSequence(n node) (any, error) {
	clone := make([]any, len(n.items))
	for i, item := range n.items {
		e.path.pushArrayPath(i)
		itemClone, err := e.walk(item)
		e.path.popPath()
		if err != nil {
			return nil, err
		}
		clone[i] = itemClone
	}
	return clone, nil
}

func (e *extractor) walkKeyed(n node) (any, error) {
	if n.ordered {
		clone := NewOrderedMap()
		for i, key := range n.keys {
			e.path.pushObjectPath(key)
			valueClone, err := e.walk(n.values[i])
			e.path.popPath()
			if err != nil {
				return nil, err
			}
			clone.Set(key, valueClone)
		}
		return clone, nil
	}

	clone := make(map[string]any, len(n.keys))
	for i, key := range n.keys {
		e.path.pushObjectPath(key)
		valueClone, err := e.walk(n.values[i])
		e.path.popPath()
		if err != nil {
			return nil, err
		}
		clone[key] = valueClone
	}
	return clone, nil
}

func (e *extractor) enter(ref *containerRef) error {
	if ref == nil {
		return nil
	}
	if _, ok := e.recursed[*ref]; ok {
		return errors.Wrapf(ErrCyclicValue, "at %q", e.path.render())
	}
	e.recursed[*ref] = struct{}{}
	return nil
}

func (e *extractor) leave(ref *containerRef) {
	if ref == nil {
		return
	}
	delete(e.recursed, *ref)
}
