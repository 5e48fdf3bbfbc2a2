package extractfiles

import (
	"strconv"
	"strings"
)

// Path is the structural location of a value inside the walked tree.
// It renders as dot separated object keys and array indices, e.g.
// variables.files.0
type Path struct {
	path []pathItem
}

type pathItemKind int

const (
	pathItemKindObject pathItemKind = iota
	pathItemKindArray
)

type pathItem struct {
	kind       pathItemKind
	name       string
	arrayIndex int
}

func (p *Path) pushObjectPath(name string) {
	p.path = append(p.path, pathItem{
		kind: pathItemKindObject,
		name: name,
	})
}

func (p *Path) pushArrayPath(index int) {
	p.path = append(p.path, pathItem{
		kind:       pathItemKindArray,
		arrayIndex: index,
	})
}

func (p *Path) popPath() {
	p.path = p.path[:len(p.path)-1]
}

func (p *Path) render() string {
	out := &strings.Builder{}
	for i, item := range p.path {
		if i > 0 {
			out.WriteByte('.')
		}
		switch item.kind {
		case pathItemKindArray:
			out.WriteString(strconv.Itoa(item.arrayIndex))
		default:
			out.WriteString(item.name)
		}
	}
	return out.String()
}

func (p *Path) String() string {
	return p.render()
}
