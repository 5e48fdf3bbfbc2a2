package extractfiles

import (
	"encoding"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Matcher reports whether a value is an extractable file.
type Matcher func(value any) bool

// List is an array-list-like value that is not a Go slice. It is
// materialized into a sequence before its items are inspected.
type List interface {
	Len() int
	Item(i int) any
}

// OrderedMap is the keyed value that keeps insertion order. Clones of structs
// and of ordered maps use it so the serialized key order matches the input.
type OrderedMap = orderedmap.OrderedMap[string, any]

func NewOrderedMap() *OrderedMap {
	return orderedmap.New[string, any]()
}

type nodeKind int

const (
	nodeKindNull nodeKind = iota
	nodeKindLeaf
	nodeKindFile
	nodeKindSequence
	nodeKindKeyed
)

// node is the classified form of a value. Every value is classified exactly
// once, the walker recurses over the variant afterwards.
type node struct {
	kind    nodeKind
	value   any
	items   []any
	keys    []string
	values  []any
	ordered bool
	ref     *containerRef
}

// containerRef identifies a container while it is being walked.
type containerRef struct {
	typ reflect.Type
	ptr uintptr
	len int
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

func classify(value any, isFile Matcher) node {
	if value == nil {
		return node{kind: nodeKindNull}
	}
	rv := reflect.ValueOf(value)
	if isNil(rv) {
		return node{kind: nodeKindNull, value: value}
	}
	if isFile(value) {
		return node{kind: nodeKindFile, value: value}
	}

	switch v := value.(type) {
	case *OrderedMap:
		n := node{kind: nodeKindKeyed, value: value, ordered: true, ref: refOf(rv)}
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			n.keys = append(n.keys, pair.Key)
			n.values = append(n.values, pair.Value)
		}
		return n
	case List:
		n := node{kind: nodeKindSequence, value: value, items: make([]any, v.Len())}
		for i := range n.items {
			n.items[i] = v.Item(i)
		}
		if rv.Kind() == reflect.Pointer {
			n.ref = refOf(rv)
		}
		return n
	case []any:
		return node{kind: nodeKindSequence, value: value, items: v, ref: refOf(rv)}
	case map[string]any:
		n := node{kind: nodeKindKeyed, value: value, ref: refOf(rv)}
		n.keys = make([]string, 0, len(v))
		for key := range v {
			n.keys = append(n.keys, key)
		}
		sort.Strings(n.keys)
		n.values = make([]any, len(n.keys))
		for i, key := range n.keys {
			n.values[i] = v[key]
		}
		return n
	}

	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		return node{kind: nodeKindLeaf, value: value}
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		elem := rv.Elem()
		if !elem.CanInterface() {
			return node{kind: nodeKindLeaf, value: value}
		}
		n := classify(elem.Interface(), isFile)
		if n.ref == nil && rv.Kind() == reflect.Pointer {
			n.ref = refOf(rv)
		}
		return n
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return node{kind: nodeKindLeaf, value: value}
		}
		return sequenceNode(value, rv, refOf(rv))
	case reflect.Array:
		return sequenceNode(value, rv, nil)
	case reflect.Map:
		return mapNode(value, rv)
	case reflect.Struct:
		n := node{kind: nodeKindKeyed, value: value, ordered: true}
		structFields(rv, &n.keys, &n.values)
		return n
	default:
		return node{kind: nodeKindLeaf, value: value}
	}
}

func sequenceNode(value any, rv reflect.Value, ref *containerRef) node {
	n := node{kind: nodeKindSequence, value: value, items: make([]any, rv.Len()), ref: ref}
	for i := range n.items {
		n.items[i] = rv.Index(i).Interface()
	}
	return n
}

func mapNode(value any, rv reflect.Value) node {
	type entry struct {
		key   string
		value any
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, ok := mapKey(iter.Key())
		if !ok {
			// encoding/json rejects the key, serialization reports it later
			return node{kind: nodeKindLeaf, value: value}
		}
		entries = append(entries, entry{key: key, value: iter.Value().Interface()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})
	n := node{kind: nodeKindKeyed, value: value, ref: refOf(rv)}
	n.keys = make([]string, len(entries))
	n.values = make([]any, len(entries))
	for i := range entries {
		n.keys[i] = entries[i].key
		n.values[i] = entries[i].value
	}
	return n
}

func mapKey(key reflect.Value) (string, bool) {
	if key.Kind() == reflect.String {
		return key.String(), true
	}
	if tm, ok := key.Interface().(encoding.TextMarshaler); ok {
		if key.Kind() == reflect.Pointer && key.IsNil() {
			return "", true
		}
		text, err := tm.MarshalText()
		if err != nil {
			return "", false
		}
		return string(text), true
	}
	switch key.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(key.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(key.Uint(), 10), true
	}
	return "", false
}

func hasOption(opts, option string) bool {
	for opts != "" {
		var current string
		current, opts, _ = strings.Cut(opts, ",")
		if current == option {
			return true
		}
	}
	return false
}

func isScalarKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

func isNil(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func refOf(rv reflect.Value) *containerRef {
	ref := &containerRef{typ: rv.Type(), ptr: rv.Pointer()}
	if rv.Kind() == reflect.Slice {
		ref.len = rv.Len()
	}
	return ref
}
