package extractfiles

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// structField is a field encoding/json would write for a struct type.
type structField struct {
	name      string
	tagged    bool
	index     []int
	omitEmpty bool
	quoted    bool
}

var fieldCache sync.Map // map[reflect.Type][]structField

func cachedFields(t reflect.Type) []structField {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.([]structField)
	}
	fields, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return fields.([]structField)
}

// typeFields lists the fields of t with the visibility and dominance rules of
// encoding/json: fields of embedded structs are promoted breadth first, the
// shallowest name wins, a tagged name wins at equal depth and names that stay
// ambiguous are dropped.
func typeFields(t reflect.Type) []structField {
	type candidate struct {
		typ   reflect.Type
		index []int
	}

	var (
		current []candidate
		next    = []candidate{{typ: t}}
		visited = map[reflect.Type]bool{}
		fields  []structField
	)

	for len(next) > 0 {
		current, next = next, current[:0]
		count := map[reflect.Type]int{}
		nextCount := map[reflect.Type]int{}
		for _, c := range current {
			count[c.typ]++
		}

		for _, c := range current {
			if visited[c.typ] {
				continue
			}
			visited[c.typ] = true

			for i := 0; i < c.typ.NumField(); i++ {
				sf := c.typ.Field(i)
				if sf.Anonymous {
					ft := sf.Type
					if ft.Kind() == reflect.Pointer {
						ft = ft.Elem()
					}
					if !sf.IsExported() && ft.Kind() != reflect.Struct {
						continue
					}
				} else if !sf.IsExported() {
					continue
				}

				tag := sf.Tag.Get("json")
				if tag == "-" {
					continue
				}
				name, opts, _ := strings.Cut(tag, ",")

				index := make([]int, len(c.index)+1)
				copy(index, c.index)
				index[len(c.index)] = i

				ft := sf.Type
				if ft.Name() == "" && ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}

				if name != "" || !sf.Anonymous || ft.Kind() != reflect.Struct {
					field := structField{
						name:      name,
						tagged:    name != "",
						index:     index,
						omitEmpty: hasOption(opts, "omitempty"),
						quoted:    hasOption(opts, "string") && isScalarKind(ft.Kind()),
					}
					if field.name == "" {
						field.name = sf.Name
					}
					fields = append(fields, field)
					if count[c.typ] > 1 {
						// the same struct embedded twice at one depth annihilates itself
						fields = append(fields, field)
					}
					continue
				}

				nextCount[ft]++
				if nextCount[ft] == 1 {
					next = append(next, candidate{typ: ft, index: index})
				}
			}
		}
	}

	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].name != fields[j].name {
			return fields[i].name < fields[j].name
		}
		if len(fields[i].index) != len(fields[j].index) {
			return len(fields[i].index) < len(fields[j].index)
		}
		if fields[i].tagged != fields[j].tagged {
			return fields[i].tagged
		}
		return indexLess(fields[i].index, fields[j].index)
	})

	out := fields[:0]
	for advance, i := 0, 0; i < len(fields); i += advance {
		name := fields[i].name
		for advance = 1; i+advance < len(fields); advance++ {
			if fields[i+advance].name != name {
				break
			}
		}
		if dominant, ok := dominantField(fields[i : i+advance]); ok {
			out = append(out, dominant)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return indexLess(out[i].index, out[j].index)
	})
	return out
}

// dominantField expects fields sorted by depth, tagged first.
func dominantField(fields []structField) (structField, bool) {
	if len(fields) > 1 && len(fields[0].index) == len(fields[1].index) && fields[0].tagged == fields[1].tagged {
		return structField{}, false
	}
	return fields[0], true
}

func indexLess(a, b []int) bool {
	for k, x := range a {
		if k >= len(b) {
			return false
		}
		if x != b[k] {
			return x < b[k]
		}
	}
	return len(a) < len(b)
}

// structFields collects the values of the fields encoding/json writes for rv
// in declaration order.
func structFields(rv reflect.Value, keys *[]string, values *[]any) {
	for _, field := range cachedFields(rv.Type()) {
		fv, ok := fieldByIndex(rv, field.index)
		if !ok || !fv.CanInterface() {
			continue
		}
		if field.omitEmpty && isEmptyValue(fv) {
			continue
		}
		value := fv.Interface()
		if field.quoted {
			value = quoteScalar(fv)
		}
		*keys = append(*keys, field.name)
		*values = append(*values, value)
	}
}

// fieldByIndex follows index through embedded pointers. A nil embedded
// pointer hides the fields below it.
func fieldByIndex(rv reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
		}
		rv = rv.Field(x)
	}
	return rv, true
}

// quoteScalar encodes fv the way the json ",string" option does: the JSON
// form of the scalar, itself encoded as a JSON string.
func quoteScalar(fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	encoded, err := encodeJSON(fv.Interface())
	if err != nil {
		return fv.Interface()
	}
	quoted, err := encodeJSON(string(encoded))
	if err != nil {
		return fv.Interface()
	}
	return json.RawMessage(quoted)
}

func encodeJSON(value any) ([]byte, error) {
	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
