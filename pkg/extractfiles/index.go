package extractfiles

import (
	"reflect"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileIndex maps each distinct file to the ordered list of paths it occurred
// at. Files are keyed 1..N in first discovery order.
type FileIndex struct {
	entries []*fileEntry
	byFile  map[fileIdentity]*fileEntry
}

type fileEntry struct {
	key   int
	file  any
	paths []string
}

// fileIdentity compares reference types by address and every other
// comparable value by value.
type fileIdentity struct {
	typ   reflect.Type
	ptr   uintptr
	len   int
	value any
}

func NewFileIndex() *FileIndex {
	return &FileIndex{
		byFile: map[fileIdentity]*fileEntry{},
	}
}

// Record appends path to the entry of file and returns the entry key.
// Values without identity (non comparable values) always open a new entry.
func (x *FileIndex) Record(file any, path string) int {
	id, ok := identityOf(file)
	if ok {
		if entry, exists := x.byFile[id]; exists {
			entry.paths = append(entry.paths, path)
			return entry.key
		}
	}
	entry := &fileEntry{key: len(x.entries) + 1, file: file, paths: []string{path}}
	x.entries = append(x.entries, entry)
	if ok {
		x.byFile[id] = entry
	}
	return entry.key
}

// Len is the number of distinct files.
func (x *FileIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Paths returns the paths recorded for file, nil if file was never recorded.
func (x *FileIndex) Paths(file any) []string {
	if x == nil {
		return nil
	}
	id, ok := identityOf(file)
	if !ok {
		return nil
	}
	if entry, exists := x.byFile[id]; exists {
		return append([]string(nil), entry.paths...)
	}
	return nil
}

// Each calls fn for every distinct file in enumeration order and stops at the
// first error.
func (x *FileIndex) Each(fn func(key string, file any, paths []string) error) error {
	if x == nil {
		return nil
	}
	for _, entry := range x.entries {
		if err := fn(strconv.Itoa(entry.key), entry.file, entry.paths); err != nil {
			return err
		}
	}
	return nil
}

// Map is the wire form of the index: {"1": ["variables.a"], ...}
func (x *FileIndex) Map() *orderedmap.OrderedMap[string, []string] {
	out := orderedmap.New[string, []string]()
	_ = x.Each(func(key string, _ any, paths []string) error {
		out.Set(key, paths)
		return nil
	})
	return out
}

func (x *FileIndex) MarshalJSON() ([]byte, error) {
	return x.Map().MarshalJSON()
}

func identityOf(file any) (fileIdentity, bool) {
	if file == nil {
		return fileIdentity{}, false
	}
	rv := reflect.ValueOf(file)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fileIdentity{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		return fileIdentity{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}, true
	}
	if rv.Comparable() {
		return fileIdentity{typ: rv.Type(), value: file}, true
	}
	return fileIdentity{}, false
}
