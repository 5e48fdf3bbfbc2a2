// Package upload defines the file values that can be embedded into GraphQL
// variables and the default predicate that recognizes them.
package upload

import (
	"bytes"
	"io"
)

// File is binary content with optional name and media type.
// Identity matters: the same *File referenced twice is uploaded once.
type File struct {
	Name    string
	Type    string
	Content io.Reader
}

func NewFile(name, contentType string, content io.Reader) *File {
	return &File{
		Name:    name,
		Type:    contentType,
		Content: content,
	}
}

func NewFileFromBytes(name, contentType string, data []byte) *File {
	return NewFile(name, contentType, bytes.NewReader(data))
}

// Blob is anonymous binary content.
type Blob struct {
	Type string
	Data []byte
}

func NewBlob(contentType string, data []byte) *Blob {
	return &Blob{
		Type: contentType,
		Data: data,
	}
}

// FileRef is a file substitute that points at content by URI instead of
// holding it. The URI is a local path or a file:// URL, it is opened when the
// file gets appended to a multipart body.
type FileRef struct {
	uri         string
	name        string
	contentType string
}

func NewFileRef(uri, name, contentType string) *FileRef {
	return &FileRef{
		uri:         uri,
		name:        name,
		contentType: contentType,
	}
}

func (f *FileRef) URI() string {
	return f.uri
}

func (f *FileRef) Name() string {
	return f.name
}

func (f *FileRef) Type() string {
	return f.contentType
}
