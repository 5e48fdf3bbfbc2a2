// Package multipartform assembles GraphQL multipart request bodies: an
// operations part, a map part and one part per distinct file.
package multipartform

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
)

// Body is the part sink the assembler and file appenders write to.
type Body interface {
	WriteField(name string, value []byte) error
	WriteFile(fieldName, fileName, contentType string, content io.Reader) error
}

// Writer is a Body that can be sent as a request body. ContentType carries
// the boundary parameter, the transport uses it when the request has no
// content type of its own.
type Writer interface {
	Body
	io.Reader
	Close() error
	ContentType() string
}

// Form is the default Writer. Parts are buffered in memory, the closing
// boundary is written on Close or on the first Read.
type Form struct {
	buf    *bytes.Buffer
	writer *multipart.Writer
	closed bool
}

func NewForm() *Form {
	buf := &bytes.Buffer{}
	return &Form{
		buf:    buf,
		writer: multipart.NewWriter(buf),
	}
}

// NewWriter adapts NewForm to the form factory signature.
func NewWriter() Writer {
	return NewForm()
}

// SetBoundary must be called before the first part is written.
func (f *Form) SetBoundary(boundary string) error {
	return f.writer.SetBoundary(boundary)
}

func (f *Form) WriteField(name string, value []byte) error {
	part, err := f.writer.CreateFormField(name)
	if err != nil {
		return err
	}
	_, err = part.Write(value)
	return err
}

func (f *Form) WriteFile(fieldName, fileName, contentType string, content io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", multipart.FileContentDisposition(fieldName, fileName))
	header.Set("Content-Type", contentType)
	part, err := f.writer.CreatePart(header)
	if err != nil {
		return err
	}
	if content == nil {
		return nil
	}
	_, err = io.Copy(part, content)
	return err
}

func (f *Form) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.writer.Close()
}

func (f *Form) ContentType() string {
	return f.writer.FormDataContentType()
}

func (f *Form) Read(p []byte) (int, error) {
	if err := f.Close(); err != nil {
		return 0, err
	}
	return f.buf.Read(p)
}

// Len is the number of unread bytes.
func (f *Form) Len() int {
	return f.buf.Len()
}
