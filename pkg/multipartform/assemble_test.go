package multipartform

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wundergraph/graphql-go-upload/pkg/extractfiles"
	"github.com/wundergraph/graphql-go-upload/pkg/serialize"
	"github.com/wundergraph/graphql-go-upload/pkg/testing/goldie"
	"github.com/wundergraph/graphql-go-upload/pkg/upload"
)

const testBoundary = "graphql-upload-boundary"

type part struct {
	field       string
	fileName    string
	contentType string
	content     string
}

type recordingBody struct {
	parts []part
}

func (r *recordingBody) WriteField(name string, value []byte) error {
	r.parts = append(r.parts, part{field: name, content: string(value)})
	return nil
}

func (r *recordingBody) WriteFile(fieldName, fileName, contentType string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	r.parts = append(r.parts, part{field: fieldName, fileName: fileName, contentType: contentType, content: string(data)})
	return nil
}

type failingValue struct{}

func (failingValue) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

func extractBody(t *testing.T, query string, variables any) *extractfiles.Extraction {
	t.Helper()
	body := extractfiles.NewOrderedMap()
	body.Set("query", query)
	body.Set("variables", variables)
	extraction, err := extractfiles.Extract(body, upload.IsExtractableFile, "")
	require.NoError(t, err)
	return extraction
}

func renderForm(t *testing.T, form *Form) []byte {
	t.Helper()
	data, err := io.ReadAll(form)
	require.NoError(t, err)
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}

func TestAssemble(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		file := upload.NewFileFromBytes("a.txt", "text/plain", []byte("hello"))
		extraction := extractBody(t, "mutation ($a: Upload!) { upload(file: $a) }", map[string]any{"a": file})

		form := NewForm()
		require.NoError(t, form.SetBoundary(testBoundary))
		require.NoError(t, Assemble(form, extraction.Clone, extraction.Files, nil))

		assert.Equal(t, "multipart/form-data; boundary="+testBoundary, form.ContentType())
		goldie.Assert(t, "single_file", renderForm(t, form))
	})

	t.Run("same file at two paths", func(t *testing.T) {
		file := upload.NewFileFromBytes("a.txt", "text/plain", []byte("hello"))
		extraction := extractBody(t, "mutation ($a: [Upload!]!) { uploads(files: $a) }", map[string]any{"a": []any{file, file}})

		form := NewForm()
		require.NoError(t, form.SetBoundary(testBoundary))
		require.NoError(t, Assemble(form, extraction.Clone, extraction.Files, nil))

		goldie.Assert(t, "same_file_twice", renderForm(t, form))
	})

	t.Run("parts are readable by mime/multipart", func(t *testing.T) {
		a := upload.NewFileFromBytes("a.txt", "text/plain", []byte("first"))
		b := upload.NewBlob("image/png", []byte("second"))
		extraction := extractBody(t, "mutation", map[string]any{"files": []any{a, b}})

		form := NewForm()
		require.NoError(t, Assemble(form, extraction.Clone, extraction.Files, nil))

		_, params, err := mime.ParseMediaType(form.ContentType())
		require.NoError(t, err)
		reader := multipart.NewReader(form, params["boundary"])

		var got []part
		for {
			p, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(p)
			require.NoError(t, err)
			got = append(got, part{field: p.FormName(), fileName: p.FileName(), contentType: p.Header.Get("Content-Type"), content: string(data)})
		}

		assert.Equal(t, []part{
			{field: "operations", content: `{"query":"mutation","variables":{"files":[null,null]}}`},
			{field: "map", content: `{"1":["variables.files.0"],"2":["variables.files.1"]}`},
			{field: "1", fileName: "a.txt", contentType: "text/plain", content: "first"},
			{field: "2", fileName: "blob", contentType: "image/png", content: "second"},
		}, got)
	})

	t.Run("custom file appender", func(t *testing.T) {
		photo := map[string]any{"uri": "file:///photo.jpg"}
		isFile := func(value any) bool {
			m, ok := value.(map[string]any)
			return ok && m["uri"] != nil
		}
		extraction, err := extractfiles.Extract(map[string]any{"photo": photo}, isFile, "variables")
		require.NoError(t, err)

		var calls []string
		appendFile := func(body Body, fieldName string, file any) error {
			calls = append(calls, fieldName)
			return body.WriteFile(fieldName, "photo.jpg", "image/jpeg", strings.NewReader("jpeg"))
		}

		body := &recordingBody{}
		payload := map[string]any{"query": "mutation", "variables": extraction.Clone}
		require.NoError(t, Assemble(body, payload, extraction.Files, appendFile))

		assert.Equal(t, []string{"1"}, calls)
		assert.Equal(t, []part{
			{field: "operations", content: `{"query":"mutation","variables":{"photo":null}}`},
			{field: "map", content: `{"1":["variables.photo"]}`},
			{field: "1", fileName: "photo.jpg", contentType: "image/jpeg", content: "jpeg"},
		}, body.parts)
	})

	t.Run("serialization failure writes nothing", func(t *testing.T) {
		body := &recordingBody{}
		payload := map[string]any{"query": "mutation", "variables": map[string]any{"a": failingValue{}}}

		err := Assemble(body, payload, extractfiles.NewFileIndex(), func(Body, string, any) error {
			t.Fatal("appender must not be called")
			return nil
		})

		var serr *serialize.Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "Payload", serr.Label)
		assert.Empty(t, body.parts)
	})

	t.Run("appender failure", func(t *testing.T) {
		extraction := extractBody(t, "mutation", map[string]any{"a": upload.NewBlob("", nil)})
		errAppend := errors.New("append failed")

		err := Assemble(&recordingBody{}, extraction.Clone, extraction.Files, func(Body, string, any) error {
			return errAppend
		})
		assert.ErrorIs(t, err, errAppend)
	})
}

func TestAppendFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes"), 0o600))

	t.Run("file ref by path and by url", func(t *testing.T) {
		body := &recordingBody{}
		require.NoError(t, AppendFile(body, "1", upload.NewFileRef(path, "", "text/markdown")))
		require.NoError(t, AppendFile(body, "2", upload.NewFileRef("file://"+filepath.ToSlash(path), "renamed.md", "text/markdown")))

		assert.Equal(t, []part{
			{field: "1", fileName: "notes.md", contentType: "text/markdown", content: "# notes"},
			{field: "2", fileName: "renamed.md", contentType: "text/markdown", content: "# notes"},
		}, body.parts)
	})

	t.Run("missing file ref", func(t *testing.T) {
		err := AppendFile(&recordingBody{}, "1", upload.NewFileRef(filepath.Join(dir, "missing"), "", ""))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported uri scheme", func(t *testing.T) {
		err := AppendFile(&recordingBody{}, "1", upload.NewFileRef("https://example.com/a.png", "", ""))
		assert.Error(t, err)
	})

	t.Run("os file", func(t *testing.T) {
		file, err := os.Open(path)
		require.NoError(t, err)
		defer file.Close()

		body := &recordingBody{}
		require.NoError(t, AppendFile(body, "1", file))
		require.Len(t, body.parts, 1)
		assert.Equal(t, "notes.md", body.parts[0].fileName)
		assert.Equal(t, "# notes", body.parts[0].content)
	})

	t.Run("gqlgen upload", func(t *testing.T) {
		body := &recordingBody{}
		require.NoError(t, AppendFile(body, "1", graphql.Upload{
			File:        strings.NewReader("forwarded"),
			Filename:    "forwarded.bin",
			ContentType: "application/x-custom",
		}))
		require.NoError(t, AppendFile(body, "2", &graphql.Upload{File: strings.NewReader("anonymous")}))

		assert.Equal(t, []part{
			{field: "1", fileName: "forwarded.bin", contentType: "application/x-custom", content: "forwarded"},
			{field: "2", fileName: "blob", contentType: DefaultContentType, content: "anonymous"},
		}, body.parts)
	})

	t.Run("blob and reader defaults", func(t *testing.T) {
		body := &recordingBody{}
		require.NoError(t, AppendFile(body, "1", upload.NewBlob("", []byte("raw"))))
		require.NoError(t, AppendFile(body, "2", strings.NewReader("stream")))

		assert.Equal(t, []part{
			{field: "1", fileName: "blob", contentType: DefaultContentType, content: "raw"},
			{field: "2", fileName: "blob", contentType: DefaultContentType, content: "stream"},
		}, body.parts)
	})

	t.Run("unsupported value", func(t *testing.T) {
		err := AppendFile(&recordingBody{}, "1", 42)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})
}
