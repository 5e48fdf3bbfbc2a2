package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/gqlgen/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExtractableFile(t *testing.T) {
	t.Run("recognized file values", func(t *testing.T) {
		tmp, err := os.Create(filepath.Join(t.TempDir(), "a.txt"))
		require.NoError(t, err)
		defer tmp.Close()

		values := []any{
			NewFileFromBytes("a.txt", "text/plain", []byte("a")),
			NewBlob("", []byte("b")),
			NewFileRef("/tmp/photo.jpg", "photo.jpg", "image/jpeg"),
			tmp,
			graphql.Upload{Filename: "c.txt", File: strings.NewReader("c")},
			&graphql.Upload{Filename: "d.txt", File: strings.NewReader("d")},
		}
		for _, value := range values {
			assert.True(t, IsExtractableFile(value), "%T", value)
		}
	})

	t.Run("everything else", func(t *testing.T) {
		var nilFile *File
		var nilBlob *Blob
		values := []any{
			nil,
			nilFile,
			nilBlob,
			"file",
			42,
			true,
			[]byte("bytes"),
			map[string]any{"uri": "/tmp/a", "name": "a", "type": "text/plain"},
			[]any{NewBlob("", nil)},
			NewFileList(NewFileFromBytes("a", "", nil)),
			File{Name: "not a pointer"},
		}
		for _, value := range values {
			assert.False(t, IsExtractableFile(value), "%T", value)
		}
	})
}

func TestFileList(t *testing.T) {
	a := NewFileFromBytes("a", "", nil)
	b := NewFileFromBytes("b", "", nil)
	list := NewFileList(a, b)

	assert.Equal(t, 2, list.Len())
	assert.Same(t, a, list.Item(0))
	assert.Same(t, b, list.Item(1))

	var empty *FileList
	assert.Equal(t, 0, empty.Len())
}
