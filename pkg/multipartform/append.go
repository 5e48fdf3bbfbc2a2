package multipartform

import (
	"bytes"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"

	"github.com/99designs/gqlgen/graphql"
	"github.com/pkg/errors"

	"github.com/wundergraph/graphql-go-upload/pkg/upload"
)

const (
	// BlobFileName is the filename of parts without a name of their own.
	BlobFileName       = "blob"
	DefaultContentType = "application/octet-stream"
)

var ErrUnsupportedFile = errors.New("multipartform: unsupported file value")

// FileAppender writes one file to body under fieldName.
type FileAppender func(body Body, fieldName string, file any) error

// AppendFile is the default FileAppender. It knows every value accepted by
// upload.IsExtractableFile and falls back to plain io.Readers.
func AppendFile(body Body, fieldName string, file any) error {
	switch f := file.(type) {
	case *upload.File:
		return body.WriteFile(fieldName, fileName(f.Name), contentType(f.Type, f.Name), f.Content)
	case *upload.Blob:
		return body.WriteFile(fieldName, BlobFileName, contentType(f.Type, ""), bytes.NewReader(f.Data))
	case *upload.FileRef:
		return appendFileRef(body, fieldName, f)
	case *os.File:
		name := filepath.Base(f.Name())
		return body.WriteFile(fieldName, name, contentType("", name), f)
	case graphql.Upload:
		return body.WriteFile(fieldName, fileName(f.Filename), contentType(f.ContentType, f.Filename), f.File)
	case *graphql.Upload:
		return body.WriteFile(fieldName, fileName(f.Filename), contentType(f.ContentType, f.Filename), f.File)
	case io.Reader:
		return body.WriteFile(fieldName, BlobFileName, DefaultContentType, f)
	default:
		return errors.Wrapf(ErrUnsupportedFile, "%T", file)
	}
}

func appendFileRef(body Body, fieldName string, ref *upload.FileRef) error {
	path, err := LocalPath(ref.URI())
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", ref.URI())
	}
	defer file.Close()

	name := ref.Name()
	if name == "" {
		name = filepath.Base(path)
	}
	return body.WriteFile(fieldName, name, contentType(ref.Type(), name), file)
}

// LocalPath resolves a file:// URL or a plain path to a filesystem path.
func LocalPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return uri, nil
	}
	if u.Scheme != "file" {
		return "", errors.Errorf("multipartform: unsupported uri scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

func fileName(name string) string {
	if name == "" {
		return BlobFileName
	}
	return name
}

func contentType(given, name string) string {
	if given != "" {
		return given
	}
	if ext := filepath.Ext(name); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return DefaultContentType
}
