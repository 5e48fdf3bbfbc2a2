// Package uploadblob lets objects of a gocloud blob bucket be used as upload
// files. Object contents are streamed from the bucket when the multipart body
// is assembled.
package uploadblob

import (
	"context"
	"path"

	"github.com/pkg/errors"
	"gocloud.dev/blob"

	"github.com/wundergraph/graphql-go-upload/pkg/multipartform"
	"github.com/wundergraph/graphql-go-upload/pkg/upload"
)

// Object is a file substitute pointing at Key in Bucket. Name and Type
// default to the base of Key and the stored content type.
type Object struct {
	Bucket *blob.Bucket
	Key    string
	Name   string
	Type   string
}

func NewObject(bucket *blob.Bucket, key string) *Object {
	return &Object{
		Bucket: bucket,
		Key:    key,
	}
}

// IsExtractableFile accepts every default file value and *Object.
func IsExtractableFile(value any) bool {
	if object, ok := value.(*Object); ok {
		return object != nil
	}
	return upload.IsExtractableFile(value)
}

// AppendFile returns a FileAppender that reads objects with ctx and hands
// every other file to multipartform.AppendFile.
func AppendFile(ctx context.Context) multipartform.FileAppender {
	return func(body multipartform.Body, fieldName string, file any) error {
		object, ok := file.(*Object)
		if !ok {
			return multipartform.AppendFile(body, fieldName, file)
		}
		return object.appendTo(ctx, body, fieldName)
	}
}

func (o *Object) appendTo(ctx context.Context, body multipartform.Body, fieldName string) error {
	reader, err := o.Bucket.NewReader(ctx, o.Key, nil)
	if err != nil {
		return errors.Wrapf(err, "open object %s", o.Key)
	}
	defer reader.Close()

	name := o.Name
	if name == "" {
		name = path.Base(o.Key)
	}
	contentType := o.Type
	if contentType == "" {
		contentType = reader.ContentType()
	}
	if contentType == "" {
		contentType = multipartform.DefaultContentType
	}
	return body.WriteFile(fieldName, name, contentType, reader)
}
