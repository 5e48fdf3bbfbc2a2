package multipartform

import (
	"github.com/pkg/errors"

	"github.com/wundergraph/graphql-go-upload/pkg/extractfiles"
	"github.com/wundergraph/graphql-go-upload/pkg/serialize"
)

const (
	OperationsField = "operations"
	MapField        = "map"
)

// Assemble writes the operations part, the map part and one part per file
// in enumeration order. Both JSON parts are encoded before anything is
// written, a serialization failure leaves body untouched.
func Assemble(body Body, payload any, files *extractfiles.FileIndex, appendFile FileAppender) error {
	if appendFile == nil {
		appendFile = AppendFile
	}

	operations, err := serialize.JSON(payload, "Payload")
	if err != nil {
		return err
	}
	if files == nil {
		files = extractfiles.NewFileIndex()
	}
	fileMap, err := serialize.JSON(files, "Map")
	if err != nil {
		return err
	}

	if err := body.WriteField(OperationsField, operations); err != nil {
		return err
	}
	if err := body.WriteField(MapField, fileMap); err != nil {
		return err
	}
	return files.Each(func(key string, file any, _ []string) error {
		return errors.Wrapf(appendFile(body, key, file), "append file %s", key)
	})
}
