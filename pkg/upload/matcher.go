package upload

import (
	"os"

	"github.com/99designs/gqlgen/graphql"
)

// IsExtractableFile is the default file matcher. It accepts *File, *Blob,
// *FileRef, *os.File and gqlgen's graphql.Upload (value or pointer).
// Nil pointers and every other value are rejected.
func IsExtractableFile(value any) bool {
	switch v := value.(type) {
	case *File:
		return v != nil
	case *Blob:
		return v != nil
	case *FileRef:
		return v != nil
	case *os.File:
		return v != nil
	case graphql.Upload:
		return true
	case *graphql.Upload:
		return v != nil
	default:
		return false
	}
}
