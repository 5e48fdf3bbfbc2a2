package uploadlink

import (
	"time"

	"github.com/vektah/gqlparser/v2/ast"
)

// Operation is a single GraphQL request. Variables may contain file values
// anywhere, they are uploaded as multipart parts.
type Operation struct {
	// Query is the operation source. When empty, Document is printed.
	Query         string
	Document      *ast.QueryDocument
	OperationName string
	Variables     map[string]any
	Extensions    map[string]any
	Context       Context
}

// Context overrides link configuration for one operation.
type Context struct {
	URI             string
	Headers         map[string]string
	Credentials     string
	FetchOptions    *FetchOptions
	HTTP            *HTTPOptions
	ClientAwareness *ClientAwareness
}

// ClientAwareness identifies the calling application to the server.
type ClientAwareness struct {
	Name    string
	Version string
}

// HTTPOptions toggle payload fields. Nil fields keep the link value.
type HTTPOptions struct {
	IncludeQuery          *bool
	IncludeExtensions     *bool
	IncludeEmptyVariables *bool
}

type FetchOptions struct {
	Method  string
	Timeout time.Duration
}

// Bool returns a pointer to b, for HTTPOptions literals.
func Bool(b bool) *bool {
	return &b
}
