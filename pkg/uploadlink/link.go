// Package uploadlink sends GraphQL operations over HTTP and turns them into
// multipart upload requests when their variables contain files.
package uploadlink

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/graphql-go-upload/pkg/extractfiles"
	"github.com/wundergraph/graphql-go-upload/pkg/graphqldoc"
	"github.com/wundergraph/graphql-go-upload/pkg/httpclient"
	"github.com/wundergraph/graphql-go-upload/pkg/multipartform"
	"github.com/wundergraph/graphql-go-upload/pkg/serialize"
)

var ErrMissingQuery = errors.New("uploadlink: operation has neither query nor document")

// Link is safe for concurrent use. Every request builds its own payload
// clone, the caller's variables are never modified.
type Link struct {
	opts opts
}

func New(options ...Options) *Link {
	o := defaultOpts()
	for _, option := range options {
		option(&o)
	}
	return &Link{opts: o}
}

// preparedRequest is a request that is ready for the transport.
type preparedRequest struct {
	request       *httpclient.Request
	timeout       time.Duration
	operationName string
	files         int
}

// prepare builds the request for op. Every failure happens here, before the
// transport is involved.
func (l *Link) prepare(op *Operation) (*preparedRequest, error) {
	if op.Query == "" && op.Document == nil {
		return nil, ErrMissingQuery
	}

	config := l.selectHTTPConfig(op.Context)
	doc := &lazyDocument{op: op, documents: l.opts.documents}

	variables := op.Variables
	if len(variables) > 0 && !l.opts.includeUnusedVariables {
		parsed, err := doc.get()
		if err != nil {
			return nil, err
		}
		variables = graphqldoc.FilterVariables(variables, parsed)
	}

	body := extractfiles.NewOrderedMap()
	if config.includeQuery {
		query := op.Query
		if query == "" {
			query = l.opts.print(op.Document)
		}
		body.Set("query", query)
	}
	if op.OperationName != "" {
		body.Set("operationName", op.OperationName)
	}
	if len(variables) > 0 {
		body.Set("variables", variables)
	} else if config.includeEmptyVariables {
		body.Set("variables", map[string]any{})
	}
	if config.includeExtensions {
		extensions := op.Extensions
		if extensions == nil {
			extensions = map[string]any{}
		}
		body.Set("extensions", extensions)
	}

	extraction, err := extractfiles.Extract(body, l.opts.isExtractableFile, "")
	if err != nil {
		return nil, &SerializationError{Label: "Payload", Err: err}
	}
	clone := extraction.Clone.(*extractfiles.OrderedMap)

	uri := l.selectURI(op.Context)
	request := &httpclient.Request{
		Method:      config.method,
		URL:         uri,
		Header:      config.header,
		Credentials: config.credentials,
	}

	switch {
	case extraction.Files.Len() > 0:
		// the transport derives the content type and boundary from the form
		request.Header.Del(httpclient.ContentTypeHeader)
		request.Method = http.MethodPost

		form := l.opts.newForm()
		if err := multipartform.Assemble(form, clone, extraction.Files, l.opts.appendFile); err != nil {
			return nil, err
		}
		if err := form.Close(); err != nil {
			return nil, err
		}
		request.Body = form
	default:
		if l.opts.useGETForQueries {
			parsed, err := doc.get()
			if err != nil {
				return nil, err
			}
			if !graphqldoc.HasMutation(parsed) {
				request.Method = http.MethodGet
			}
		}
		if request.Method == http.MethodGet {
			rewritten, err := rewriteURIForGET(uri, clone)
			if err != nil {
				return nil, err
			}
			request.URL = rewritten
			break
		}
		payload, err := serialize.JSON(clone, "Payload")
		if err != nil {
			return nil, err
		}
		request.Body = bytes.NewReader(payload)
	}

	return &preparedRequest{
		request:       request,
		timeout:       config.timeout,
		operationName: op.OperationName,
		files:         extraction.Files.Len(),
	}, nil
}

// dispatch runs a prepared request. A context that is already done never
// reaches the transport.
func (l *Link) dispatch(ctx context.Context, prepared *preparedRequest) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prepared.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, prepared.timeout)
		defer cancel()
	}

	l.opts.log.Debug("uploadlink.dispatch",
		abstractlogger.String("method", prepared.request.Method),
		abstractlogger.String("uri", prepared.request.URL),
		abstractlogger.Int("files", prepared.files),
	)

	response, err := l.opts.fetcher.Fetch(ctx, prepared.request)
	if err != nil {
		l.opts.log.Debug("uploadlink.dispatch.fetch",
			abstractlogger.String("uri", prepared.request.URL),
			abstractlogger.Error(err),
		)
		return nil, err
	}

	result, err := parseAndCheckHTTPResponse(response, prepared.operationName)
	if err != nil {
		l.opts.log.Debug("uploadlink.dispatch.response",
			abstractlogger.Int("status", response.StatusCode),
			abstractlogger.Error(err),
		)
		var serverErr *ServerError
		if errors.As(err, &serverErr) && serverErr.Partial() {
			return serverErr.Result, err
		}
		return nil, err
	}
	return result, nil
}

// Execute sends op and waits for the response. On partial success both the
// result and the *ServerError are returned.
func (l *Link) Execute(ctx context.Context, op *Operation) (*Result, error) {
	prepared, err := l.prepare(op)
	if err != nil {
		return nil, err
	}
	return l.dispatch(ctx, prepared)
}

// lazyDocument parses the operation source at most once, and only when a
// decision needs the document.
type lazyDocument struct {
	op        *Operation
	documents *graphqldoc.Cache
	doc       *ast.QueryDocument
	err       error
	parsed    bool
}

func (d *lazyDocument) get() (*ast.QueryDocument, error) {
	if d.op.Document != nil {
		return d.op.Document, nil
	}
	if d.parsed {
		return d.doc, d.err
	}
	d.parsed = true
	if d.documents != nil {
		d.doc, d.err = d.documents.Parse(d.op.Query)
	} else {
		d.doc, d.err = graphqldoc.Parse(d.op.Query)
	}
	return d.doc, d.err
}
