package uploadlink

import (
	"net/http"

	"github.com/jensneuse/abstractlogger"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/wundergraph/graphql-go-upload/pkg/extractfiles"
	"github.com/wundergraph/graphql-go-upload/pkg/graphqldoc"
	"github.com/wundergraph/graphql-go-upload/pkg/httpclient"
	"github.com/wundergraph/graphql-go-upload/pkg/multipartform"
	"github.com/wundergraph/graphql-go-upload/pkg/upload"
)

const DefaultURI = "/graphql"

// Printer renders a parsed document for transport.
type Printer func(doc *ast.QueryDocument) string

// FormFactory creates the multipart body for one request.
type FormFactory func() multipartform.Writer

type Options func(options *opts)

type opts struct {
	uri                    string
	useGETForQueries       bool
	isExtractableFile      extractfiles.Matcher
	appendFile             multipartform.FileAppender
	newForm                FormFactory
	fetcher                httpclient.Fetcher
	fetchOptions           FetchOptions
	credentials            string
	headers                map[string]string
	includeExtensions      *bool
	includeUnusedVariables bool
	print                  Printer
	documents              *graphqldoc.Cache
	log                    abstractlogger.Logger
}

func defaultOpts() opts {
	return opts{
		uri:               DefaultURI,
		isExtractableFile: upload.IsExtractableFile,
		appendFile:        multipartform.AppendFile,
		newForm:           multipartform.NewWriter,
		fetcher:           httpclient.NewNetHTTPFetcher(nil),
		print:             graphqldoc.Print,
		log:               abstractlogger.NoopLogger,
	}
}

// WithURI sets the GraphQL endpoint, "/graphql" by default.
func WithURI(uri string) Options {
	return func(options *opts) {
		options.uri = uri
	}
}

// WithGETForQueries sends operations without mutations and without files as
// GET requests.
func WithGETForQueries() Options {
	return func(options *opts) {
		options.useGETForQueries = true
	}
}

func WithFileMatcher(isExtractableFile extractfiles.Matcher) Options {
	return func(options *opts) {
		options.isExtractableFile = isExtractableFile
	}
}

func WithFileAppender(appendFile multipartform.FileAppender) Options {
	return func(options *opts) {
		options.appendFile = appendFile
	}
}

func WithFormFactory(newForm FormFactory) Options {
	return func(options *opts) {
		options.newForm = newForm
	}
}

func WithFetcher(fetcher httpclient.Fetcher) Options {
	return func(options *opts) {
		options.fetcher = fetcher
	}
}

func WithFetcherFunc(fetch httpclient.FetcherFunc) Options {
	return func(options *opts) {
		options.fetcher = fetch
	}
}

func WithHTTPClient(client *http.Client) Options {
	return func(options *opts) {
		options.fetcher = httpclient.NewNetHTTPFetcher(client)
	}
}

// WithFetchOptions sets the link wide request method and timeout. Upload
// requests are always sent as POST.
func WithFetchOptions(fetchOptions FetchOptions) Options {
	return func(options *opts) {
		options.fetchOptions = fetchOptions
	}
}

func WithCredentials(credentials string) Options {
	return func(options *opts) {
		options.credentials = credentials
	}
}

// WithHeaders sets static headers. Headers of the operation context win on
// conflict.
func WithHeaders(headers map[string]string) Options {
	return func(options *opts) {
		options.headers = headers
	}
}

func WithIncludeExtensions(include bool) Options {
	return func(options *opts) {
		options.includeExtensions = &include
	}
}

func WithIncludeUnusedVariables(include bool) Options {
	return func(options *opts) {
		options.includeUnusedVariables = include
	}
}

func WithPrinter(print Printer) Options {
	return func(options *opts) {
		options.print = print
	}
}

// WithDocumentCache parses operation sources through cache.
func WithDocumentCache(cache *graphqldoc.Cache) Options {
	return func(options *opts) {
		options.documents = cache
	}
}

func WithLogger(log abstractlogger.Logger) Options {
	return func(options *opts) {
		options.log = log
	}
}
