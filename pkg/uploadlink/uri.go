package uploadlink

import (
	"net/url"
	"strings"

	"github.com/wundergraph/graphql-go-upload/pkg/extractfiles"
	"github.com/wundergraph/graphql-go-upload/pkg/serialize"
)

// componentEscaper undoes the escapes url.QueryEscape applies beyond those of
// a URI component encoding.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func escapeQueryComponent(value string) string {
	return componentEscaper.Replace(url.QueryEscape(value))
}

// rewriteURIForGET appends the payload fields as query parameters to uri,
// keeping an existing query string and fragment.
func rewriteURIForGET(uri string, body *extractfiles.OrderedMap) (string, error) {
	var params []string
	addParam := func(key, value string) {
		params = append(params, key+"="+escapeQueryComponent(value))
	}

	if query, ok := body.Get("query"); ok {
		queryString, _ := query.(string)
		addParam("query", queryString)
	}
	if operationName, ok := body.Get("operationName"); ok {
		if name, _ := operationName.(string); name != "" {
			addParam("operationName", name)
		}
	}
	if variables, ok := body.Get("variables"); ok && variables != nil {
		serialized, err := serialize.String(variables, "Variables map")
		if err != nil {
			return "", err
		}
		addParam("variables", serialized)
	}
	if extensions, ok := body.Get("extensions"); ok && extensions != nil {
		serialized, err := serialize.String(extensions, "Extensions map")
		if err != nil {
			return "", err
		}
		addParam("extensions", serialized)
	}

	preFragment, fragment := uri, ""
	if fragmentStart := strings.IndexByte(uri, '#'); fragmentStart != -1 {
		preFragment, fragment = uri[:fragmentStart], uri[fragmentStart:]
	}
	separator := "?"
	if strings.Contains(preFragment, "?") {
		separator = "&"
	}
	return preFragment + separator + strings.Join(params, "&") + fragment, nil
}
