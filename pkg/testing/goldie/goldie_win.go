//go:build windows

package goldie

import "bytes"

// golden files are checked out with LF endings, output written on windows
// may carry CRLF.
func normalizeLineEndings(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
}
