//go:build !windows

package goldie

func normalizeLineEndings(data []byte) []byte {
	return data
}
