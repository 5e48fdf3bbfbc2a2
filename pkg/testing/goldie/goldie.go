// Package goldie wraps sebdah/goldie with the fixture layout used across the
// repository: golden files live in the package's testdata directory and end
// in .golden.
package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func New(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
		goldie.WithDiffEngine(goldie.ClassicDiff),
	)
}

// Assert compares actual with testdata/<name>.golden. Line endings are
// normalized for the platform first.
func Assert(t *testing.T, name string, actual []byte) {
	t.Helper()

	New(t).Assert(t, name, normalizeLineEndings(actual))
}

// Update rewrites testdata/<name>.golden with actual.
func Update(t *testing.T, name string, actual []byte) {
	t.Helper()

	if err := New(t).Update(t, name, normalizeLineEndings(actual)); err != nil {
		t.Fatalf("update golden file %s: %s", name, err)
	}
}
