package serialize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingValue struct{}

var errBoom = errors.New("boom")

func (failingValue) MarshalJSON() ([]byte, error) {
	return nil, errBoom
}

func TestJSON(t *testing.T) {
	t.Run("encodes without html escaping", func(t *testing.T) {
		out, err := JSON(map[string]any{"query": "{ a(where: \"<b>&\") }"}, "Payload")
		require.NoError(t, err)
		assert.Equal(t, `{"query":"{ a(where: \"<b>&\") }"}`, string(out))
	})

	t.Run("labels failures", func(t *testing.T) {
		_, err := JSON(map[string]any{"a": failingValue{}}, "Variables map")
		require.Error(t, err)

		var serr *Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, "Variables map", serr.Label)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "Network request failed. Variables map is not serializable: ")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("unsupported values", func(t *testing.T) {
		_, err := String(map[string]any{"ch": make(chan int)}, "Payload")
		var serr *Error
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "Payload", serr.Label)
	})

	t.Run("string", func(t *testing.T) {
		out, err := String([]any{1, "two", nil}, "Variables map")
		require.NoError(t, err)
		assert.Equal(t, `[1,"two",null]`, out)
	})
}
