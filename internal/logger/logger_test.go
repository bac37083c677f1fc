package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	t.Run("logger in context", func(t *testing.T) {
		l := zap.NewNop().Sugar()
		ctx := NewContext(context.Background(), l)
		require.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to global", func(t *testing.T) {
		require.NotNil(t, FromContext(context.Background()))
	})
}
