package idmap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("LogBuild", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
			WithTypeID("array").
			WithConcurrency(4)

		logger.LogBuild(ctx, 10, 99, time.Millisecond, nil)
		out := buf.String()
		assert.Contains(t, out, `"msg":"id map built"`)
		assert.Contains(t, out, `"type_id":"array"`)
		assert.Contains(t, out, `"concurrency":4`)
		assert.Contains(t, out, `"node_count":10`)

		buf.Reset()
		logger.LogBuild(ctx, 0, -1, time.Millisecond, errors.New("boom"))
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
		assert.Contains(t, buf.String(), `"error":"boom"`)
	})

	t.Run("Import", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		_, err := Import(ctx, []Node{{OriginalID: 1}, {OriginalID: 2}}, WithLogger(logger))
		require.NoError(t, err)

		out := buf.String()
		assert.Contains(t, out, `"msg":"id map built"`)
		assert.Contains(t, out, `"msg":"import completed"`)
		// The first progress line is always emitted.
		assert.Contains(t, out, `"msg":"import progress"`)
	})

	t.Run("Noop", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NoopLogger().LogImport(ctx, 1, time.Second, nil)
		})
		assert.NotPanics(t, func() {
			_, _ = Import(ctx, nil, WithLogger(nil))
		})
	})
}
