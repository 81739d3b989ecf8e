package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/ai/mock"
	"github.com/poiesic/askbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := ai.RetryWithBackoff(ctx, func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := ai.RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := ai.RetryWithBackoff(ctx, func() error {
			calls++
			return boom
		}, 3, time.Millisecond)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, calls)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		err := ai.RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
		assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := ai.RetryWithBackoff(cancelled, func() error { return errors.New("x") }, 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through on success", func(t *testing.T) {
		inner := mock.NewMockEmbedder(8)
		embedder := ai.NewRetryEmbedder(inner, 3, time.Millisecond)

		vec, err := embedder.EmbedText(ctx, "hello")
		require.NoError(t, err)
		assert.Len(t, vec, 8)
		assert.Equal(t, 8, embedder.Dimension())
	})

	t.Run("retries transient failures", func(t *testing.T) {
		inner := mock.NewMockEmbedder(8)
		failures := 2
		inner.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			if failures > 0 {
				failures--
				return nil, errors.New("connection refused")
			}
			inner.EmbedTextsFunc = nil
			return inner.EmbedTexts(ctx, texts)
		}
		embedder := ai.NewRetryEmbedder(inner, 3, time.Millisecond)

		vectors, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, vectors, 2)
	})

	t.Run("exhaustion surfaces as unavailable", func(t *testing.T) {
		inner := mock.NewMockEmbedder(8)
		inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("connection refused")
		}
		embedder := ai.NewRetryEmbedder(inner, 2, time.Millisecond)

		_, err := embedder.EmbedText(ctx, "hello")
		assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
	})
}
