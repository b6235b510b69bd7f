package apierrors

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := NewValidationFailure("empty edl", nil)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindValidationFailure, kind)

	_, ok = KindOf(errors.New("plain error"))
	require.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDependencyFailure("llm call failed", cause)
	require.ErrorIs(t, err, cause)
}

func TestIsUnretriable(t *testing.T) {
	require.True(t, IsUnretriable(Unretriable(errors.New("x"))))
	require.True(t, IsUnretriable(NewValidationFailure("empty edl", nil)))
	require.True(t, IsUnretriable(NewNotFound("job", nil)))
	require.False(t, IsUnretriable(NewDependencyFailure("llm timeout", nil)))
	require.False(t, IsUnretriable(errors.New("plain")))
}

func TestWriteHTTPForKind(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
	}{
		{NewInvalidInput("bad body", nil), 400},
		{NewNotFound("job missing", nil), 404},
		{NewDependencyUnavailable("llm not configured", nil), 503},
		{NewRenderFailure("ffmpeg exit 1", nil), 500},
		{fmt.Errorf("wrapped: %w", NewValidationFailure("empty edl", nil)), 400},
		{errors.New("untyped"), 500},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		WriteHTTPForKind(w, "failed", c.err)
		require.Equal(t, c.wantCode, w.Code)
	}
}
