package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageFallsBackToCode(t *testing.T) {
	err := New(CodePaused, "")
	assert.Equal(t, "paused", err.Error())

	err = New(CodePaused, "ledger is paused")
	assert.Equal(t, "ledger is paused", err.Error())
}

func TestWrapPreservesOriginalCode(t *testing.T) {
	inner := New(CodeInsufficientBalance, "balance too low")
	wrapped := Wrap(inner, CodeInternal, "transfer failed")

	assert.True(t, HasCode(wrapped, CodeInsufficientBalance), "wrap must keep the inner domain code")
	assert.False(t, HasCode(wrapped, CodeInternal))
	require.ErrorIs(t, wrapped, inner)
}

func TestWrapAssignsCodeToPlainErrors(t *testing.T) {
	plain := errors.New("connection reset")
	wrapped := Wrap(plain, CodeInternal, "store unavailable")

	assert.True(t, HasCode(wrapped, CodeInternal))
	require.ErrorIs(t, wrapped, plain)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeAccountBlacklisted, "account frozen"))
	assert.True(t, errors.Is(err, New(CodeAccountBlacklisted, "")))
	assert.False(t, errors.Is(err, New(CodePaused, "")))
}
