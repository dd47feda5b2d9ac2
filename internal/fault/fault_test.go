package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "untagged", err: base, want: Transient},
		{name: "balance", err: Errorf(InsufficientBalance, "need %d", 5), want: InsufficientBalance},
		{name: "wrapped config", err: fmt.Errorf("startup: %w", New(Configuration, "load", base)), want: Configuration},
		{name: "partial", err: New(PartialSequence, "swap 2/3", base), want: PartialSequence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("rpc down")))
	assert.True(t, IsRetryable(Errorf(InsufficientBalance, "low")))
	assert.False(t, IsRetryable(Errorf(Configuration, "PRIVATE_KEY missing")))
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("nonce too low")
	err := New(Transient, "send", base)
	require.ErrorIs(t, err, base)
	assert.Equal(t, "send: nonce too low", err.Error())
	assert.Nil(t, New(Transient, "send", nil))
}
