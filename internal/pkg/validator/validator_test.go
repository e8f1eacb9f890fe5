package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	type transaction struct {
		Hash   string `validate:"required,tx_hash"`
		Wallet string `validate:"required,eth_addr"`
		Value  string `validate:"required,wei"`
	}

	valid := transaction{
		Hash:   "0x" + repeat("ab", 32),
		Wallet: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Value:  "1000000000000000000",
	}

	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, Validate(valid))
	})

	tests := []struct {
		name    string
		mutate  func(*transaction)
		wantTag string
	}{
		{name: "missing hash", mutate: func(tx *transaction) { tx.Hash = "" }, wantTag: "required"},
		{name: "short hash", mutate: func(tx *transaction) { tx.Hash = "0xabc" }, wantTag: "tx_hash"},
		{name: "non hex hash", mutate: func(tx *transaction) { tx.Hash = "0x" + repeat("zz", 32) }, wantTag: "tx_hash"},
		{name: "bad wallet", mutate: func(tx *transaction) { tx.Wallet = "0x123" }, wantTag: "eth_addr"},
		{name: "negative value", mutate: func(tx *transaction) { tx.Value = "-1" }, wantTag: "wei"},
		{name: "fractional value", mutate: func(tx *transaction) { tx.Value = "1.5" }, wantTag: "wei"},
		{name: "non numeric value", mutate: func(tx *transaction) { tx.Value = "ten" }, wantTag: "wei"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)

			err := Validate(tx)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), "'"+tt.wantTag+"' validation")
		})
	}

	t.Run("reports every failing field", func(t *testing.T) {
		err := Validate(transaction{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'Hash'")
		assert.Contains(t, err.Error(), "'Wallet'")
		assert.Contains(t, err.Error(), "'Value'")
	})

	t.Run("non struct input passes through", func(t *testing.T) {
		err := Validate("not a struct")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrValidationFailed))
	})
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "required,eth_addr"))

	err := Var("wallet", "required,eth_addr")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "'value'")
}

func TestFormatError(t *testing.T) {
	t.Run("non validation error is returned unchanged", func(t *testing.T) {
		original := errors.New("boom")
		assert.Same(t, original, formatError(original))
	})
}

func repeat(s string, n int) string {
	out := ""
	for range n {
		out += s
	}
	return out
}
