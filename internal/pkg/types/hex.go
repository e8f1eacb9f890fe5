package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Hex is a 0x-prefixed hexadecimal quantity as returned by Ethereum JSON-RPC
// (e.g. "0x1bc16d674ec80000"). Values are arbitrary precision so wei balances
// never overflow.
type Hex string

// HexFromString validates s and returns it as a Hex.
func HexFromString(s string) (Hex, error) {
	if _, err := parseHex(s); err != nil {
		return "", err
	}
	return Hex(s), nil
}

// HexFromBig encodes v as a Hex quantity. A nil value encodes as zero.
func HexFromBig(v *big.Int) Hex {
	if v == nil {
		return "0x0"
	}
	return Hex("0x" + v.Text(16))
}

// parseHex decodes a 0x-prefixed quantity. A bare "0x" is zero.
func parseHex(s string) (*big.Int, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("hex string must start with 0x")
	}

	digits := s[2:]
	if digits == "" {
		return new(big.Int), nil
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid hexadecimal value: %q", s)
	}

	return v, nil
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if _, err := parseHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Big returns the decoded value, or zero if h is malformed.
func (h Hex) Big() *big.Int {
	v, err := parseHex(string(h))
	if err != nil {
		return new(big.Int)
	}
	return v
}

// Decimal returns the decoded value as a decimal, or zero if h is malformed.
func (h Hex) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(h.Big(), 0)
}

// Int returns the decoded value truncated to int64, or zero if h is malformed
// or does not fit.
func (h Hex) Int() int64 {
	v := h.Big()
	if !v.IsInt64() {
		return 0
	}
	return v.Int64()
}
