package ledger

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for owner addresses that do not decode to
// a valid ed25519 public key.
var ErrInvalidAddress = errors.New("invalid owner address")

// ValidateOwnerAddress checks that the address is base58 of exactly 32
// bytes representing a point on the ed25519 curve. Addresses failing the
// check cannot have signed anything, so they are rejected before any RPC.
func ValidateOwnerAddress(address string) error {
	decoded, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAddress, address, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("%w: %s: expected 32 bytes, got %d", ErrInvalidAddress, address, len(decoded))
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return fmt.Errorf("%w: %s: not on curve", ErrInvalidAddress, address)
	}
	return nil
}
