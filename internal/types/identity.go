// internal/types/identity.go
package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Identity is an account address on the host ledger.
type Identity = solana.PublicKey

// ParseIdentity decodes a base58 account address.
func ParseIdentity(s string) (Identity, error) {
	id, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad identity %q: %v", ErrInvalidParameter, s, err)
	}
	return id, nil
}
