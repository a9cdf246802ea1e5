// internal/types/pda.go
package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Record seeds.
var (
	SeedConfig        = []byte("config")
	SeedBondingCurve  = []byte("bonding_curve")
	SeedReferral      = []byte("referral")
	SeedAirdropLedger = []byte("airdrop_ledger")
	SeedMigration     = []byte("migration")
	SeedRaydiumPool   = []byte("raydium_pool")
	SeedNFTFeeKey     = []byte("nft_fee_key")
)

const addressCacheSize = 4096

// Addresses derives and caches program-derived record keys.
type Addresses struct {
	program solana.PublicKey
	cache   *lru.Cache[string, solana.PublicKey]
}

// NewAddresses builds a deriver for the given program.
func NewAddresses(program solana.PublicKey) (*Addresses, error) {
	cache, err := lru.New[string, solana.PublicKey](addressCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create address cache: %w", err)
	}
	return &Addresses{program: program, cache: cache}, nil
}

// Program returns the owning program id.
func (a *Addresses) Program() solana.PublicKey {
	return a.program
}

func (a *Addresses) Config() (solana.PublicKey, error) {
	return a.derive(SeedConfig)
}

func (a *Addresses) BondingCurve() (solana.PublicKey, error) {
	return a.derive(SeedBondingCurve)
}

func (a *Addresses) Referral(user solana.PublicKey) (solana.PublicKey, error) {
	return a.derive(SeedReferral, user.Bytes())
}

func (a *Addresses) AirdropLedger() (solana.PublicKey, error) {
	return a.derive(SeedAirdropLedger)
}

func (a *Addresses) Migration() (solana.PublicKey, error) {
	return a.derive(SeedMigration)
}

// RaydiumPool is the pool record created for the mint at migration.
func (a *Addresses) RaydiumPool(mint solana.PublicKey) (solana.PublicKey, error) {
	return a.derive(SeedRaydiumPool, mint.Bytes())
}

// FeeKey is the fee-key record bound to a pool.
func (a *Addresses) FeeKey(pool solana.PublicKey) (solana.PublicKey, error) {
	return a.derive(SeedNFTFeeKey, pool.Bytes())
}

func (a *Addresses) derive(seeds ...[]byte) (solana.PublicKey, error) {
	key := string(joinSeeds(seeds))
	if addr, ok := a.cache.Get(key); ok {
		return addr, nil
	}
	addr, _, err := solana.FindProgramAddress(seeds, a.program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive address for %q: %w", seeds[0], err)
	}
	a.cache.Add(key, addr)
	return addr, nil
}

func joinSeeds(seeds [][]byte) []byte {
	var out []byte
	for _, s := range seeds {
		out = append(out, byte(len(s)))
		out = append(out, s...)
	}
	return out
}
