// internal/ledger/layout.go
package ledger

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/types"
)

// DiscriminatorLen is the tag prefix of every record.
const DiscriminatorLen = 8

// Encoded sizes, discriminator included.
const (
	ConfigAccountLen       = DiscriminatorLen + 32*4 + 1 + 1 + 32
	BondingCurveAccountLen = DiscriminatorLen + 8 + 1 + 8*types.MaxPricePoints + 8 + 8 + 1
	ReferralAccountLen     = DiscriminatorLen + 32 + 32 + 8
	AirdropLedgerLen       = DiscriminatorLen + 8
	MigrationAccountLen    = DiscriminatorLen + 8 + 8 + 8 + 32*4 + 64
)

// RecordKind identifies a persisted record.
type RecordKind string

const (
	KindConfig        RecordKind = "Config"
	KindBondingCurve  RecordKind = "BondingCurve"
	KindReferral      RecordKind = "Referral"
	KindAirdropLedger RecordKind = "AirdropLedger"
	KindMigration     RecordKind = "Migration"
)

// Discriminator returns the Anchor account tag for a record kind.
func Discriminator(kind RecordKind) [DiscriminatorLen]byte {
	sum := sha256.Sum256([]byte("account:" + string(kind)))
	var d [DiscriminatorLen]byte
	copy(d[:], sum[:DiscriminatorLen])
	return d
}

// ConfigAccount is the on-ledger form of MintConfig and AdminState.
type ConfigAccount struct {
	Admin        solana.PublicKey
	Mint         solana.PublicKey
	Treasury     solana.PublicKey
	Reserve      solana.PublicKey
	Paused       bool
	HasPending   bool
	PendingAdmin solana.PublicKey
}

// BondingCurveAccount is the on-ledger form of the curve and supply ledger.
type BondingCurveAccount struct {
	TotalSupply     uint64
	PointCount      uint8
	PricePoints     [types.MaxPricePoints]uint64
	TotalSoldSupply uint64
	TotalRaised     uint64
	Migrated        bool
}

type ReferralAccount struct {
	User     solana.PublicKey
	Referrer solana.PublicKey
	FeeBps   uint64
}

type AirdropLedgerAccount struct {
	TotalAirdropped uint64
}

type MigrationAccount struct {
	TotalRaised     uint64
	TotalSoldSupply uint64
	Timestamp       int64
	Admin           solana.PublicKey
	Mint            solana.PublicKey
	Pool            solana.PublicKey
	FeeKey          solana.PublicKey
	Signature       solana.Signature
}

// Record is one encoded account. Owner is set for per-user records.
type Record struct {
	Kind  RecordKind
	Owner types.Identity
	Data  []byte
}

// Address resolves the program-derived key the record lives at.
func (r Record) Address(addrs *types.Addresses) (solana.PublicKey, error) {
	switch r.Kind {
	case KindConfig:
		return addrs.Config()
	case KindBondingCurve:
		return addrs.BondingCurve()
	case KindReferral:
		return addrs.Referral(r.Owner)
	case KindAirdropLedger:
		return addrs.AirdropLedger()
	case KindMigration:
		return addrs.Migration()
	default:
		return solana.PublicKey{}, fmt.Errorf("unknown record kind %q", r.Kind)
	}
}

func recordLen(kind RecordKind) int {
	switch kind {
	case KindConfig:
		return ConfigAccountLen
	case KindBondingCurve:
		return BondingCurveAccountLen
	case KindReferral:
		return ReferralAccountLen
	case KindAirdropLedger:
		return AirdropLedgerLen
	case KindMigration:
		return MigrationAccountLen
	}
	return 0
}

func encodeRecord(kind RecordKind, v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	disc := Discriminator(kind)
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if want := recordLen(kind); buf.Len() != want {
		return nil, fmt.Errorf("%s encoded to %d bytes, want %d", kind, buf.Len(), want)
	}
	return buf.Bytes(), nil
}

func decodeRecord(kind RecordKind, data []byte, v interface{}) error {
	if len(data) != recordLen(kind) {
		return fmt.Errorf("%s record is %d bytes, want %d", kind, len(data), recordLen(kind))
	}
	disc := Discriminator(kind)
	if !bytes.Equal(data[:DiscriminatorLen], disc[:]) {
		return fmt.Errorf("%s record has wrong discriminator", kind)
	}
	if err := bin.NewBorshDecoder(data[DiscriminatorLen:]).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return nil
}

// EncodeState renders every initialized record. Referral records are sorted by
// user so the output is deterministic.
func EncodeState(s *State) ([]Record, error) {
	var out []Record
	if s.Mint == nil {
		return out, nil
	}

	pending, hasPending := s.Admin.PendingAdmin()
	cfg := ConfigAccount{
		Admin:        s.Admin.Admin,
		Mint:         s.Mint.Mint,
		Treasury:     s.Mint.Treasury,
		Reserve:      s.Mint.Reserve,
		Paused:       s.Admin.IsPaused(),
		HasPending:   hasPending,
		PendingAdmin: pending,
	}
	data, err := encodeRecord(KindConfig, &cfg)
	if err != nil {
		return nil, err
	}
	out = append(out, Record{Kind: KindConfig, Data: data})

	data, err = encodeRecord(KindAirdropLedger, &AirdropLedgerAccount{TotalAirdropped: s.Airdrop.TotalAirdropped})
	if err != nil {
		return nil, err
	}
	out = append(out, Record{Kind: KindAirdropLedger, Data: data})

	if s.Curve != nil {
		points := s.Curve.Points()
		acc := BondingCurveAccount{
			TotalSupply:     s.Curve.TotalSupply(),
			PointCount:      uint8(len(points)),
			TotalSoldSupply: s.Supply.TotalSoldSupply,
			TotalRaised:     s.Supply.TotalRaised,
			Migrated:        s.Supply.IsMigrated(),
		}
		copy(acc.PricePoints[:], points)
		data, err = encodeRecord(KindBondingCurve, &acc)
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Kind: KindBondingCurve, Data: data})
	}

	users := make([]types.Identity, 0, len(s.Referrals))
	for u := range s.Referrals {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return bytes.Compare(users[i][:], users[j][:]) < 0 })
	for _, u := range users {
		rec := s.Referrals[u]
		data, err = encodeRecord(KindReferral, &ReferralAccount{User: rec.User, Referrer: rec.Referrer, FeeBps: rec.FeeBps})
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Kind: KindReferral, Owner: u, Data: data})
	}

	if m := s.Migration; m != nil {
		data, err = encodeRecord(KindMigration, &MigrationAccount{
			TotalRaised:     m.TotalRaised,
			TotalSoldSupply: m.TotalSoldSupply,
			Timestamp:       m.Timestamp,
			Admin:           m.Admin,
			Mint:            m.Mint,
			Pool:            m.Pool,
			FeeKey:          m.FeeKey,
			Signature:       m.Signature,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Kind: KindMigration, Data: data})
	}
	return out, nil
}

// DecodeState rebuilds the state from persisted records. The curve is
// re-validated on the way in.
func DecodeState(records []Record) (*State, error) {
	s := NewState()
	for _, r := range records {
		switch r.Kind {
		case KindConfig:
			var acc ConfigAccount
			if err := decodeRecord(r.Kind, r.Data, &acc); err != nil {
				return nil, err
			}
			s.Mint = &MintConfig{Mint: acc.Mint, Treasury: acc.Treasury, Reserve: acc.Reserve}
			s.Admin = AdminState{Admin: acc.Admin}
			if acc.Paused {
				s.Admin.Run = Paused
			}
			if acc.HasPending {
				s.Admin.Handoff = HandoffPending
				s.Admin.Pending = acc.PendingAdmin
			}
		case KindBondingCurve:
			var acc BondingCurveAccount
			if err := decodeRecord(r.Kind, r.Data, &acc); err != nil {
				return nil, err
			}
			if int(acc.PointCount) > types.MaxPricePoints {
				return nil, fmt.Errorf("bonding curve record has %d points", acc.PointCount)
			}
			cfg, err := curve.NewConfig(acc.PricePoints[:acc.PointCount], acc.TotalSupply)
			if err != nil {
				return nil, fmt.Errorf("bonding curve record: %w", err)
			}
			s.Curve = cfg
			s.Supply = SupplyLedger{TotalSoldSupply: acc.TotalSoldSupply, TotalRaised: acc.TotalRaised}
			if acc.Migrated {
				s.Supply.Status = StatusMigrated
			}
		case KindReferral:
			var acc ReferralAccount
			if err := decodeRecord(r.Kind, r.Data, &acc); err != nil {
				return nil, err
			}
			s.Referrals[acc.User] = ReferralRecord{User: acc.User, Referrer: acc.Referrer, FeeBps: acc.FeeBps}
		case KindAirdropLedger:
			var acc AirdropLedgerAccount
			if err := decodeRecord(r.Kind, r.Data, &acc); err != nil {
				return nil, err
			}
			s.Airdrop.TotalAirdropped = acc.TotalAirdropped
		case KindMigration:
			var acc MigrationAccount
			if err := decodeRecord(r.Kind, r.Data, &acc); err != nil {
				return nil, err
			}
			s.Migration = &MigrationRecord{
				TotalRaised:     acc.TotalRaised,
				TotalSoldSupply: acc.TotalSoldSupply,
				Timestamp:       acc.Timestamp,
				Admin:           acc.Admin,
				Mint:            acc.Mint,
				Venue:           Venue{Pool: acc.Pool, FeeKey: acc.FeeKey, Signature: acc.Signature},
			}
		default:
			return nil, fmt.Errorf("unknown record kind %q", r.Kind)
		}
	}
	return s, nil
}
