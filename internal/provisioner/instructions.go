// internal/provisioner/instructions.go
package provisioner

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	createPoolTag   uint8 = 1
	createFeeKeyTag uint8 = 1
)

// PoolInstructionData is the create-pool payload:
// tag, token amount, sol amount, fee bps and lock period, all little endian.
func PoolInstructionData(tokenAmount, solAmount, feeBps, lockPeriod uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(createPoolTag); err != nil {
		return nil, fmt.Errorf("failed to encode pool tag: %w", err)
	}
	for _, v := range []uint64{tokenAmount, solAmount, feeBps, lockPeriod} {
		if err := enc.WriteUint64(v, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("failed to encode pool data: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// FeeKeyInstructionData is the fee-key payload: tag and fee share in bps.
func FeeKeyInstructionData(shareBps uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(createFeeKeyTag); err != nil {
		return nil, fmt.Errorf("failed to encode fee-key tag: %w", err)
	}
	if err := enc.WriteUint64(shareBps, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode fee-key data: %w", err)
	}
	return buf.Bytes(), nil
}

// PoolAccounts lists the accounts of the create-pool instruction in order.
type PoolAccounts struct {
	Authority       solana.PublicKey
	Mint            solana.PublicKey
	WrappedSol      solana.PublicKey
	TokenAccount    solana.PublicKey
	SolTokenAccount solana.PublicKey
	LPMint          solana.PublicKey
	FeeAccount      solana.PublicKey
}

func newCreatePoolInstruction(program solana.PublicKey, acc PoolAccounts, data []byte) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(acc.Authority, true, false),
		solana.NewAccountMeta(acc.Mint, true, false),
		solana.NewAccountMeta(acc.WrappedSol, true, false),
		solana.NewAccountMeta(acc.TokenAccount, true, false),
		solana.NewAccountMeta(acc.SolTokenAccount, true, false),
		solana.NewAccountMeta(acc.LPMint, true, false),
		solana.NewAccountMeta(acc.FeeAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SysVarRentPubkey, false, false),
	}
	return solana.NewInstruction(program, metas, data)
}

func newCreateFeeKeyInstruction(program, nftMint, admin, pool solana.PublicKey, data []byte) solana.Instruction {
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(nftMint, true, false),
		solana.NewAccountMeta(admin, true, true),
		solana.NewAccountMeta(pool, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(program, metas, data)
}
