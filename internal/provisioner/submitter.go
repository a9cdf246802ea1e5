// internal/provisioner/submitter.go
package provisioner

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// RPCSubmitter signs with a local payer key and sends through an RPC node.
type RPCSubmitter struct {
	rpc      *rpc.Client
	payer    solana.PrivateKey
	priority PriorityLevel
	logger   *zap.Logger
}

// NewRPCSubmitter builds a submitter for rpcURL. Every transaction is
// prefixed with the compute budget of the given priority level.
func NewRPCSubmitter(rpcURL string, payer solana.PrivateKey, priority PriorityLevel, logger *zap.Logger) *RPCSubmitter {
	return &RPCSubmitter{
		rpc:      rpc.New(rpcURL),
		payer:    payer,
		priority: priority,
		logger:   logger.Named("rpc-submitter"),
	}
}

// LoadKeypair reads a solana-keygen JSON key file.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: keypair %s: %v", ErrInvalidVenue, path, err)
	}
	return key, nil
}

func (s *RPCSubmitter) Submit(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	recent, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get blockhash: %w", err)
	}

	budget, err := PriorityInstructions(s.priority)
	if err != nil {
		return solana.Signature{}, err
	}
	instructions = append(budget, instructions...)

	payer := s.payer.PublicKey()
	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: build transaction: %v", ErrInvalidVenue, err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &s.payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: sign transaction: %v", ErrInvalidVenue, err)
	}

	sig, err := s.rpc.SendTransaction(ctx, tx)
	if err != nil {
		s.logger.Error("SendTransaction error",
			zap.String("signature", tx.Signatures[0].String()),
			zap.Error(err))
		return solana.Signature{}, fmt.Errorf("%w: signature %s: %v", ErrSendUnconfirmed, tx.Signatures[0], err)
	}
	s.logger.Debug("Transaction sent", zap.String("signature", sig.String()))
	return sig, nil
}
