// internal/provisioner/recorder.go
package provisioner

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
)

// Recorder is a dry-run submitter. It keeps every instruction set it was
// handed and can be told to fail.
type Recorder struct {
	mu    sync.Mutex
	Fail  error
	sent  [][]solana.Instruction
	count uint64
}

func (r *Recorder) Submit(_ context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return solana.Signature{}, r.Fail
	}
	r.sent = append(r.sent, instructions)
	r.count++

	var sig solana.Signature
	sig[0] = byte(r.count)
	return sig, nil
}

// Sent returns the recorded instruction sets.
func (r *Recorder) Sent() [][]solana.Instruction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]solana.Instruction, len(r.sent))
	copy(out, r.sent)
	return out
}

// Static is a provisioner that returns a fixed venue without touching any
// network. It backs dry-run deployments.
type Static struct {
	Venue ledger.Venue
	Err   error
}

func (s Static) Provision(_ context.Context, _ ledger.MigrationRecord) (ledger.Venue, error) {
	return s.Venue, s.Err
}
