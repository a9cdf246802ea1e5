package provisioner

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
)

// PriorityLevel selects the compute budget of the migration transaction.
type PriorityLevel string

const (
	PriorityNone    PriorityLevel = "none"
	PriorityLow     PriorityLevel = "low"
	PriorityMedium  PriorityLevel = "medium"
	PriorityHigh    PriorityLevel = "high"
	PriorityExtreme PriorityLevel = "extreme"
)

// PriorityProfile is the compute budget requested for one level.
type PriorityProfile struct {
	ComputeUnits uint32 // compute unit limit
	PriorityFee  uint64 // micro-lamports per compute unit
	HeapSize     uint32
}

var priorityProfiles = map[PriorityLevel]PriorityProfile{
	PriorityNone:    {},
	PriorityLow:     {ComputeUnits: 200_000, PriorityFee: 1_000},
	PriorityMedium:  {ComputeUnits: 400_000, PriorityFee: 5_000},
	PriorityHigh:    {ComputeUnits: 800_000, PriorityFee: 10_000},
	PriorityExtreme: {ComputeUnits: 1_000_000, PriorityFee: 50_000, HeapSize: 32 * 1024},
}

// ParsePriority validates a configured level. Empty means none.
func ParsePriority(s string) (PriorityLevel, error) {
	if s == "" {
		return PriorityNone, nil
	}
	level := PriorityLevel(s)
	if _, ok := priorityProfiles[level]; !ok {
		return "", fmt.Errorf("%w: unknown priority level %q", ErrInvalidVenue, s)
	}
	return level, nil
}

// PriorityInstructions returns the compute budget instructions to prepend to
// a transaction. PriorityNone yields nothing.
func PriorityInstructions(level PriorityLevel) ([]solana.Instruction, error) {
	profile, ok := priorityProfiles[level]
	if !ok {
		return nil, fmt.Errorf("%w: unknown priority level %q", ErrInvalidVenue, level)
	}

	var out []solana.Instruction
	if profile.ComputeUnits > 0 {
		out = append(out, computebudget.NewSetComputeUnitLimitInstruction(profile.ComputeUnits).Build())
	}
	if profile.PriorityFee > 0 {
		out = append(out, computebudget.NewSetComputeUnitPriceInstruction(profile.PriorityFee).Build())
	}
	if profile.HeapSize > 0 {
		out = append(out, computebudget.NewRequestHeapFrameInstruction(profile.HeapSize).Build())
	}
	return out, nil
}
