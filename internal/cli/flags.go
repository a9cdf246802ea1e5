package cli

import (
	"github.com/rovshanmuradov/curvesale/internal/batch"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/spf13/cobra"
)

// identityFlag is a base58 account flag.
type identityFlag struct {
	id  types.Identity
	set bool
}

func (f *identityFlag) String() string {
	if !f.set {
		return ""
	}
	return f.id.String()
}

func (f *identityFlag) Set(s string) error {
	id, err := types.ParseIdentity(s)
	if err != nil {
		return err
	}
	f.id, f.set = id, true
	return nil
}

func (f *identityFlag) Type() string { return "pubkey" }

// solFlag is a decimal SOL amount stored as lamports.
type solFlag struct {
	lamports uint64
	raw      string
}

func (f *solFlag) String() string { return f.raw }

func (f *solFlag) Set(s string) error {
	l, err := batch.SolToLamports(s)
	if err != nil {
		return err
	}
	f.lamports, f.raw = l, s
	return nil
}

func (f *solFlag) Type() string { return "sol" }

func identityVar(cmd *cobra.Command, f *identityFlag, name, usage string, required bool) {
	cmd.Flags().Var(f, name, usage)
	if required {
		_ = cmd.MarkFlagRequired(name)
	}
}

func solVar(cmd *cobra.Command, f *solFlag, name, usage string, required bool) {
	cmd.Flags().Var(f, name, usage)
	if required {
		_ = cmd.MarkFlagRequired(name)
	}
}
