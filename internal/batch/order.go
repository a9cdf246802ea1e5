// internal/batch/order.go
package batch

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Operation is the kind of work an order performs.
type Operation string

const (
	OperationBuy         Operation = "buy"
	OperationSell        Operation = "sell"
	OperationSetReferral Operation = "set_referral"
	OperationAirdrop     Operation = "airdrop"
)

// Order is one validated line of a batch file.
type Order struct {
	ID        int
	Name      string
	Operation Operation
	Account   types.Identity
	Caller    types.Identity
	Referrer  types.Identity
	Lamports  uint64
	Tokens    uint64
	Slippage  types.SlippageConfig
}

// File is the YAML layout of a batch file.
type File struct {
	Orders []struct {
		Name      string               `yaml:"name"`
		Operation string               `yaml:"operation"`
		Account   string               `yaml:"account"`
		Caller    string               `yaml:"caller"`
		Referrer  string               `yaml:"referrer"`
		AmountSol string               `yaml:"amount_sol"`
		Lamports  uint64               `yaml:"lamports"`
		Tokens    uint64               `yaml:"tokens"`
		Slippage  types.SlippageConfig `yaml:"slippage"`
	} `yaml:"orders"`
}

// Loader reads batch files.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger.Named("batch_loader")}
}

func parseOperation(s string) (Operation, error) {
	op := Operation(s)
	switch op {
	case OperationBuy, OperationSell, OperationSetReferral, OperationAirdrop:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", s)
	}
}

// SolToLamports converts a decimal SOL string, rejecting fractions of a lamport.
func SolToLamports(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", s, err)
	}
	l := d.Shift(9)
	if !l.IsInteger() || l.IsNegative() {
		return 0, fmt.Errorf("invalid SOL amount %q", s)
	}
	if !l.BigInt().IsUint64() {
		return 0, fmt.Errorf("SOL amount %q overflows", s)
	}
	return l.BigInt().Uint64(), nil
}

// LamportsToSol renders lamports as a decimal SOL string.
func LamportsToSol(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}

// Load reads and validates orders. Invalid orders are skipped with a warning;
// a file with no valid order is an error.
func (l *Loader) Load(path string) ([]Order, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.Parse(data)
}

// Parse validates orders from YAML bytes.
func (l *Loader) Parse(data []byte) ([]Order, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(file.Orders) == 0 {
		return nil, fmt.Errorf("no orders found in batch file")
	}

	orders := make([]Order, 0, len(file.Orders))
	for i, raw := range file.Orders {
		order, err := l.build(i, raw.Name, raw.Operation, raw.Account, raw.Caller, raw.Referrer,
			raw.AmountSol, raw.Lamports, raw.Tokens, raw.Slippage)
		if err != nil {
			l.logger.Warn("Skipping invalid order",
				zap.Int("index", i),
				zap.String("name", raw.Name),
				zap.Error(err))
			continue
		}
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("no valid orders loaded")
	}
	l.logger.Info("Loaded orders", zap.Int("count", len(orders)))
	return orders, nil
}

func (l *Loader) build(id int, name, operation, account, caller, referrer, amountSol string,
	lamports, tokens uint64, slippage types.SlippageConfig) (Order, error) {
	op, err := parseOperation(operation)
	if err != nil {
		return Order{}, err
	}
	if name == "" {
		name = fmt.Sprintf("%s-%d", op, id)
	}
	o := Order{ID: id, Name: name, Operation: op, Tokens: tokens, Lamports: lamports, Slippage: slippage}

	if o.Account, err = types.ParseIdentity(account); err != nil {
		return Order{}, fmt.Errorf("account: %w", err)
	}
	if caller != "" {
		if o.Caller, err = types.ParseIdentity(caller); err != nil {
			return Order{}, fmt.Errorf("caller: %w", err)
		}
	}
	if amountSol != "" {
		if o.Lamports, err = SolToLamports(amountSol); err != nil {
			return Order{}, err
		}
	}

	switch op {
	case OperationBuy:
		if o.Lamports == 0 {
			return Order{}, fmt.Errorf("buy needs amount_sol or lamports")
		}
	case OperationSell:
		if o.Tokens == 0 {
			return Order{}, fmt.Errorf("sell needs tokens")
		}
	case OperationAirdrop:
		if o.Tokens == 0 || o.Caller.IsZero() {
			return Order{}, fmt.Errorf("airdrop needs tokens and caller")
		}
	case OperationSetReferral:
		if o.Referrer, err = types.ParseIdentity(referrer); err != nil {
			return Order{}, fmt.Errorf("referrer: %w", err)
		}
	}
	switch slippage.Type {
	case "", types.SlippageNone, types.SlippageFixed, types.SlippageBps:
	default:
		return Order{}, fmt.Errorf("unknown slippage type %q", slippage.Type)
	}
	return o, nil
}
