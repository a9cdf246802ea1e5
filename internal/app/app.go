// Package app wires configuration, storage, audit and the engine together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/audit"
	"github.com/rovshanmuradov/curvesale/internal/config"
	"github.com/rovshanmuradov/curvesale/internal/engine"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/migration"
	"github.com/rovshanmuradov/curvesale/internal/oracle"
	"github.com/rovshanmuradov/curvesale/internal/provisioner"
	"github.com/rovshanmuradov/curvesale/internal/storage"
	"github.com/rovshanmuradov/curvesale/internal/storage/memory"
	"github.com/rovshanmuradov/curvesale/internal/storage/sqlstore"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 15 * time.Second

// App holds the running services of one process.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Addrs   *types.Addresses
	Store   storage.Store
	Bus     *events.Bus
	Program *engine.Program
	Policy  migration.Policy

	// Audit is set when the store is SQL backed.
	Audit *sqlstore.Store
	// Journal is set when audit.csv_path is configured.
	Journal *audit.CSVWriter

	shutdown *ShutdownHandler
}

type options struct {
	cores []zapcore.Core
	clock func() time.Time
}

// Option customizes New.
type Option func(*options)

// WithLogCores tees extra cores into the logger, e.g. a dashboard buffer.
func WithLogCores(cores ...zapcore.Core) Option {
	return func(o *options) { o.cores = append(o.cores, cores...) }
}

// WithClock replaces the engine clock.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// New builds every service described by cfg. On error the services built so
// far are closed.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log, err := logger.New(&cfg.Log, o.cores...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		shutdown: NewShutdownHandler(log.Logger, shutdownTimeout),
	}
	a.shutdown.AddFunc("logger", func() error {
		_ = log.Sync()
		return nil
	})
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	program, err := types.ParseIdentity(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	if a.Addrs, err = types.NewAddresses(program); err != nil {
		return nil, err
	}

	if err = a.openStore(ctx); err != nil {
		return nil, err
	}

	prov, err := a.buildProvisioner()
	if err != nil {
		return nil, err
	}
	if a.Policy, err = a.buildPolicy(); err != nil {
		return nil, err
	}

	if err = a.buildBus(); err != nil {
		return nil, err
	}

	engineOpts := []engine.Option{
		engine.WithSink(a.Bus),
		engine.WithLogger(log.Logger),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(o.clock))
	}
	a.Program, err = engine.New(ctx, a.Store, migration.NewGate(a.Policy, prov), cfg.Params(), engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	log.Info("Application ready",
		zap.String("program", program.String()),
		zap.String("storage", storageKind(cfg.Storage.DSN)),
		zap.String("migration_policy", a.Policy.Name()),
		zap.String("provisioner", cfg.Provisioner.Mode))
	return a, nil
}

func storageKind(dsn string) string {
	if dsn == config.DSNMemory {
		return config.DSNMemory
	}
	return sqlstore.Dialect(dsn)
}

func (a *App) openStore(ctx context.Context) error {
	if a.Config.Storage.DSN == config.DSNMemory {
		a.Store = memory.New(a.Addrs)
		a.shutdown.Add("store", a.Store)
		return nil
	}

	store, err := sqlstore.Open(a.Config.Storage.DSN, a.Addrs, a.Logger.Logger)
	if err != nil {
		return err
	}
	a.shutdown.Add("store", store)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	a.Store = store
	a.Audit = store
	return nil
}

func (a *App) buildProvisioner() (migration.LiquidityPoolProvisioner, error) {
	pc := a.Config.Provisioner
	if pc.Mode == config.ModeDryRun && (pc.AmmProgram == "" || pc.FeeKeyProgram == "") {
		return provisioner.Static{}, nil
	}

	rc, err := raydiumConfig(pc)
	if err != nil {
		return nil, err
	}

	var submit provisioner.Submitter
	if pc.Mode == config.ModeRPC {
		payer, err := provisioner.LoadKeypair(pc.Keypair)
		if err != nil {
			return nil, err
		}
		priority, err := provisioner.ParsePriority(pc.Priority)
		if err != nil {
			return nil, err
		}
		submit = provisioner.NewRPCSubmitter(pc.RPCURL, payer, priority, a.Logger.Logger)
	} else {
		submit = &provisioner.Recorder{}
	}
	return provisioner.NewRaydium(rc, a.Addrs, submit, a.Logger.Logger), nil
}

func raydiumConfig(pc config.ProvisionerConfig) (provisioner.RaydiumConfig, error) {
	rc := provisioner.RaydiumConfig{PoolFeeBps: pc.PoolFeeBps}
	fields := []struct {
		name  string
		value string
		dst   *solana.PublicKey
	}{
		{"amm_program", pc.AmmProgram, &rc.AmmProgram},
		{"fee_key_program", pc.FeeKeyProgram, &rc.FeeKeyProgram},
		{"nft_mint", pc.NFTMint, &rc.NFTMint},
		{"accounts.wrapped_sol", pc.Accounts["wrapped_sol"], &rc.Accounts.WrappedSol},
		{"accounts.token_account", pc.Accounts["token_account"], &rc.Accounts.TokenAccount},
		{"accounts.sol_token_account", pc.Accounts["sol_token_account"], &rc.Accounts.SolTokenAccount},
		{"accounts.lp_mint", pc.Accounts["lp_mint"], &rc.Accounts.LPMint},
		{"accounts.fee_account", pc.Accounts["fee_account"], &rc.Accounts.FeeAccount},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		key, err := types.ParseIdentity(f.value)
		if err != nil {
			return rc, fmt.Errorf("invalid provisioner.%s: %w", f.name, err)
		}
		*f.dst = key
	}
	return rc, nil
}

func (a *App) buildPolicy() (migration.Policy, error) {
	mc := a.Config.Migration
	if mc.Policy == config.PolicySol {
		return migration.SolWindow{Min: mc.MinRaise, Max: mc.MaxRaise}, nil
	}

	oc := a.Config.Oracle
	src := oracle.NewHTTP(oracle.HTTPConfig{
		URL:       oc.URL,
		PricePath: oc.PricePath,
		TimePath:  oc.TimePath,
		Timeout:   oc.Timeout,
	}, a.Logger.Logger)

	minUSD, err := decimal.NewFromString(mc.UsdMin)
	if err != nil {
		return nil, fmt.Errorf("invalid migration.usd_min: %w", err)
	}
	maxUSD, err := decimal.NewFromString(mc.UsdMax)
	if err != nil {
		return nil, fmt.Errorf("invalid migration.usd_max: %w", err)
	}

	w := migration.NewUsdWindow(src)
	w.MinUSD = minUSD
	w.MaxUSD = maxUSD
	w.SupplyThreshold = mc.SupplyThreshold
	w.MaxStaleness = oc.MaxStaleness
	return w, nil
}

func (a *App) buildBus() error {
	a.Bus = events.NewBus(a.Logger.Logger, 0)
	a.Bus.SubscribeAll(audit.NewLogHandler(a.Logger.Logger))

	if a.Audit != nil {
		a.Bus.SubscribeAll(a.Audit)
	}

	if path := a.Config.Audit.CSVPath; path != "" {
		w, err := audit.NewCSVWriter(path, a.Config.Audit.FlushInterval, a.Logger.Logger)
		if err != nil {
			return err
		}
		a.Journal = w
		a.shutdown.Add("journal", w)
		a.Bus.SubscribeAll(w)
	}

	// Registered last so it is closed first and drains into the handlers above.
	a.shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Bus.Shutdown(ctx)
	})
	return nil
}

// Close drains pending events and releases every service.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.shutdown.Shutdown(ctx)
}

// Run blocks until a signal or ctx cancellation and then closes the app.
func (a *App) Run(ctx context.Context) error {
	return a.shutdown.WaitForSignal(ctx)
}
