// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rovshanmuradov/curvesale/internal/engine"
	"github.com/rovshanmuradov/curvesale/internal/logger"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CURVESALE_STORAGE_DSN.
const EnvPrefix = "CURVESALE"

type Config struct {
	ProgramID   string            `mapstructure:"program_id"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Log         logger.Config     `mapstructure:"log"`
	Curve       CurveConfig       `mapstructure:"curve"`
	Sale        SaleConfig        `mapstructure:"sale"`
	Referral    ReferralConfig    `mapstructure:"referral"`
	Migration   MigrationConfig   `mapstructure:"migration"`
	Oracle      OracleConfig      `mapstructure:"oracle"`
	Provisioner ProvisionerConfig `mapstructure:"provisioner"`
	Audit       AuditConfig       `mapstructure:"audit"`
	Batch       BatchConfig       `mapstructure:"batch"`
}

type StorageConfig struct {
	DSN string `mapstructure:"dsn"`
}

type CurveConfig struct {
	TotalSupply uint64 `mapstructure:"total_supply"`
	Precision   uint64 `mapstructure:"precision"`
}

type SaleConfig struct {
	MinPurchase uint64 `mapstructure:"min_purchase"`
	MinSale     uint64 `mapstructure:"min_sale"`
}

type ReferralConfig struct {
	DefaultFeeBps uint64 `mapstructure:"default_fee_bps"`
	MaxFeeBps     uint64 `mapstructure:"max_fee_bps"`
}

type MigrationConfig struct {
	Policy          string `mapstructure:"policy"`
	MinRaise        uint64 `mapstructure:"min_raise"`
	MaxRaise        uint64 `mapstructure:"max_raise"`
	UsdMin          string `mapstructure:"usd_min"`
	UsdMax          string `mapstructure:"usd_max"`
	SupplyThreshold uint64 `mapstructure:"supply_threshold"`
}

type OracleConfig struct {
	URL          string        `mapstructure:"url"`
	PricePath    string        `mapstructure:"price_path"`
	TimePath     string        `mapstructure:"time_path"`
	MaxStaleness time.Duration `mapstructure:"max_staleness"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type ProvisionerConfig struct {
	Mode          string            `mapstructure:"mode"`
	RPCURL        string            `mapstructure:"rpc_url"`
	Keypair       string            `mapstructure:"keypair"`
	AmmProgram    string            `mapstructure:"amm_program"`
	FeeKeyProgram string            `mapstructure:"fee_key_program"`
	NFTMint       string            `mapstructure:"nft_mint"`
	PoolFeeBps    uint64            `mapstructure:"pool_fee_bps"`
	Priority      string            `mapstructure:"priority"`
	Accounts      map[string]string `mapstructure:"accounts"`
}

type AuditConfig struct {
	CSVPath       string        `mapstructure:"csv_path"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

const (
	PolicySol = "sol"
	PolicyUsd = "usd"

	ModeDryRun = "dry-run"
	ModeRPC    = "rpc"

	DefaultWorkers = 4
	DefaultDSN     = "curvesale.db"
	// DSNMemory selects the in-memory store; state is lost on exit.
	DSNMemory      = "memory"
)

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"program_id":                  types.DefaultProgramID,
		"storage.dsn":                 DefaultDSN,
		"log.file":                    "logs/curvesale.log",
		"log.max_size":                100,
		"log.max_age":                 7,
		"log.max_backups":             3,
		"log.compress":                true,
		"log.console":                 "pretty",
		"log.development":             false,
		"curve.total_supply":          uint64(types.DefaultTotalSupply),
		"curve.precision":             uint64(types.DefaultPrecision),
		"sale.min_purchase":           uint64(types.DefaultMinPurchase),
		"sale.min_sale":               uint64(types.DefaultMinSale),
		"referral.default_fee_bps":    uint64(types.DefaultReferralFeeBps),
		"referral.max_fee_bps":        uint64(types.DefaultMaxReferralFeeBps),
		"migration.policy":            PolicySol,
		"migration.min_raise":         uint64(types.DefaultMinRaise),
		"migration.max_raise":         uint64(types.DefaultMaxRaise),
		"migration.usd_min":           fmt.Sprint(types.DefaultUsdMinRaise),
		"migration.usd_max":           fmt.Sprint(types.DefaultUsdMaxRaise),
		"migration.supply_threshold":  uint64(types.DefaultSupplyThreshold),
		"oracle.url":                  "",
		"oracle.price_path":           "price",
		"oracle.time_path":            "publish_time",
		"oracle.max_staleness":        time.Duration(types.DefaultMaxStalenessSeconds) * time.Second,
		"oracle.timeout":              5 * time.Second,
		"provisioner.mode":            ModeDryRun,
		"provisioner.rpc_url":         "",
		"provisioner.keypair":         "",
		"provisioner.amm_program":     "",
		"provisioner.fee_key_program": "",
		"provisioner.nft_mint":        "",
		"provisioner.pool_fee_bps":    uint64(types.DefaultPoolFeeBps),
		"provisioner.priority":        "medium",
		"audit.csv_path":              "",
		"audit.flush_interval":        5 * time.Second,
		"batch.workers":               DefaultWorkers,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load reads path (YAML, JSON or TOML by extension), applies CURVESALE_*
// environment overrides and validates the result. An empty path uses defaults
// and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if _, err := types.ParseIdentity(cfg.ProgramID); err != nil {
		return errors.New("invalid program_id")
	}
	if cfg.Storage.DSN == "" {
		return errors.New("storage.dsn is empty")
	}
	if err := cfg.Params().Validate(); err != nil {
		return err
	}
	if err := validateMigration(cfg); err != nil {
		return err
	}
	if err := validateProvisioner(&cfg.Provisioner); err != nil {
		return err
	}
	if cfg.Batch.Workers <= 0 {
		return errors.New("invalid batch.workers count")
	}
	return nil
}

func validateMigration(cfg *Config) error {
	m := cfg.Migration
	switch m.Policy {
	case PolicySol:
		if m.MinRaise == 0 || m.MinRaise > m.MaxRaise {
			return errors.New("migration window must satisfy 0 < min_raise <= max_raise")
		}
	case PolicyUsd:
		if cfg.Oracle.URL == "" {
			return errors.New("usd migration policy needs oracle.url")
		}
		if err := validateURLWithCache(cfg.Oracle.URL, "http"); err != nil {
			return errors.New("invalid oracle URL protocol")
		}
		if cfg.Oracle.MaxStaleness <= 0 {
			return errors.New("invalid oracle.max_staleness")
		}
	default:
		return fmt.Errorf("unknown migration.policy %q", m.Policy)
	}
	return nil
}

func validateProvisioner(p *ProvisionerConfig) error {
	switch p.Mode {
	case ModeDryRun:
		return nil
	case ModeRPC:
	default:
		return fmt.Errorf("unknown provisioner.mode %q", p.Mode)
	}
	if err := validateURLWithCache(p.RPCURL, "http"); err != nil {
		return errors.New("invalid provisioner RPC URL protocol")
	}
	if p.Keypair == "" {
		return errors.New("provisioner.keypair is required in rpc mode")
	}
	for name, key := range map[string]string{"amm_program": p.AmmProgram, "fee_key_program": p.FeeKeyProgram} {
		if _, err := types.ParseIdentity(key); err != nil {
			return fmt.Errorf("invalid provisioner.%s", name)
		}
	}
	if p.PoolFeeBps > types.BpsDenominator {
		return errors.New("invalid provisioner.pool_fee_bps")
	}
	switch p.Priority {
	case "", "none", "low", "medium", "high", "extreme":
	default:
		return fmt.Errorf("unknown provisioner.priority %q", p.Priority)
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// Params converts the protocol section into engine parameters.
func (c *Config) Params() engine.Params {
	return engine.Params{
		TotalSupply:           c.Curve.TotalSupply,
		Precision:             c.Curve.Precision,
		MinPurchase:           c.Sale.MinPurchase,
		MinSale:               c.Sale.MinSale,
		DefaultReferralFeeBps: c.Referral.DefaultFeeBps,
		MaxReferralFeeBps:     c.Referral.MaxFeeBps,
	}
}
