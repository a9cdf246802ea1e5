// internal/storage/sqlstore/sqlstore.go
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/curvesale/internal/curve"
	"github.com/rovshanmuradov/curvesale/internal/events"
	"github.com/rovshanmuradov/curvesale/internal/host"
	"github.com/rovshanmuradov/curvesale/internal/ledger"
	"github.com/rovshanmuradov/curvesale/internal/storage"
	"github.com/rovshanmuradov/curvesale/internal/storage/models"
	"github.com/rovshanmuradov/curvesale/internal/types"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const migrationLockID = 101

var _ storage.Store = (*Store)(nil)

// Store persists balances, program records and the audit trail through gorm.
type Store struct {
	db      *gorm.DB
	dialect string
	addrs   *types.Addresses
	logger  *zap.Logger
}

// Dialect picks the gorm driver for a DSN.
func Dialect(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// Open connects to dsn. Postgres URLs and key=value strings select the
// postgres driver; anything else is treated as a sqlite path.
func Open(dsn string, addrs *types.Addresses, zapLogger *zap.Logger) (*Store, error) {
	dialect := Dialect(dsn)
	var dialector gorm.Dialector
	if dialect == "postgres" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(zapLogger.Named("gorm")),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if dialect == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// sqlite serializes writers anyway; one connection keeps in-memory
		// databases alive and visible.
		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{
		db:      db,
		dialect: dialect,
		addrs:   addrs,
		logger:  zapLogger.Named("sqlstore"),
	}, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if s.dialect == "postgres" {
		var lockObtained bool
		if err := db.Raw("SELECT pg_try_advisory_lock(?)", migrationLockID).Scan(&lockObtained).Error; err != nil {
			return fmt.Errorf("failed to acquire migration lock: %w", err)
		}
		if !lockObtained {
			return fmt.Errorf("another migration is in progress")
		}
		defer db.Exec("SELECT pg_advisory_unlock(?)", migrationLockID)
	}

	if err := db.AutoMigrate(
		&models.Balance{},
		&models.TokenBalance{},
		&models.Record{},
		&models.AuditEntry{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.logger.Info("Schema migrated", zap.String("dialect", s.dialect))
	return nil
}

// Atomic runs fn inside one database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx host.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&sqlTx{db: db, addrs: s.addrs})
	})
}

// LoadState decodes the committed records.
func (s *Store) LoadState(ctx context.Context) (*ledger.State, error) {
	recs, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.DecodeState(recs)
}

func (s *Store) Records(ctx context.Context) ([]ledger.Record, error) {
	var rows []models.Record
	if err := s.db.WithContext(ctx).Order("address").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	out := make([]ledger.Record, 0, len(rows))
	for _, row := range rows {
		rec := ledger.Record{Kind: ledger.RecordKind(row.Kind), Data: row.Data}
		if row.Owner != "" {
			owner, err := solana.PublicKeyFromBase58(row.Owner)
			if err != nil {
				return nil, fmt.Errorf("record %s has bad owner: %w", row.Address, err)
			}
			rec.Owner = owner
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Fund(ctx context.Context, owner types.Identity, amount uint64) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return (&sqlTx{db: db}).credit(ctx, owner, amount)
	})
}

func (s *Store) Balance(ctx context.Context, owner types.Identity) (uint64, error) {
	return (&sqlTx{db: s.db.WithContext(ctx)}).Balance(ctx, owner)
}

func (s *Store) TokenBalance(ctx context.Context, owner types.Identity) (uint64, error) {
	return (&sqlTx{db: s.db.WithContext(ctx)}).TokenBalance(ctx, owner)
}

func (s *Store) TokenSupply(ctx context.Context) (uint64, error) {
	var rows []models.TokenBalance
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return 0, err
	}
	var total uint64
	for _, r := range rows {
		total += r.Amount
	}
	return total, nil
}

// Handle appends a committed event to the audit trail. It is meant to be
// subscribed on the event bus.
func (s *Store) Handle(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event.Type(), err)
	}
	entry := models.AuditEntry{
		EventType:  string(event.Type()),
		OccurredAt: event.Timestamp().UTC(),
		Payload:    string(payload),
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

// AuditTrail returns the newest audit entries first.
func (s *Store) AuditTrail(ctx context.Context, eventType events.EventType, limit, offset int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	q := s.db.WithContext(ctx).Order("id desc").Limit(limit).Offset(offset)
	if eventType != "" {
		q = q.Where("event_type = ?", string(eventType))
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type sqlTx struct {
	db    *gorm.DB
	addrs *types.Addresses
}

func (t *sqlTx) Balance(ctx context.Context, owner types.Identity) (uint64, error) {
	var row models.Balance
	err := t.db.WithContext(ctx).Where("owner = ?", owner.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return row.Lamports, err
}

func (t *sqlTx) TokenBalance(ctx context.Context, owner types.Identity) (uint64, error) {
	var row models.TokenBalance
	err := t.db.WithContext(ctx).Where("owner = ?", owner.String()).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return row.Amount, err
}

func (t *sqlTx) Transfer(ctx context.Context, from, to types.Identity, amount uint64) error {
	have, err := t.Balance(ctx, from)
	if err != nil {
		return err
	}
	if have < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", host.ErrInsufficientFunds, from, have, amount)
	}
	if err := t.setBalance(from, have-amount); err != nil {
		return err
	}
	return t.credit(ctx, to, amount)
}

func (t *sqlTx) credit(ctx context.Context, owner types.Identity, amount uint64) error {
	have, err := t.Balance(ctx, owner)
	if err != nil {
		return err
	}
	next, err := curve.SafeAdd(have, amount)
	if err != nil {
		return err
	}
	return t.setBalance(owner, next)
}

func (t *sqlTx) setBalance(owner types.Identity, lamports uint64) error {
	return t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"lamports", "updated_at"}),
	}).Create(&models.Balance{Owner: owner.String(), Lamports: lamports}).Error
}

func (t *sqlTx) setTokens(owner types.Identity, amount uint64) error {
	return t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&models.TokenBalance{Owner: owner.String(), Amount: amount}).Error
}

func (t *sqlTx) MintTo(ctx context.Context, to types.Identity, amount uint64) error {
	have, err := t.TokenBalance(ctx, to)
	if err != nil {
		return err
	}
	next, err := curve.SafeAdd(have, amount)
	if err != nil {
		return err
	}
	return t.setTokens(to, next)
}

func (t *sqlTx) Burn(ctx context.Context, from types.Identity, amount uint64) error {
	have, err := t.TokenBalance(ctx, from)
	if err != nil {
		return err
	}
	if have < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", host.ErrInsufficientTokens, from, have, amount)
	}
	return t.setTokens(from, have-amount)
}

// SaveState replaces every stored record with the encoding of st.
func (t *sqlTx) SaveState(ctx context.Context, st *ledger.State) error {
	recs, err := ledger.EncodeState(st)
	if err != nil {
		return err
	}
	rows := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		addr, err := r.Address(t.addrs)
		if err != nil {
			return fmt.Errorf("failed to derive %s address: %w", r.Kind, err)
		}
		row := models.Record{Address: addr.String(), Kind: string(r.Kind), Data: r.Data}
		if !r.Owner.IsZero() {
			row.Owner = r.Owner.String()
		}
		rows = append(rows, row)
	}

	db := t.db.WithContext(ctx)
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Record{}).Error; err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}
