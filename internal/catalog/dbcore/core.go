// Package dbcore holds the Postgres connection and ctx-scoped transaction plumbing, adapted
// from dbcore/core.go in the teacher.
package dbcore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/catalogdb/renamecoll/internal/logging"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type DBConfig struct {
	Username     string
	Password     string
	Address      string
	Port         int
	DBName       string
	SslMode      string
	MaxIdleConns int
	MaxOpenConns int
}

func ConnectPostgres(cfg DBConfig) (*gorm.DB, error) {
	logging.Info("connecting to postgres",
		logging.String("host", cfg.Address),
		logging.String("database", cfg.DBName))

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Address, cfg.Username, cfg.Password, cfg.DBName, cfg.Port, cfg.SslMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logging.Error("failed to connect to postgres", logging.Err(err))
		return nil, err
	}

	if err := db.Use(tracing.NewPlugin()); err != nil {
		logging.Error("failed to attach tracing plugin", logging.Err(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

type ctxTransactionKey struct{}

// WithTx stashes the active *gorm.DB transaction handle on the context so dao implementations
// constructed from the same *gorm.DB pick it up transparently (dbcore.core.go's pattern).
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTransactionKey{}, tx)
}

// FromCtx returns the transaction-scoped *gorm.DB stashed by WithTx, or fallback if none is
// present (a read running outside any write unit).
func FromCtx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	iface := ctx.Value(ctxTransactionKey{})
	if iface == nil {
		return fallback
	}
	tx, ok := iface.(*gorm.DB)
	if !ok {
		logging.Error("unexpected context value type", zap.String("type", reflect.TypeOf(iface).String()))
		return fallback
	}
	return tx.WithContext(ctx)
}

// TxImpl is the write-unit primitive (spec.md §6 "Write unit: begin, commit (rollback on
// destruction without commit)"), implemented as a GORM transaction.
type TxImpl struct {
	DB *gorm.DB
}

func NewTxImpl(db *gorm.DB) *TxImpl {
	return &TxImpl{DB: db}
}

func (t *TxImpl) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	db := t.DB.WithContext(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
