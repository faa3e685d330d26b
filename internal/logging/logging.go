// Package logging is the structured-logging entry point used by internal/namespace and by
// internal/catalog's dao and dbcore packages, wrapping pingcap/log the way table_catalog.go does.
package logging

import (
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

// Field re-exports are kept in this package so callers only need one import for the common
// cases used across the rename components.
func String(key, val string) zap.Field { return zap.String(key, val) }
func Err(err error) zap.Field          { return zap.Error(err) }
func Bool(key string, val bool) zap.Field { return zap.Bool(key, val) }
func Int(key string, val int) zap.Field   { return zap.Int(key, val) }
