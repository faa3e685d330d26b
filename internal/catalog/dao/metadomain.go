// Package dao implements dbmodel's catalog interfaces against *gorm.DB, grounded on
// go/pkg/sysdb/metastore/db/dao in the teacher.
package dao

import (
	"context"

	"github.com/catalogdb/renamecoll/internal/catalog/dbcore"
	"github.com/catalogdb/renamecoll/internal/catalog/dbmodel"
	"gorm.io/gorm"
)

// MetaDomain wires each per-table dao against the transaction-scoped *gorm.DB stashed in ctx
// by dbcore, mirroring dao.NewMetaDomain in the teacher.
type MetaDomain struct {
	fallback *gorm.DB
}

func NewMetaDomain(fallback *gorm.DB) *MetaDomain {
	return &MetaDomain{fallback: fallback}
}

func (m *MetaDomain) dbFor(ctx context.Context) *gorm.DB {
	return dbcore.FromCtx(ctx, m.fallback)
}

func (m *MetaDomain) DatabaseDb(ctx context.Context) dbmodel.IDatabaseDb {
	return NewDatabaseDb(m.dbFor(ctx))
}

func (m *MetaDomain) CollectionDb(ctx context.Context) dbmodel.ICollectionDb {
	return NewCollectionDb(m.dbFor(ctx))
}

func (m *MetaDomain) IndexDb(ctx context.Context) dbmodel.IIndexDb {
	return NewIndexDb(m.dbFor(ctx))
}

func (m *MetaDomain) DocumentDb(ctx context.Context) dbmodel.IDocumentDb {
	return NewDocumentDb(m.dbFor(ctx))
}

func (m *MetaDomain) NamespaceLockDb(ctx context.Context) dbmodel.INamespaceLockDb {
	return NewNamespaceLockDb(m.dbFor(ctx))
}
