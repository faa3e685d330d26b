package namespace

import "github.com/catalogdb/renamecoll/internal/catalog/types"

// BackgroundOpsRegistry is the collaborator interface from spec.md §6: callers are
// responsible for quiescing background operations and index builds before calling into this
// package; AssertNoBgOpInProgForNs/AssertNoIndexBuildInProgForCollection are the fatal,
// programming-error-level assertions spec.md §4.A check 6 and §4.D step 3 describe, not
// retryable conditions.
type BackgroundOpsRegistry interface {
	AssertNoBgOpInProgForNs(ns types.Namespace) error
	AssertNoIndexBuildInProgForCollection(id types.CollectionID) error
}

// NoBackgroundOps is the stand-in used when an embedder has no background-operation machinery
// of its own (e.g. in tests): its assertions always succeed.
type NoBackgroundOps struct{}

func (NoBackgroundOps) AssertNoBgOpInProgForNs(types.Namespace) error                  { return nil }
func (NoBackgroundOps) AssertNoIndexBuildInProgForCollection(types.CollectionID) error { return nil }
