package namespace

import "github.com/catalogdb/renamecoll/internal/catalog/types"

// RenameOptions is spec.md §3's RenameOptions.
type RenameOptions struct {
	// DropTarget means "if a target collection exists, drop it rather than failing".
	DropTarget bool
	// StayTemp means "preserve the temp flag on the renamed collection".
	StayTemp bool
}

// ApplyOpsContext is present only in replay mode (spec.md §3).
type ApplyOpsContext struct {
	UUIDToDrop   types.OptionalCollectionID
	RenameOpTime types.OptionalLogPosition
}
