package namespace

import "github.com/catalogdb/renamecoll/internal/catalog/types"

// ShardingState is the collaborator interface from spec.md §6: isSharded(ns) for both
// databases and collections. There is no real sharded cluster in this rewrite (SPEC_FULL.md
// §11.5), so InMemoryShardingState is a trivial single-primary stand-in an embedder can
// replace with a real shard registry client.
type ShardingState interface {
	IsSharded(ns types.Namespace) bool
}

// InMemoryShardingState tracks a set of namespaces explicitly marked sharded, e.g. for tests
// that need to exercise spec.md §4.A check 2/7 ("source is not sharded").
type InMemoryShardingState struct {
	sharded map[string]bool
}

func NewInMemoryShardingState() *InMemoryShardingState {
	return &InMemoryShardingState{sharded: map[string]bool{}}
}

func (s *InMemoryShardingState) MarkSharded(ns types.Namespace) {
	s.sharded[ns.ResourceID()] = true
}

func (s *InMemoryShardingState) IsSharded(ns types.Namespace) bool {
	return s.sharded[ns.ResourceID()]
}
