package mainctx

import (
	"sync/atomic"
)

// baseSource holds the fields common to every Source this package implements: a debug name, a dispatch priority, and
// the "has this been attached yet" flag that freezes SetName/SetPriority per spec.md §4.1.
type baseSource struct {
	name     atomic.Value // string
	priority atomic.Int32
	attached atomic.Bool
}

// Name implements [types.Source.Name].
func (b *baseSource) Name() string {
	if v, ok := b.name.Load().(string); ok {
		return v
	}

	return ""
}

// SetName implements [types.Source.SetName].
func (b *baseSource) SetName(name string) {
	if b.attached.Load() {
		return
	}
	b.name.Store(name)
}

// Priority implements [types.Source.Priority].
func (b *baseSource) Priority() int32 {
	return b.priority.Load()
}

// SetPriority implements [types.Source.SetPriority].
func (b *baseSource) SetPriority(priority int32) {
	if b.attached.Load() {
		return
	}
	b.priority.Store(priority)
}

// markAttached implements the unexported markable interface Context.Attach uses.
func (b *baseSource) markAttached() {
	b.attached.Store(true)
}
