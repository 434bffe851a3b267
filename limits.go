// FILE: lixenwraith/keyprop/limits.go
package keyprop

import "time"

// Core limits for property caching and list parsing.
const (
	DefaultMaxCacheSize = 128 // Per-property FIFO memo bound
	ListDelim           = ";" // Default delimiter set for OfList, OfSet and OfEnums
)

// Timing constants for file watching.
const (
	MinDebounce     = 10 * time.Millisecond  // Hard floor for event coalescence
	DefaultDebounce = 500 * time.Millisecond // File change coalescence period
)

// Size limits applied to loaded sources.
const (
	MaxValueSize    = 1 << 20  // Largest accepted env or CLI value
	MaxFileSize     = 10 << 20 // Largest accepted configuration file
	watchBufferSize = 10       // Buffered change notifications per watcher
)
