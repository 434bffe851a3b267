// File: lixenwraith/keyprop/doc.go

// Package keyprop resolves typed configuration values for named keys against an
// ordered chain of sources: files (TOML, JSON, YAML, dotenv), environment
// variables, command-line arguments, viper instances, or any Source implementation.
//
// Features:
//   - First-wins resolution across sources with short-circuiting
//   - Per-source conversion failures degrade to "not found here" instead of failing
//   - Default fallback, or ErrNotFound when no source produces a value
//   - Optional per-source memoization with a bounded FIFO table
//   - Derived properties via Map, lists, sets and case-insensitive enums
//   - Hot reload through Supplier, CachingSupplier and FileSupplier.Watch
//   - Structured logging through zerolog, silent by default
//
// Quick Start:
//
//	timeout := keyprop.OfIntDefault("server.timeout", 30).
//	    WithCachable(true).
//	    MustKeyDefaultProperty()
//
//	file, err := keyprop.LoadFile("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env := keyprop.LoadEnv("MYAPP")
//
//	// env wins over the file; a non-numeric env value falls through to the file
//	secs, err := timeout.Resolve(env, file)
//
// Precedence is the order of the sources passed to Resolve, leftmost first.
//
// Caching:
// Cachable properties memoize by Source identity, never by content. After the
// configuration behind a source is reloaded, call Purge on the property or
// resolve against a freshly loaded source.
//
// Thread Safety:
// Properties are immutable after construction and safe for concurrent use.
// Cache state is guarded by a per-property read-write mutex.
package keyprop
