// FILE: lixenwraith/keyprop/log.go
package keyprop

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	pkgLogger.Store(&nop)
}

// SetLogger replaces the package logger. The default discards everything.
// Swallowed conversion failures and cache evictions are logged at debug level,
// unknown enum names at error level and failed acquisitions at warn level.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

// Logger returns the package logger.
func Logger() *zerolog.Logger {
	return pkgLogger.Load()
}
