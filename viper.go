// FILE: lixenwraith/keyprop/viper.go
package keyprop

import (
	"fmt"

	"github.com/spf13/viper"
)

// ViperSource adapts a *viper.Viper as a Source.
// Reads go through viper on every call, so the source follows viper's own
// precedence (Set, flags, env, config file, key/value store, defaults) and its reloads.
type ViperSource struct {
	v *viper.Viper
}

// NewViperSource wraps v. A nil v wraps viper's global instance.
func NewViperSource(v *viper.Viper) *ViperSource {
	if v == nil {
		v = viper.GetViper()
	}
	return &ViperSource{v: v}
}

// ContainsKey implements Source.
func (s *ViperSource) ContainsKey(key string) bool {
	return s.v.IsSet(key)
}

// Get implements Source. Like MapSource, a section has no value of its own:
// viper returns only the highest layer's map for a section, so Decode gathers
// its leaves through Keys instead.
func (s *ViperSource) Get(key string) (any, bool) {
	if !s.v.IsSet(key) {
		return nil, false
	}
	val := s.v.Get(key)
	if _, isSection := val.(map[string]any); isSection {
		return nil, false
	}
	return val, true
}

// Keys returns every key viper knows, which lets Decode gather sections.
func (s *ViperSource) Keys() []string {
	return s.v.AllKeys()
}

// Viper returns the wrapped instance.
func (s *ViperSource) Viper() *viper.Viper { return s.v }

func (s *ViperSource) String() string {
	return fmt.Sprintf("ViperSource(%d keys)", len(s.v.AllKeys()))
}
