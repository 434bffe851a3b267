// FILE: lixenwraith/keyprop/decode.go
package keyprop

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Decode converts the value stored for key into T using mapstructure with weak typing.
// Keys below key (e.g. "db.host" under "db") are gathered into a map, so whole
// sections decode into structs. Struct fields map through "toml" tags.
func Decode[T any](src Source, key string) (T, error) {
	var target T

	val, err := lookup(src, key)
	if err != nil {
		section, ok := gatherSection(src, key)
		if !ok {
			return target, err
		}
		val = section
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return target, fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(val); err != nil {
		var zero T
		return zero, conversionError(key, fmt.Sprintf("%T", zero), val, err)
	}
	return target, nil
}

// gatherSection collects all keys nested below prefix into a map.
// Only sources that can enumerate keys support sections.
func gatherSection(src Source, prefix string) (map[string]any, bool) {
	section := make(map[string]any)
	for _, k := range KeysUnder(src, prefix) {
		rel, nested := strings.CutPrefix(k, prefix+".")
		if !nested {
			continue
		}
		if v, found := src.Get(k); found {
			setNestedValue(section, rel, v)
		}
	}
	return section, len(section) > 0
}

// decodeHook chains the network parsers ahead of mapstructure's own string hooks.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		parseHook(45, parseIP),
		parseHook(49, parseCIDR),
		parseHook(2048, parseURL),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// parseHook decodes a string into T, or *T when the target field is a pointer.
// Strings longer than maxLen are rejected before parsing.
func parseHook[T any](maxLen int, parse func(string) (T, error)) mapstructure.DecodeHookFuncType {
	want := reflect.TypeFor[T]()
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		ptr := to.Kind() == reflect.Pointer && to.Elem() == want
		if to != want && !ptr {
			return data, nil
		}

		s := reflect.ValueOf(data).String()
		if len(s) > maxLen {
			return nil, fmt.Errorf("%s: %d bytes exceeds limit %d", want, len(s), maxLen)
		}
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		if ptr {
			return &v, nil
		}
		return v, nil
	}
}

func parseIP(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", s)
	}
	return ip, nil
}

func parseCIDR(s string) (net.IPNet, error) {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return net.IPNet{}, err
	}
	return *ipnet, nil
}

func parseURL(s string) (url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return url.URL{}, err
	}
	return *u, nil
}
