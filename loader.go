// FILE: lixenwraith/keyprop/loader.go
package keyprop

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported file formats
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatEnv  = "env"
)

// LoadFile reads a configuration file into a flattened MapSource named after path.
// The format is taken from the extension and, failing that, detected from content.
// A missing file fails with ErrSourceNotFound.
func LoadFile(path string) (*MapSource, error) {
	data, err := readLimited(path)
	if err != nil {
		return nil, err
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	values, err := parseFile(path, format, data)
	if err != nil {
		return nil, err
	}
	return NewMapSource(path, values), nil
}

// LoadFileFormat is LoadFile with an explicit format, skipping detection.
func LoadFileFormat(path, format string) (*MapSource, error) {
	data, err := readLimited(path)
	if err != nil {
		return nil, err
	}
	values, err := parseFile(path, format, data)
	if err != nil {
		return nil, err
	}
	return NewMapSource(path, values), nil
}

// readLimited reads at most MaxFileSize bytes of path.
func readLimited(path string) ([]byte, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("config path '%s' is a directory", path)
	}
	if fileInfo.Size() > MaxFileSize {
		return nil, fmt.Errorf("config file '%s' exceeds maximum size %d bytes", path, MaxFileSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return data, nil
}

// parseFile hands data to the decoder for format.
func parseFile(path, format string, data []byte) (map[string]any, error) {
	fileConfig := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	case FormatEnv:
		env, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse dotenv file '%s': %w", path, err)
		}
		for k, v := range env {
			fileConfig[k] = v
		}
	default:
		return nil, fmt.Errorf("%w: file '%s'", ErrUnknownFormat, path)
	}
	return fileConfig, nil
}

// LoadEnv snapshots environment variables starting with prefix.
// The prefix and a following underscore are stripped, the rest is lowercased
// and underscores become dots: with prefix "APP", APP_SERVER_PORT is "server.port".
// Values larger than MaxValueSize are skipped.
func LoadEnv(prefix string) *MapSource {
	values := make(map[string]any)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}

		path := envPath(strings.TrimPrefix(name, prefix))
		if path == "" {
			continue
		}
		if len(value) > MaxValueSize {
			Logger().Warn().Str("env", name).Int("size", len(value)).Msg("environment value exceeds size limit, skipped")
			continue
		}
		values[path] = value
	}

	name := "env"
	if prefix != "" {
		name = "env:" + prefix
	}
	return newFlatSource(name, values)
}

// envPath converts the unprefixed part of an environment variable name to a key.
func envPath(rest string) string {
	rest = strings.Trim(rest, "_")
	return strings.ToLower(strings.ReplaceAll(rest, "_", "."))
}

// EnvName returns the environment variable LoadEnv maps to key under prefix.
func EnvName(prefix, key string) string {
	env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix == "" {
		return env
	}
	if strings.HasSuffix(prefix, "_") {
		return prefix + env
	}
	return prefix + "_" + env
}

// LoadArgs parses --key=value, --key value and --flag arguments into a MapSource.
// Non-flag arguments and a bare "--" are skipped. Values are kept as strings.
func LoadArgs(args []string) (*MapSource, error) {
	parsed, err := parseArgs(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgsParse, err)
	}
	return NewMapSource("cli", parsed), nil
}

// SaveFile writes src as TOML to path atomically: a sibling temp file is synced and
// renamed over path, so readers never observe a partial document.
func SaveFile(path string, src *MapSource) error {
	var buf bytes.Buffer
	if err := src.Dump(&buf); err != nil {
		return err
	}
	if err := atomicWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("save source %q: %w", src.Name(), err)
	}
	Logger().Debug().Str("path", path).Str("source", src.Name()).Int("keys", src.Len()).Msg("source saved")
	return nil
}

func atomicWriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %q: %w", dir, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %q: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %q: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}

// parseArgs processes command-line arguments into a nested map structure.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// "--" separator
			i++
			continue
		}

		var keyPath, valueStr string
		if k, v, found := strings.Cut(argContent, "="); found {
			keyPath, valueStr = k, v
			i++
		} else {
			keyPath = argContent
			// Boolean flag when the next arg is another flag or there is none
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			continue
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		setNestedValue(result, keyPath, valueStr)
	}

	return result, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	base := strings.ToLower(filepath.Base(path))
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return FormatEnv
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".env":
		return FormatEnv
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first, YAML accepts most JSON documents
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil && yamlTest != nil {
		return FormatYAML
	}

	return ""
}
