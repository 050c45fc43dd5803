// Package settings reads profile-specific settings documents.
//
// A profile named "custom" is read from settings.custom.json (or .yaml/.yml)
// in the settings directory. Without a profile file the plain settings.json is
// used, and without that the defaults embedded in this package. Values are
// addressed by dot paths such as "logger.language"; an environment variable
// named after the upper-snake form of the path (LOGGER_LANGUAGE) overrides the
// document value.
package settings

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ErrSettingNotFound is returned when a path is absent from the document and the environment
var ErrSettingNotFound = errors.New("setting not found")

//go:embed resources/settings.json
var resources embed.FS

const defaultSource = "embedded:settings.json"

// File is a read-only settings document
type File interface {
	Value(path string) (any, error)
	ValueOrDefault(path string, def any) any
	String(path string) (string, error)
	Int(path string) (int, error)
	Bool(path string) (bool, error)
	// Duration reads a number expressed in unit
	Duration(path string, unit time.Duration) (time.Duration, error)
	List(path string) ([]string, error)
	Map(path string) (map[string]any, error)
	IsPresent(path string) bool
	// Source names the document the values came from
	Source() string
}

// JSONFile is a File backed by a JSON document
type JSONFile struct {
	data      []byte
	source    string
	lookupEnv func(string) (string, bool)
}

var _ File = (*JSONFile)(nil)

// Parse wraps raw JSON. Environment overrides are read with os.LookupEnv.
func Parse(data []byte, source string) (*JSONFile, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing %s: invalid JSON", source)
	}
	return &JSONFile{data: data, source: source, lookupEnv: os.LookupEnv}, nil
}

// Defaults returns the embedded default settings
func Defaults() *JSONFile {
	data, err := resources.ReadFile("resources/settings.json")
	if err != nil {
		panic(fmt.Sprintf("embedded settings missing: %v", err))
	}
	f, err := Parse(data, defaultSource)
	if err != nil {
		panic(err)
	}
	return f
}

// Load reads the settings for profile from dir on the OS filesystem
func Load(dir, profile string) (*JSONFile, error) {
	return LoadFS(afero.NewOsFs(), dir, profile)
}

// LoadFS reads the settings for profile from dir on fs
func LoadFS(fs afero.Fs, dir, profile string) (*JSONFile, error) {
	for _, name := range candidates(profile) {
		path := filepath.Join(dir, name)
		ok, err := afero.Exists(fs, path)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		if !ok {
			continue
		}

		raw, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
			raw, err = yamlToJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		}
		return Parse(raw, path)
	}
	return Defaults(), nil
}

// WithEnv returns a copy of f that resolves overrides through lookup
func (f *JSONFile) WithEnv(lookup func(string) (string, bool)) *JSONFile {
	cp := *f
	cp.lookupEnv = lookup
	return &cp
}

func (f *JSONFile) Source() string {
	return f.source
}

// EnvKey is the environment variable that overrides path
func EnvKey(path string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(path))
}

func (f *JSONFile) env(path string) (string, bool) {
	if f.lookupEnv == nil {
		return "", false
	}
	return f.lookupEnv(EnvKey(path))
}

func (f *JSONFile) result(path string) (gjson.Result, error) {
	r := gjson.GetBytes(f.data, path)
	if !r.Exists() {
		return r, fmt.Errorf("%s in %s: %w", path, f.source, ErrSettingNotFound)
	}
	return r, nil
}

func (f *JSONFile) Value(path string) (any, error) {
	if v, ok := f.env(path); ok {
		return v, nil
	}
	r, err := f.result(path)
	if err != nil {
		return nil, err
	}
	return r.Value(), nil
}

func (f *JSONFile) ValueOrDefault(path string, def any) any {
	v, err := f.Value(path)
	if err != nil {
		return def
	}
	return v
}

func (f *JSONFile) String(path string) (string, error) {
	if v, ok := f.env(path); ok {
		return v, nil
	}
	r, err := f.result(path)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func (f *JSONFile) Int(path string) (int, error) {
	if v, ok := f.env(path); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s from environment: %w", path, err)
		}
		return n, nil
	}
	r, err := f.result(path)
	if err != nil {
		return 0, err
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("%s in %s is %s, not a number", path, f.source, r.Type)
	}
	return int(r.Int()), nil
}

func (f *JSONFile) Bool(path string) (bool, error) {
	if v, ok := f.env(path); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s from environment: %w", path, err)
		}
		return b, nil
	}
	r, err := f.result(path)
	if err != nil {
		return false, err
	}
	if !r.IsBool() {
		return false, fmt.Errorf("%s in %s is %s, not a boolean", path, f.source, r.Type)
	}
	return r.Bool(), nil
}

func (f *JSONFile) Duration(path string, unit time.Duration) (time.Duration, error) {
	n, err := f.Int(path)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * unit, nil
}

// List reads an array; an environment override is a comma separated list
func (f *JSONFile) List(path string) ([]string, error) {
	if v, ok := f.env(path); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
	r, err := f.result(path)
	if err != nil {
		return nil, err
	}
	if !r.IsArray() {
		return nil, fmt.Errorf("%s in %s is not a list", path, f.source)
	}
	items := r.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out, nil
}

// Map reads an object. Each key may be overridden individually through the environment.
func (f *JSONFile) Map(path string) (map[string]any, error) {
	r, err := f.result(path)
	if err != nil {
		return nil, err
	}
	if !r.IsObject() {
		return nil, fmt.Errorf("%s in %s is not an object", path, f.source)
	}
	out := make(map[string]any)
	r.ForEach(func(key, value gjson.Result) bool {
		if v, ok := f.env(path + "." + key.String()); ok {
			out[key.String()] = v
		} else {
			out[key.String()] = value.Value()
		}
		return true
	})
	return out, nil
}

func (f *JSONFile) IsPresent(path string) bool {
	if _, ok := f.env(path); ok {
		return true
	}
	return gjson.GetBytes(f.data, path).Exists()
}

func candidates(profile string) []string {
	var names []string
	if profile != "" {
		names = append(names,
			fmt.Sprintf("settings.%s.json", profile),
			fmt.Sprintf("settings.%s.yaml", profile),
			fmt.Sprintf("settings.%s.yml", profile),
		)
	}
	return append(names, "settings.json")
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}
