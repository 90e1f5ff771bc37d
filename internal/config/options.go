package config

import (
	"fmt"
	"strconv"
)

// PluginOptions is the raw option block of a single plugin.
type PluginOptions map[string]any

// Has reports whether key is set.
func (o PluginOptions) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Get returns the value of key, or def when key is not set.
func (o PluginOptions) Get(key string, def any) any {
	if v, ok := o[key]; ok {
		return v
	}
	return def
}

// String returns key as a string. Numbers and booleans are formatted.
func (o PluginOptions) String(key, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	return Scalar(v)
}

// Bool returns key as a boolean. Strings are parsed with strconv.ParseBool;
// anything unparseable yields def.
func (o PluginOptions) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	case int:
		return v != 0
	default:
		return def
	}
}

// Strings returns key as a list. A single scalar becomes a one-element list.
func (o PluginOptions) Strings(key string) []string {
	switch v := o[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item != nil {
				out = append(out, Scalar(item))
			}
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{Scalar(v)}
	}
}

// Map returns key as a mapping. yaml.v3 decodes nested mappings of a
// PluginOptions as PluginOptions, so both forms are accepted.
func (o PluginOptions) Map(key string) (map[string]any, bool) {
	switch v := o[key].(type) {
	case PluginOptions:
		return map[string]any(v), true
	case map[string]any:
		return v, true
	default:
		return nil, false
	}
}

// Clone returns a shallow copy of the options.
func (o PluginOptions) Clone() PluginOptions {
	c := make(PluginOptions, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

// Scalar formats a YAML scalar as a string.
func Scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
