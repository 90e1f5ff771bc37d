package phpunit

import (
	"regexp"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/ciplug/internal/config"
)

// Arguments is an ordered multimap of PHPUnit command-line options.
// An empty value stands for a bare flag.
type Arguments struct {
	order  []string
	values map[string][]string
}

// NewArguments creates an empty argument set.
func NewArguments() *Arguments {
	return &Arguments{values: map[string][]string{}}
}

// Add appends value to name. Adding a name twice keeps both values.
func (a *Arguments) Add(name, value string) {
	if _, ok := a.values[name]; !ok {
		a.order = append(a.order, name)
	}
	a.values[name] = append(a.values[name], value)
}

// Remove deletes every value of name.
func (a *Arguments) Remove(name string) {
	if _, ok := a.values[name]; !ok {
		return
	}
	delete(a.values, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i:i], a.order[i+1:]...)
			break
		}
	}
}

// Get returns the values of name.
func (a *Arguments) Get(name string) ([]string, bool) {
	v, ok := a.values[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

// Has reports whether name is set.
func (a *Arguments) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Clone returns a deep copy.
func (a *Arguments) Clone() *Arguments {
	c := &Arguments{
		order:  append([]string(nil), a.order...),
		values: make(map[string][]string, len(a.values)),
	}
	for k, v := range a.values {
		c.values[k] = append([]string(nil), v...)
	}
	return c
}

// String renders the arguments as a command-line fragment. Names get a "--"
// prefix unless they already start with "-"; values are double-quoted and
// repeated names render once per value.
func (a *Arguments) String() string {
	var parts []string
	for _, name := range a.order {
		prefix := "--"
		if strings.HasPrefix(name, "-") {
			prefix = ""
		}
		for _, value := range a.values[name] {
			if value == "" {
				parts = append(parts, prefix+name)
				continue
			}
			parts = append(parts, prefix+name+` "`+strings.ReplaceAll(value, `"`, `\"`)+`"`)
		}
	}
	return strings.Join(parts, " ")
}

// legacyArgPattern matches one option of a legacy argument string:
// --name, --name value, --name=value or a quoted value. A value never
// starts with "--", so "--a --b" is two bare flags.
var legacyArgPattern = regexp.MustCompile(
	`--([A-Za-z][A-Za-z0-9_-]*)(?:[\s=]+(?:"([^"]*)"|'([^']*)'|([^\s"'-][^\s"']*|-[^\s"'-][^\s"']*)))?`)

// ParseLegacyArgs extracts options from a free-form argument string.
// Anything that does not look like an option is ignored.
func ParseLegacyArgs(s string) *Arguments {
	args := NewArguments()
	for _, m := range legacyArgPattern.FindAllStringSubmatch(s, -1) {
		value := m[2] + m[3] + m[4]
		args.Add(m[1], value)
	}
	return args
}

// addMapArgs adds a YAML mapping of options in key order. A null or true
// value is a bare flag, false omits the option, and lists repeat it.
func addMapArgs(args *Arguments, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		switch v := m[name].(type) {
		case nil:
			args.Add(name, "")
		case bool:
			if v {
				args.Add(name, "")
			}
		case []any:
			for _, item := range v {
				args.Add(name, config.Scalar(item))
			}
		default:
			args.Add(name, config.Scalar(v))
		}
	}
}
