package phpunit

import (
	"github.com/AndreyAkinshin/ciplug/internal/config"
)

// Options negotiates the PHPUnit command line from the plugin options.
//
// Arguments are derived once, on first use, from three sources: the "args"
// option (a mapping or a legacy string), the "coverage" switch, and the
// "config" shorthand. Later AddArgument and RemoveArgument calls edit the
// derived set in place; derivation never runs again.
type Options struct {
	opts            config.PluginOptions
	location        string
	publicArtifacts bool

	args *Arguments
}

// NewOptions creates the negotiator. location is the coverage HTML
// directory, used only when publicArtifacts is set.
func NewOptions(opts config.PluginOptions, location string, publicArtifacts bool) *Options {
	if opts == nil {
		opts = config.PluginOptions{}
	}
	return &Options{
		opts:            opts,
		location:        location,
		publicArtifacts: publicArtifacts,
	}
}

// Derive builds the argument set described by opts.
func Derive(opts config.PluginOptions, location string, publicArtifacts bool) *Arguments {
	args := NewArguments()

	if m, ok := opts.Map("args"); ok {
		addMapArgs(args, m)
	} else if legacy, ok := opts.Get("args", nil).(string); ok {
		args = ParseLegacyArgs(legacy)
	}

	if opts.Bool("coverage", false) {
		args.Add("coverage-text", "")
		if publicArtifacts {
			args.Add("coverage-html", location)
		}
	}

	for _, cfg := range opts.Strings("config") {
		args.Add("configuration", cfg)
	}

	return args
}

func (o *Options) arguments() *Arguments {
	if o.args == nil {
		o.args = Derive(o.opts, o.location, o.publicArtifacts)
	}
	return o.args
}

// Arguments returns a copy of the negotiated arguments.
func (o *Options) Arguments() *Arguments {
	return o.arguments().Clone()
}

// Argument returns the values of one argument.
func (o *Options) Argument(name string) []string {
	v, _ := o.arguments().Get(name)
	return v
}

// AddArgument appends an argument. A repeated name keeps every value.
func (o *Options) AddArgument(name, value string) {
	o.arguments().Add(name, value)
}

// RemoveArgument deletes every value of an argument.
func (o *Options) RemoveArgument(name string) {
	o.arguments().Remove(name)
}

// ArgumentString renders the arguments for the command line.
func (o *Options) ArgumentString() string {
	return o.arguments().String()
}

// Clone returns an independent copy, including any edits made so far.
func (o *Options) Clone() *Options {
	c := *o
	if o.args != nil {
		c.args = o.args.Clone()
	}
	return &c
}

// Coverage reports whether coverage collection is enabled.
func (o *Options) Coverage() bool {
	return o.opts.Bool("coverage", false)
}

// Location returns the coverage HTML directory.
func (o *Options) Location() string {
	return o.location
}

// Directories returns the test directories to run, one sub-run each.
// "directories" takes precedence over "directory".
func (o *Options) Directories() []string {
	if o.opts.Has("directories") {
		return o.opts.Strings("directories")
	}
	return o.opts.Strings("directory")
}

// TestsPath returns the test path passed to config-file runs.
func (o *Options) TestsPath() string {
	return o.opts.String("path", "")
}

// RunFrom returns the directory, relative to the build root, PHPUnit runs in.
func (o *Options) RunFrom() string {
	return o.opts.String("run_from", "")
}

// ConfigFiles returns the configuration files to run, one sub-run each:
// the explicit "configuration" arguments, or else the first conventional
// config file found under root.
func (o *Options) ConfigFiles(root string) []string {
	if files := o.Argument("configuration"); len(files) > 0 {
		return files
	}
	if root == "" {
		return nil
	}
	if f := FindConfigFile(root); f != "" {
		return []string{f}
	}
	return nil
}
