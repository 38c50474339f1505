package options

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/richinsley/goprocedural/shader"
	"gopkg.in/yaml.v3"
)

// DefaultDescriptor is shown when no descriptor file is given.
const DefaultDescriptor = `{"version": 1, "shaderUrl": "qrc:///shaders/rainbow.frag", "uniforms": {"speed": 1.0}}`

type Options struct {
	Descriptor  *string
	ConfigFile  *string
	Width       *int
	Height      *int
	Dialect     *string
	Transparent *bool
	Spin        *bool
	Disabled    *bool    // start with procedural shading turned off
	FadeSeconds *float64 // how long a material grows in once ready
	Help        *bool
}

// fileConfig is the YAML form of Options. Flags given on the command line win
// over values from the file.
type fileConfig struct {
	Descriptor  *string  `yaml:"descriptor"`
	Width       *int     `yaml:"width"`
	Height      *int     `yaml:"height"`
	Dialect     *string  `yaml:"dialect"`
	Transparent *bool    `yaml:"transparent"`
	Spin        *bool    `yaml:"spin"`
	Disabled    *bool    `yaml:"disabled"`
	FadeSeconds *float64 `yaml:"fadeSeconds"`
}

// Parse reads flags from args and merges the config file they name.
func Parse(fs *flag.FlagSet, args []string) (*Options, error) {
	o := &Options{
		Descriptor:  fs.String("descriptor", "", "Path to a procedural descriptor JSON file (hot reloaded)"),
		ConfigFile:  fs.String("config", "", "Path to a YAML config file"),
		Width:       fs.Int("width", 1280, "Window width"),
		Height:      fs.Int("height", 720, "Window height"),
		Dialect:     fs.String("dialect", "glsl410", "Shader dialect to compile: glsl410 or glsles300 (translated)"),
		Transparent: fs.Bool("transparent", false, "Draw with the translucent pipeline"),
		Spin:        fs.Bool("spin", true, "Rotate the quad"),
		Disabled:    fs.Bool("disabled", false, "Start with procedural shaders disabled (toggle with P)"),
		FadeSeconds: fs.Float64("fade", 1.0, "Fade-in duration in seconds once the material is ready"),
		Help:        fs.Bool("help", false, "Show help message"),
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *o.ConfigFile == "" {
		return o, o.validate()
	}

	data, err := os.ReadFile(*o.ConfigFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", *o.ConfigFile)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", *o.ConfigFile)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	merge(set["descriptor"], o.Descriptor, cfg.Descriptor)
	merge(set["width"], o.Width, cfg.Width)
	merge(set["height"], o.Height, cfg.Height)
	merge(set["dialect"], o.Dialect, cfg.Dialect)
	merge(set["transparent"], o.Transparent, cfg.Transparent)
	merge(set["spin"], o.Spin, cfg.Spin)
	merge(set["disabled"], o.Disabled, cfg.Disabled)
	merge(set["fade"], o.FadeSeconds, cfg.FadeSeconds)
	return o, o.validate()
}

func merge[T any](onCommandLine bool, dst, src *T) {
	if !onCommandLine && src != nil {
		*dst = *src
	}
}

func (o *Options) validate() error {
	if *o.Width <= 0 || *o.Height <= 0 {
		return errors.Errorf("invalid window size %dx%d", *o.Width, *o.Height)
	}
	if _, err := o.ShaderDialect(); err != nil {
		return err
	}
	return nil
}

// ShaderDialect maps the dialect option to a shader dialect.
func (o *Options) ShaderDialect() (shader.Dialect, error) {
	for _, d := range shader.AllDialects {
		if d.String() == *o.Dialect {
			return d, nil
		}
	}
	return 0, errors.Errorf("unknown dialect %q", *o.Dialect)
}
