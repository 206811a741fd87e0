package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ProjectsDir string `mapstructure:"projects_dir" yaml:"projects_dir"`
	// StandardsFile overlays the built-in limits with a YAML file.
	StandardsFile string `mapstructure:"standards_file" yaml:"standards_file,omitempty"`
	Workers       int    `mapstructure:"workers" yaml:"workers" validate:"gte=0,lte=256"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	ReportFormat string `mapstructure:"report_format" yaml:"report_format" validate:"oneof=markdown json xlsx"`

	// Numeric locale for sample sheets; empty auto-detects.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator,omitempty" validate:"omitempty,len=1,nefield=ThousandsSeparator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator,omitempty" validate:"omitempty,len=1"`

	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name,omitempty"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index" validate:"gte=1"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"projects_dir", "standards_file", "workers", "log_level", "log_format", "report_format",
	"decimal_separator", "thousands_separator", "sheet_name", "sheet_index",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", 0)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("report_format", "markdown")
	v.SetDefault("sheet_index", 1)
}

// Dir returns ~/.waterlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".waterlens"), nil
}

// Path resolves the config file: cfgFile if set, else ~/.waterlens/config.yaml.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.waterlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("WATERLENS")
	v.AutomaticEnv()
	setDefaults(v)
	// AutomaticEnv only sees keys viper already knows about
	for _, k := range Keys {
		_ = v.BindEnv(k)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(cfgFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve projects_dir default: ~/.waterlens/projects
	if c.ProjectsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
	c.ReportFormat = strings.ToLower(c.ReportFormat)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Set assigns one key from its string form.
func (c *Global) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "projects_dir":
		c.ProjectsDir = value
	case "standards_file":
		c.StandardsFile = value
	case "workers":
		n, err := atoi(key, value)
		if err != nil {
			return err
		}
		c.Workers = n
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		c.LogFormat = strings.ToLower(value)
	case "report_format":
		c.ReportFormat = strings.ToLower(value)
	case "decimal_separator":
		c.DecimalSeparator = value
	case "thousands_separator":
		c.ThousandsSeparator = value
	case "sheet_name":
		c.SheetName = value
	case "sheet_index":
		n, err := atoi(key, value)
		if err != nil {
			return err
		}
		c.SheetIndex = n
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return c.Validate()
}

// Get returns one key in its string form.
func (c *Global) Get(key string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "projects_dir":
		return c.ProjectsDir, true
	case "standards_file":
		return c.StandardsFile, true
	case "workers":
		return strconv.Itoa(c.Workers), true
	case "log_level":
		return c.LogLevel, true
	case "log_format":
		return c.LogFormat, true
	case "report_format":
		return c.ReportFormat, true
	case "decimal_separator":
		return c.DecimalSeparator, true
	case "thousands_separator":
		return c.ThousandsSeparator, true
	case "sheet_name":
		return c.SheetName, true
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex), true
	}
	return "", false
}

func atoi(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

// Separator returns the first rune of a separator setting, or 0.
func Separator(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
