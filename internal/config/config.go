// Package config handles configuration file parsing and hot-reloading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/cohesivestack/valgo"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/digest"
	"github.com/johan-st/toolbox/internal/namegen"
	"github.com/johan-st/toolbox/internal/valgoutil"
	"github.com/johan-st/toolbox/internal/vocab"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TOOLBOX_LOG_LEVEL.
const EnvPrefix = "TOOLBOX_"

// ErrInvalidConfig is returned by Load and Reload when a value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration.
type Config struct {
	Name     string `yaml:"name" env:"NAME"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	DataDir  string `yaml:"data_dir" env:"DATA_DIR"`

	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Word lists for the name generator; empty means built-in
	Vocabulary VocabularyConfig `yaml:"vocabulary" envPrefix:"VOCAB_"`

	// Form defaults
	Generator GeneratorConfig `yaml:"generator" envPrefix:"GENERATOR_"`
	Hash      HashConfig      `yaml:"hash" envPrefix:"HASH_"`

	// Anonymous access level (none, use, files)
	AnonymousAccess string `yaml:"anonymous_access" env:"ANONYMOUS_ACCESS"`

	// Allow keyless SSH connections
	AllowKeyless bool `yaml:"allow_keyless" env:"ALLOW_KEYLESS"`

	// Users and their access rules
	Users []User `yaml:"users"`

	// Rules that apply to every session, signed in or not
	Public []AccessRule `yaml:"public"`

	// Internal: path to the config file
	path string

	mu sync.RWMutex
}

// User is a known SSH user. Admins may do anything; everyone else gets the
// highest level among the matching rules.
type User struct {
	Name       string       `yaml:"name"`
	Admin      bool         `yaml:"admin"`
	PublicKeys []string     `yaml:"public_keys"`
	Access     []AccessRule `yaml:"access"`
}

// AccessRule grants Level on applets whose path matches the glob Pattern,
// e.g. "generator/*".
type AccessRule struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
}

func (r AccessRule) validation() *valgo.Validation {
	return valgo.Is(
		valgo.String(r.Pattern, "pattern").Not().Blank(),
		levelValidator(r.Level, "level"),
	)
}

// ServerConfig contains server-related configuration.
type ServerConfig struct {
	SSH SSHConfig `yaml:"ssh" envPrefix:"SSH_"`
}

// SSHConfig contains SSH server configuration.
type SSHConfig struct {
	Listen      string `yaml:"listen" env:"LISTEN"`
	HostKeyPath string `yaml:"host_key_path" env:"HOST_KEY_PATH"`
	IdleTimeout string `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	MaxTimeout  string `yaml:"max_timeout" env:"MAX_TIMEOUT"`
}

// VocabularyConfig points at replacement word lists. Paths may be globs.
type VocabularyConfig struct {
	Animals    string `yaml:"animals" env:"ANIMALS"`
	Adjectives string `yaml:"adjectives" env:"ADJECTIVES"`
}

// GeneratorConfig holds the initial state of the name generator form.
type GeneratorConfig struct {
	Initial    string `yaml:"initial" env:"INITIAL"`
	Adjectives int    `yaml:"adjectives" env:"ADJECTIVES"`
	Count      int    `yaml:"count" env:"COUNT"`
	Emoji      bool   `yaml:"emoji" env:"EMOJI"`
	Style      string `yaml:"style" env:"STYLE"`
}

// HashConfig holds the initial state of the hash form.
type HashConfig struct {
	InputType string `yaml:"input_type" env:"INPUT_TYPE"`
	// FileRoot is where the file picker starts; empty means the working directory
	FileRoot string `yaml:"file_root" env:"FILE_ROOT"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:     "toolbox",
		LogLevel: "info",
		DataDir:  ".toolbox",
		Server: ServerConfig{
			SSH: SSHConfig{
				Listen:      ":2222",
				HostKeyPath: ".toolbox/host_key",
				IdleTimeout: "30m",
				MaxTimeout:  "24h",
			},
		},
		Generator: GeneratorConfig{
			Initial:    "",
			Adjectives: namegen.DefaultAdjectives,
			Count:      namegen.DefaultCount,
			Emoji:      false,
			Style:      string(namegen.DefaultStyle),
		},
		Hash: HashConfig{
			InputType: string(digest.Text),
		},
		AnonymousAccess: "none",
		AllowKeyless:    false,
		Users:           []User{},
		Public:          []AccessRule{},
	}
}

// Load reads and parses a configuration file, then applies environment overrides.
// An empty path yields the defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.path = absPath
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Reload reloads the configuration from disk.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newCfg := DefaultConfig()
	if err := yaml.Unmarshal(data, newCfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := applyEnv(newCfg); err != nil {
		return err
	}
	// A bad edit keeps the running config
	if err := newCfg.validate(); err != nil {
		return err
	}

	// Update fields; listen address and host key need a restart
	c.Name = newCfg.Name
	c.LogLevel = newCfg.LogLevel
	c.Vocabulary = newCfg.Vocabulary
	c.Generator = newCfg.Generator
	c.Hash = newCfg.Hash
	c.AnonymousAccess = newCfg.AnonymousAccess
	c.AllowKeyless = newCfg.AllowKeyless
	c.Users = newCfg.Users
	c.Public = newCfg.Public

	return nil
}

// Validation checks every value that would otherwise fall back to a default
// without a word: levels, timeouts, form defaults and access rules.
func (c *Config) Validation() *valgo.Validation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := valgo.Is(
		valgo.String(c.LogLevel, "log_level").Passing(func(s string) bool {
			_, err := log.ParseLevel(s)
			return s == "" || err == nil
		}, "must be one of debug, info, warn, error or fatal"),
		levelValidator(c.AnonymousAccess, "anonymous_access"),
		durationValidator(c.Server.SSH.IdleTimeout, "server.ssh.idle_timeout"),
		durationValidator(c.Server.SSH.MaxTimeout, "server.ssh.max_timeout"),
		valgo.String(c.Hash.InputType, "hash.input_type").Passing(func(s string) bool {
			_, err := digest.ParseInputType(s)
			return err == nil
		}, "must be one of text, base64, hex or file"),
		valgo.String(c.Generator.Style, "generator.style").Passing(func(s string) bool {
			_, err := namegen.ParseStyle(s)
			return err == nil
		}, "must be one of space, pascal, camel, snake or kebab"),
		valgo.Int(c.Generator.Count, "generator.count").
			Between(0, namegen.MaxCount, fmt.Sprintf("must be between 0 and %d", namegen.MaxCount)),
		valgo.Int(c.Generator.Adjectives, "generator.adjectives").
			Between(0, namegen.MaxAdjectives, fmt.Sprintf("must be between 0 and %d", namegen.MaxAdjectives)),
		valgo.String(c.Generator.Initial, "generator.initial").Passing(func(s string) bool {
			return s == vocab.AnyInitial || slices.Contains(vocab.Letters(), strings.ToUpper(s))
		}, "must be a single letter A-Z or empty"),
	)

	for i, pub := range c.Public {
		v.InRow("public", i, pub.validation())
	}
	for i, user := range c.Users {
		v.InRow("users", i, valgo.Is(valgo.String(user.Name, "name").Not().Blank()))
		for j, rule := range user.Access {
			v.InRow(fmt.Sprintf("users[%d].access", i), j, rule.validation())
		}
	}
	return v
}

func (c *Config) validate() error {
	return valgoutil.ToError(c.Validation(), ErrInvalidConfig)
}

func levelValidator(level, name string) valgo.Validator {
	return valgo.String(level, name).Passing(func(s string) bool {
		_, ok := access.LookupLevel(s)
		return ok
	}, "must be one of none, use, files or admin")
}

// durationValidator accepts Go durations such as "30m". Empty means the
// default and 0 turns the timeout off.
func durationValidator(d, name string) valgo.Validator {
	return valgo.String(d, name).Passing(func(s string) bool {
		if s == "" {
			return true
		}
		parsed, err := time.ParseDuration(s)
		return err == nil && parsed >= 0
	}, "must be a duration such as 30m or 24h, or 0 for none")
}

// BuildResolver creates an access.Resolver from the configuration.
func (c *Config) BuildResolver() *access.Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resolver := access.NewResolver()

	resolver.SetAnonymousAccess(access.ParseLevel(c.AnonymousAccess))

	for _, pub := range c.Public {
		resolver.AddPublicRule(pub.Pattern, access.ParseLevel(pub.Level))
	}

	for _, user := range c.Users {
		if user.Admin {
			resolver.AddAdmin(user.Name)
		}
		for _, r := range user.Access {
			resolver.AddUserRule(user.Name, r.Pattern, access.ParseLevel(r.Level))
		}
	}

	return resolver
}

// UserList returns a copy of the configured users.
func (c *Config) UserList() []User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	users := make([]User, len(c.Users))
	copy(users, c.Users)
	return users
}

// KeylessAllowed reports whether keyless SSH logins are allowed.
func (c *Config) KeylessAllowed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AllowKeyless
}

// AnonymousEnabled reports whether unknown keys may connect anonymously.
func (c *Config) AnonymousEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AllowKeyless || access.ParseLevel(c.AnonymousAccess) != access.None
}

// GeneratorOptions returns the configured name generator defaults.
func (c *Config) GeneratorOptions() (namegen.Options, error) {
	c.mu.RLock()
	g := c.Generator
	c.mu.RUnlock()

	style, err := namegen.ParseStyle(g.Style)
	if err != nil {
		return namegen.Options{}, err
	}
	opts := namegen.Options{
		Initial:       g.Initial,
		NumAdjectives: g.Adjectives,
		Count:         g.Count,
		WithEmoji:     g.Emoji,
		Style:         style,
	}
	if err := opts.Validate(); err != nil {
		return namegen.Options{}, err
	}
	return opts, nil
}

// HashInputType returns the configured default input type.
func (c *Config) HashInputType() (digest.InputType, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return digest.ParseInputType(c.Hash.InputType)
}

// HashFileRoot returns the starting directory for the file picker.
func (c *Config) HashFileRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Hash.FileRoot == "" {
		return "."
	}
	return c.Hash.FileRoot
}

// VocabularyPaths returns the configured animal and adjective patterns.
func (c *Config) VocabularyPaths() (animals, adjectives string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Vocabulary.Animals, c.Vocabulary.Adjectives
}

// GetLogLevel returns the configured log level.
func (c *Config) GetLogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LogLevel
}

// GetIdleTimeout parses and returns the idle timeout duration.
func (c *Config) GetIdleTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(c.Server.SSH.IdleTimeout)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GetMaxTimeout parses and returns the max timeout duration.
func (c *Config) GetMaxTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(c.Server.SSH.MaxTimeout)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// GetDataDir returns the data directory path (for history, keys, etc.).
func (c *Config) GetDataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.DataDir == "" {
		return ".toolbox"
	}
	return c.DataDir
}
