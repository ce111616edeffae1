package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Getenv looks up a single setting. os.Getenv satisfies it.
type Getenv func(key string) string

// Load reads configuration from the process environment, applies defaults
// for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with a custom lookup, used by tests and by the CLI to
// layer flags over the environment.
func LoadFrom(getenv Getenv) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// setting is the parsed tag set of one config field.
type setting struct {
	name     string
	alt      string
	fallback string
	required bool
}

func settingOf(f reflect.StructField) (setting, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return setting{}, false
	}
	return setting{
		name:     name,
		alt:      f.Tag.Get("envAlt"),
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}, true
}

// resolve returns the effective raw value: primary name, then alternate, then
// the default. ok is false when nothing applies.
func (s setting) resolve(getenv Getenv) (string, bool, error) {
	for _, key := range []string{s.name, s.alt} {
		if key == "" {
			continue
		}
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v, true, nil
		}
	}
	if s.required {
		return "", false, fmt.Errorf("required environment variable %s is not set", s.name)
	}
	return s.fallback, s.fallback != "", nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// loadStruct fills v's tagged fields from getenv, descending into nested
// section structs.
func loadStruct(v reflect.Value, getenv Getenv) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if sf.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv, getenv); err != nil {
				return err
			}
			continue
		}

		s, ok := settingOf(sf)
		if !ok {
			continue
		}
		raw, ok, err := s.resolve(getenv)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", s.name, raw, err)
		}
	}
	return nil
}

// assign parses raw into the field according to its type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type: %s", fv.Kind())
	}
	return nil
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// problems collects validation failures across sections.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New("validation failed:\n  - " + strings.Join(p, "\n  - "))
}

// Validate checks every section and reports all failures at once.
func (c *Config) Validate() error {
	var p problems
	c.Server.validate(&p)
	c.Database.validate(&p)
	c.validateInputs(&p)
	c.Spawn.validate(&p)
	c.Broker.validate(&p)
	c.Logging.validate(&p)
	return p.err()
}

func (s ServerConfig) validate(p *problems) {
	if s.Port <= 0 || s.Port > 65535 {
		p.addf("SERVER_PORT (%d) must be 1-65535", s.Port)
	}
	if s.ReadTimeout < 0 {
		p.addf("SERVER_READ_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		p.addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if s.MaxBodySize <= 0 {
		p.addf("SERVER_MAX_BODY_SIZE must be positive")
	}
}

func (d DatabaseConfig) validate(p *problems) {
	if !d.Enabled() {
		return
	}
	if d.MaxConns <= 0 {
		p.addf("DB_MAX_CONNS must be positive")
	}
	if d.MinConns < 0 {
		p.addf("DB_MIN_CONNS must be non-negative")
	}
	if d.MaxConns < d.MinConns {
		p.addf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns)
	}
}

func (c *Config) validateInputs(p *problems) {
	if c.Source.Root == "" {
		p.addf("SOURCE_ROOT must not be empty")
	}
	if c.Source.MaxSize <= 0 {
		p.addf("SOURCE_MAX_SIZE must be positive")
	}
	if c.Profiles.Dir == "" {
		p.addf("PROFILES_DIR must not be empty")
	}
}

func (s SpawnConfig) validate(p *problems) {
	positive := []struct {
		name string
		ok   bool
	}{
		{"SPAWN_MAX_CONCURRENT", s.MaxConcurrent > 0},
		{"SPAWN_MAX_WAIT_TIME", s.MaxWaitTime > 0},
		{"SPAWN_TIMEOUT", s.Timeout > 0},
		{"SPAWN_HISTORY_SIZE", s.HistorySize > 0},
		{"SPAWN_PRUNE_INTERVAL", s.PruneInterval > 0},
	}
	for _, c := range positive {
		if !c.ok {
			p.addf("%s must be positive", c.name)
		}
	}
}

func (b BrokerConfig) validate(p *problems) {
	if !b.Enabled() {
		return
	}
	if b.QoS < 0 || b.QoS > 2 {
		p.addf("BROKER_QOS (%d) must be 0, 1 or 2", b.QoS)
	}
	if b.TopicPrefix == "" {
		p.addf("BROKER_TOPIC_PREFIX must not be empty")
	}
	if strings.Contains(b.Scene, "/") {
		p.addf("BROKER_SCENE (%q) must not contain '/'", b.Scene)
	}
}

func (l LoggingConfig) validate(p *problems) {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", l.Format)
	}
}

// String returns a loggable summary. Credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q, APIKeys: %d}, ", c.Server.Addr(), len(c.Server.APIKeys))
	if c.Database.Enabled() {
		fmt.Fprintf(&b, "Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
			c.Database.MaxConns, c.Database.MinConns)
	} else {
		b.WriteString("Database: {disabled}, ")
	}
	fmt.Fprintf(&b, "Source: {Root: %q, MaxSize: %d}, ", c.Source.Root, c.Source.MaxSize)
	fmt.Fprintf(&b, "Profiles: {Dir: %q}, ", c.Profiles.Dir)
	fmt.Fprintf(&b, "Spawn: {MaxConcurrent: %d, Timeout: %s, HistorySize: %d}, ",
		c.Spawn.MaxConcurrent, c.Spawn.Timeout, c.Spawn.HistorySize)
	if c.Broker.Enabled() {
		fmt.Fprintf(&b, "Broker: {URL: %q, Password: [MASKED], Topic: %q}, ",
			c.Broker.URL, c.Broker.TopicPrefix+"/"+c.Broker.Scene)
	} else {
		b.WriteString("Broker: {disabled}, ")
	}
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
