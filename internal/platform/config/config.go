// internal/platform/config/config.go
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"slugscout/internal/core/domain"
	"slugscout/internal/core/ports"
	"slugscout/internal/platform/logx"
)

// ErrHelp se retorna cuando se pide -h/--help.
var ErrHelp = pflag.ErrHelp

type Config struct {
	Core    Core                      `yaml:"core"`
	Output  Output                    `yaml:"output"`
	Logging Logging                   `yaml:"logging"`
	Metrics Metrics                   `yaml:"metrics"`
	Sources map[string]SourceSettings `yaml:"sources"`

	// Solo CLI
	ConfigPath   string `yaml:"-"`
	ListEngines  bool   `yaml:"-"`
	ListSources  bool   `yaml:"-"`
	PrintVersion bool   `yaml:"-"`
}

type Core struct {
	// Engines a procesar; vacío = todos los del registro
	Engines []string `yaml:"engines"`

	// EnabledSources fuentes habilitadas; vacío = default del punto de entrada
	EnabledSources []string `yaml:"enabled_sources"`

	PatternsFile string `yaml:"patterns_file"`
	KnownFile    string `yaml:"known_file"`

	// RequestTimeout timeout por request HTTP
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// RunTimeout timeout global de la ejecución (0 = sin timeout)
	RunTimeout time.Duration `yaml:"run_timeout"`

	EngineWorkers int `yaml:"engine_workers"`
	SourceWorkers int `yaml:"source_workers"`
}

type Output struct {
	Dir           string `yaml:"dir"`
	TableDisabled bool   `yaml:"no_table"`
	Pretty        bool   `yaml:"pretty"`
	IncludeEmpty  bool   `yaml:"include_empty"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Metrics struct {
	// Addr dirección del endpoint /metrics (vacío = deshabilitado)
	Addr string `yaml:"addr"`
}

// SourceSettings sobreescribe la configuración de un conector.
// Los campos en cero mantienen el default.
type SourceSettings struct {
	Enabled   *bool                  `yaml:"enabled"`
	Timeout   time.Duration          `yaml:"timeout"`
	Retries   *int                   `yaml:"retries"`
	RateLimit float64                `yaml:"rate_limit"`
	PageDelay time.Duration          `yaml:"page_delay"`
	APIKey    string                 `yaml:"api_key"`
	BaseURL   string                 `yaml:"base_url"`
	Custom    map[string]interface{} `yaml:"custom"`
}

// apiKeyEnv mapea cada fuente con credencial a su variable de entorno.
var apiKeyEnv = map[domain.ArchiveSource]string{
	domain.SourceAlienVault: "OTX_API_KEY",
	domain.SourceURLScan:    "URLSCAN_API_KEY",
	domain.SourceVirusTotal: "VIRUSTOTAL_API_KEY",
	domain.SourceGitHub:     "GITHUB_TOKEN",
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Core: Core{
			RequestTimeout: 60 * time.Second,
			RunTimeout:     0,
			EngineWorkers:  1,
			SourceWorkers:  1,
		},
		Output: Output{
			Dir:    "discovered_slugs",
			Pretty: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: string(logx.FormatConsole),
		},
		Sources: make(map[string]SourceSettings),
	}
}

// Load inicializa la configuración: defaults -> archivo YAML -> ENV -> flags.
// Los flags tienen prioridad. El archivo viene de --config o SLUGSCOUT_CONFIG.
func Load(args []string) (Config, error) {
	fv := &flagValues{}
	fs := newFlagSet(fv)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()

	path := fv.configPath
	if !fs.Changed("config") {
		path = getenv("SLUGSCOUT_CONFIG", "")
	}
	if path != "" {
		if err := loadFromFile(&cfg, path); err != nil {
			return Config{}, err
		}
		cfg.ConfigPath = path
	}

	loadFromEnv(&cfg)
	applyFlags(&cfg, fs, fv)
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFromFile aplica un archivo YAML sobre cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConfigLoadFailed, path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, path, err)
	}
	sources := make(map[string]SourceSettings, len(cfg.Sources))
	for name, s := range cfg.Sources {
		sources[strings.ToLower(strings.TrimSpace(name))] = s
	}
	cfg.Sources = sources
	return nil
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("SLUGSCOUT_ENGINES", ""); v != "" {
		cfg.Core.Engines = splitList(v)
	}
	if v := getenv("SLUGSCOUT_SOURCES", ""); v != "" {
		cfg.Core.EnabledSources = splitList(v)
	}
	if v := getenv("SLUGSCOUT_PATTERNS", ""); v != "" {
		cfg.Core.PatternsFile = v
	}
	if v := getenv("SLUGSCOUT_KNOWN", ""); v != "" {
		cfg.Core.KnownFile = v
	}
	if v := getenv("SLUGSCOUT_TIMEOUT", ""); v != "" {
		cfg.Core.RequestTimeout = parseDuration(v, cfg.Core.RequestTimeout)
	}
	if v := getenv("SLUGSCOUT_RUN_TIMEOUT", ""); v != "" {
		cfg.Core.RunTimeout = parseDuration(v, cfg.Core.RunTimeout)
	}
	if v := getenv("SLUGSCOUT_ENGINE_WORKERS", ""); v != "" {
		cfg.Core.EngineWorkers = parseInt(v, cfg.Core.EngineWorkers)
	}
	if v := getenv("SLUGSCOUT_SOURCE_WORKERS", ""); v != "" {
		cfg.Core.SourceWorkers = parseInt(v, cfg.Core.SourceWorkers)
	}

	// Outputs
	if v := getenv("SLUGSCOUT_OUTPUT_DIR", ""); v != "" {
		cfg.Output.Dir = v
	}
	if v := getenv("SLUGSCOUT_NO_TABLE", ""); v != "" {
		cfg.Output.TableDisabled = parseBool(v)
	}

	// Logging
	if v := getenv("SLUGSCOUT_LOG_LEVEL", ""); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("SLUGSCOUT_LOG_FORMAT", ""); v != "" {
		cfg.Logging.Format = v
	}
	if v := getenv("SLUGSCOUT_LOG_FILE", ""); v != "" {
		cfg.Logging.File = v
	}
	if v := getenv("SLUGSCOUT_METRICS_ADDR", ""); v != "" {
		cfg.Metrics.Addr = v
	}

	// Sources config desde ENV
	// Formato: SLUGSCOUT_SOURCES_WAYBACK_ENABLED=false
	//          SLUGSCOUT_SOURCES_URLSCAN_PAGE_DELAY=2s
	for _, src := range domain.AllArchiveSources() {
		name := src.String()
		prefix := fmt.Sprintf("SLUGSCOUT_SOURCES_%s_", strings.ToUpper(name))
		s := cfg.Sources[name]

		if v := getenv(prefix+"ENABLED", ""); v != "" {
			b := parseBool(v)
			s.Enabled = &b
		}
		if v := getenv(prefix+"TIMEOUT", ""); v != "" {
			s.Timeout = parseDuration(v, s.Timeout)
		}
		if v := getenv(prefix+"RETRIES", ""); v != "" {
			n := parseInt(v, 0)
			s.Retries = &n
		}
		if v := getenv(prefix+"RATELIMIT", ""); v != "" {
			s.RateLimit = parseFloat(v, s.RateLimit)
		}
		if v := getenv(prefix+"PAGE_DELAY", ""); v != "" {
			s.PageDelay = parseDuration(v, s.PageDelay)
		}
		if v := getenv(prefix+"BASE_URL", ""); v != "" {
			s.BaseURL = v
		}
		if key, ok := apiKeyEnv[src]; ok {
			if v := getenv(key, ""); v != "" {
				s.APIKey = v
			}
		}

		cfg.Sources[name] = s
	}
}

// flagValues recibe los flags antes de aplicarlos sobre la configuración.
type flagValues struct {
	configPath    string
	engines       []string
	sources       []string
	known         string
	patterns      string
	outputDir     string
	timeout       time.Duration
	runTimeout    time.Duration
	engineWorkers int
	sourceWorkers int
	logLevel      string
	logFile       string
	logFormat     string
	metricsAddr   string
	ccIndexes     int
	ccMode        string
	noTable       bool
	listEngines   bool
	listSources   bool
	version       bool
}

func newFlagSet(fv *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("slugscout", pflag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	fs.StringVar(&fv.configPath, "config", "", "YAML configuration file")
	fs.StringSliceVarP(&fv.engines, "engine", "e", nil, "Engines to process (repeatable or comma list, default all)")
	fs.StringSliceVarP(&fv.sources, "sources", "s", nil, "Sources to query (comma list or 'all')")
	fs.StringVar(&fv.known, "known", "", "YAML file with known slugs per engine")
	fs.StringVar(&fv.patterns, "patterns", "", "YAML file with extra or overriding engine patterns")
	fs.StringVarP(&fv.outputDir, "output", "o", "", "Output directory for per-engine JSON files")
	fs.DurationVar(&fv.timeout, "timeout", 0, "Per-request HTTP timeout")
	fs.DurationVar(&fv.runTimeout, "run-timeout", 0, "Global run timeout (0 = none)")
	fs.IntVar(&fv.engineWorkers, "engine-workers", 0, "Engines processed concurrently")
	fs.IntVar(&fv.sourceWorkers, "source-workers", 0, "Sources queried concurrently per engine")
	fs.StringVar(&fv.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&fv.logFile, "log-file", "", "Rotating log file in addition to stderr")
	fs.StringVar(&fv.logFormat, "log-format", "", "Log format (console, json)")
	fs.StringVar(&fv.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.IntVar(&fv.ccIndexes, "cc-indexes", 0, "Common Crawl indexes for the historical sweep")
	fs.StringVar(&fv.ccMode, "cc-mode", "", "Common Crawl mode (historical, latest)")
	fs.BoolVar(&fv.noTable, "no-table", false, "Disable the summary table")
	fs.BoolVar(&fv.listEngines, "list-engines", false, "List engine patterns and exit")
	fs.BoolVar(&fv.listSources, "list-sources", false, "List registered sources and exit")
	fs.BoolVarP(&fv.version, "version", "v", false, "Print version and exit")
	return fs
}

// applyFlags aplica solo los flags indicados explícitamente.
func applyFlags(cfg *Config, fs *pflag.FlagSet, fv *flagValues) {
	if fs.Changed("engine") {
		cfg.Core.Engines = fv.engines
	}
	if fs.Changed("sources") {
		cfg.Core.EnabledSources = fv.sources
	}
	if fs.Changed("known") {
		cfg.Core.KnownFile = fv.known
	}
	if fs.Changed("patterns") {
		cfg.Core.PatternsFile = fv.patterns
	}
	if fs.Changed("output") {
		cfg.Output.Dir = fv.outputDir
	}
	if fs.Changed("timeout") {
		cfg.Core.RequestTimeout = fv.timeout
	}
	if fs.Changed("run-timeout") {
		cfg.Core.RunTimeout = fv.runTimeout
	}
	if fs.Changed("engine-workers") {
		cfg.Core.EngineWorkers = fv.engineWorkers
	}
	if fs.Changed("source-workers") {
		cfg.Core.SourceWorkers = fv.sourceWorkers
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level = fv.logLevel
	}
	if fs.Changed("log-file") {
		cfg.Logging.File = fv.logFile
	}
	if fs.Changed("log-format") {
		cfg.Logging.Format = fv.logFormat
	}
	if fs.Changed("metrics-addr") {
		cfg.Metrics.Addr = fv.metricsAddr
	}
	if fs.Changed("no-table") {
		cfg.Output.TableDisabled = fv.noTable
	}
	if fs.Changed("cc-indexes") {
		cfg.setCustom(domain.SourceCommonCrawl, "indexes", fv.ccIndexes)
	}
	if fs.Changed("cc-mode") {
		cfg.setCustom(domain.SourceCommonCrawl, "mode", fv.ccMode)
	}
	cfg.ListEngines = fv.listEngines
	cfg.ListSources = fv.listSources
	cfg.PrintVersion = fv.version
}

func (c *Config) setCustom(src domain.ArchiveSource, key string, value interface{}) {
	s := c.Sources[src.String()]
	if s.Custom == nil {
		s.Custom = make(map[string]interface{})
	}
	s.Custom[key] = value
	c.Sources[src.String()] = s
}

func normalize(c *Config) {
	c.Core.Engines = cleanList(c.Core.Engines, true)
	c.Core.EnabledSources = cleanList(c.Core.EnabledSources, true)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Core.EngineWorkers == 0 {
		c.Core.EngineWorkers = 1
	}
	if c.Core.SourceWorkers == 0 {
		c.Core.SourceWorkers = 1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "discovered_slugs"
	}
}

// Validate verifica rangos y nombres de fuentes.
func (c Config) Validate() error {
	if c.Core.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive, got %s", domain.ErrInvalidConfig, c.Core.RequestTimeout)
	}
	if c.Core.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must be >= 0, got %s", domain.ErrInvalidConfig, c.Core.RunTimeout)
	}
	if c.Core.EngineWorkers < 1 {
		return fmt.Errorf("%w: engine workers must be >= 1, got %d", domain.ErrInvalidConfig, c.Core.EngineWorkers)
	}
	if c.Core.SourceWorkers < 1 {
		return fmt.Errorf("%w: source workers must be >= 1, got %d", domain.ErrInvalidConfig, c.Core.SourceWorkers)
	}
	if _, err := c.EnabledSources(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	for name, s := range c.Sources {
		if _, err := domain.ParseArchiveSource(name); err != nil {
			return fmt.Errorf("%w: sources.%s: %v", domain.ErrInvalidConfig, name, err)
		}
		if s.Timeout < 0 || s.RateLimit < 0 {
			return fmt.Errorf("%w: sources.%s: timeout and rate_limit must be >= 0", domain.ErrInvalidConfig, name)
		}
		if s.Retries != nil && *s.Retries < 0 {
			return fmt.Errorf("%w: sources.%s: retries must be >= 0", domain.ErrInvalidConfig, name)
		}
	}
	switch logx.Format(c.Logging.Format) {
	case logx.FormatConsole, logx.FormatJSON:
	default:
		return fmt.Errorf("%w: log format must be console or json, got %q", domain.ErrInvalidConfig, c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// EnabledSources retorna las fuentes pedidas, o nil si no se indicó ninguna
// (cada punto de entrada aplica entonces su default).
func (c Config) EnabledSources() (domain.SourceSet, error) {
	if len(c.Core.EnabledSources) == 0 {
		return nil, nil
	}
	return domain.ParseSourceSet(c.Core.EnabledSources)
}

// ConnectorConfigs traduce la configuración a un ports.ConnectorConfig por fuente.
func (c Config) ConnectorConfigs() map[domain.ArchiveSource]ports.ConnectorConfig {
	out := make(map[domain.ArchiveSource]ports.ConnectorConfig, len(domain.AllArchiveSources()))
	for _, src := range domain.AllArchiveSources() {
		cc := ports.DefaultConnectorConfig()
		cc.Timeout = c.Core.RequestTimeout

		if s, ok := c.Sources[src.String()]; ok {
			if s.Enabled != nil {
				cc.Enabled = *s.Enabled
			}
			if s.Timeout > 0 {
				cc.Timeout = s.Timeout
			}
			if s.Retries != nil {
				cc.Retries = *s.Retries
			}
			cc.RateLimit = s.RateLimit
			cc.PageDelay = s.PageDelay
			cc.APIKey = s.APIKey
			cc.BaseURL = s.BaseURL
			for k, v := range s.Custom {
				cc.Custom[k] = v
			}
		}
		out[src] = cc
	}
	return out
}

// LoggerConfig retorna la configuración de logx.
func (c Config) LoggerConfig() logx.Config {
	return logx.Config{
		Level:  logx.ParseLevel(c.Logging.Level),
		Format: logx.Format(c.Logging.Format),
		File:   c.Logging.File,
	}
}

// ToYAML serializa la configuración (útil para debugging). Las API keys se ocultan.
func (c Config) ToYAML() (string, error) {
	redacted := c
	redacted.Sources = make(map[string]SourceSettings, len(c.Sources))
	for name, s := range c.Sources {
		if s.APIKey != "" {
			s.APIKey = "***"
		}
		redacted.Sources[name] = s
	}
	data, err := yaml.Marshal(redacted)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

// parseDuration acepta duraciones Go ("90s") o segundos enteros ("90").
func parseDuration(v string, def time.Duration) time.Duration {
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(v string) []string {
	return cleanList(strings.Split(v, ","), false)
}

func cleanList(in []string, lower bool) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}
