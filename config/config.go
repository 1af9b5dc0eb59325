// Package config loads chatdoc settings from defaults, an optional TOML
// file and CHATDOC_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	defaultAddr        = ":8000"
	defaultPandoc      = "pandoc"
	defaultWkhtmltopdf = "wkhtmltopdf"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

const (
	configFolderName  = "chatdoc"
	configFileName    = "config.toml"
	configPathEnvName = "XDG_CONFIG_HOME"
)

// PDF engines.
const (
	EngineWkhtmltopdf = "wkhtmltopdf"
	EngineNative      = "native"
)

// DefaultAllowedOrigins are the CORS origins accepted out of the box.
var DefaultAllowedOrigins = []string{
	"https://chatgpt.com",
	"http://localhost",
	"http://127.0.0.1",
	"http://localhost:3000",
	"http://localhost:5173",
	"http://localhost:8000",
	"http://127.0.0.1:8000",
}

type Config struct {
	Addr            string
	AllowedOrigins  []string
	PandocPath      string
	WkhtmltopdfPath string
	PDFEngine       string
	PDFPreclean     bool
	NativeFontPath  string
	TempDir         string
	MaxConcurrent   int
	LogLevel        string
	LogFormat       string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:            defaultAddr,
		AllowedOrigins:  append([]string(nil), DefaultAllowedOrigins...),
		PandocPath:      defaultPandoc,
		WkhtmltopdfPath: defaultWkhtmltopdf,
		PDFEngine:       EngineWkhtmltopdf,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
	}
}

// LoadConfig builds the effective configuration. An explicit path must
// exist; otherwise the XDG and ~/.config locations are tried and a missing
// file is not an error.
func LoadConfig(explicitPath string) (Config, error) {
	cfg := Default()

	configPath, hasConfig := explicitPath, explicitPath != ""
	if !hasConfig {
		home, _ := os.UserHomeDir()
		var err error
		configPath, hasConfig, err = findConfigPath(home)
		if err != nil {
			return Config{}, err
		}
	}
	if hasConfig {
		fileCfg, err := loadFileConfig(configPath)
		if err != nil {
			return Config{}, err
		}
		applyFileConfig(&cfg, fileCfg)
	}

	applyEnvOverrides(&cfg)

	if cfg.MaxConcurrent < 0 {
		cfg.MaxConcurrent = 0
	}
	if cfg.PDFEngine != EngineWkhtmltopdf && cfg.PDFEngine != EngineNative {
		return Config{}, fmt.Errorf("invalid pdf engine %q: must be %q or %q", cfg.PDFEngine, EngineWkhtmltopdf, EngineNative)
	}
	return cfg, nil
}

type fileConfig struct {
	Addr            *string  `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	PandocPath      *string  `toml:"pandoc_path"`
	WkhtmltopdfPath *string  `toml:"wkhtmltopdf_path"`
	PDFEngine       *string  `toml:"pdf_engine"`
	PDFPreclean     *bool    `toml:"pdf_preclean"`
	NativeFontPath  *string  `toml:"native_font_path"`
	TempDir         *string  `toml:"temp_dir"`
	MaxConcurrent   *int     `toml:"max_concurrent"`
	LogLevel        *string  `toml:"log_level"`
	LogFormat       *string  `toml:"log_format"`
}

func findConfigPath(home string) (string, bool, error) {
	candidates := make([]string, 0, 2)
	if xdgConfigHome := strings.TrimSpace(os.Getenv(configPathEnvName)); xdgConfigHome != "" {
		candidates = append(candidates, filepath.Join(xdgConfigHome, configFolderName, configFileName))
	}
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".config", configFolderName, configFileName))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", false, fmt.Errorf("config path %q is a directory; expected a file", candidate)
			}
			return candidate, true, nil
		}
		if os.IsNotExist(err) {
			continue
		}
		return "", false, fmt.Errorf("failed to read config path %q: %w", candidate, err)
	}
	return "", false, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		unknown := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			unknown = append(unknown, key.String())
		}
		sort.Strings(unknown)
		return fileConfig{}, fmt.Errorf("invalid config file %q: unknown key(s): %s", path, strings.Join(unknown, ", "))
	}
	if err := validateFileConfig(path, cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func validateFileConfig(path string, cfg fileConfig) error {
	for key, v := range map[string]*string{
		"addr":             cfg.Addr,
		"pandoc_path":      cfg.PandocPath,
		"wkhtmltopdf_path": cfg.WkhtmltopdfPath,
	} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("invalid config file %q: %s must be non-empty when provided", path, key)
		}
	}
	if cfg.PDFEngine != nil && *cfg.PDFEngine != EngineWkhtmltopdf && *cfg.PDFEngine != EngineNative {
		return fmt.Errorf("invalid config file %q: pdf_engine must be %q or %q", path, EngineWkhtmltopdf, EngineNative)
	}
	if cfg.MaxConcurrent != nil && *cfg.MaxConcurrent < 0 {
		return fmt.Errorf("invalid config file %q: max_concurrent must be >= 0", path)
	}
	if cfg.LogFormat != nil && *cfg.LogFormat != "text" && *cfg.LogFormat != "json" {
		return fmt.Errorf("invalid config file %q: log_format must be \"text\" or \"json\"", path)
	}
	return nil
}

func applyFileConfig(cfg *Config, fileCfg fileConfig) {
	if fileCfg.Addr != nil {
		cfg.Addr = *fileCfg.Addr
	}
	if fileCfg.AllowedOrigins != nil {
		cfg.AllowedOrigins = fileCfg.AllowedOrigins
	}
	if fileCfg.PandocPath != nil {
		cfg.PandocPath = *fileCfg.PandocPath
	}
	if fileCfg.WkhtmltopdfPath != nil {
		cfg.WkhtmltopdfPath = *fileCfg.WkhtmltopdfPath
	}
	if fileCfg.PDFEngine != nil {
		cfg.PDFEngine = *fileCfg.PDFEngine
	}
	if fileCfg.PDFPreclean != nil {
		cfg.PDFPreclean = *fileCfg.PDFPreclean
	}
	if fileCfg.NativeFontPath != nil {
		cfg.NativeFontPath = *fileCfg.NativeFontPath
	}
	if fileCfg.TempDir != nil {
		cfg.TempDir = *fileCfg.TempDir
	}
	if fileCfg.MaxConcurrent != nil {
		cfg.MaxConcurrent = *fileCfg.MaxConcurrent
	}
	if fileCfg.LogLevel != nil {
		cfg.LogLevel = *fileCfg.LogLevel
	}
	if fileCfg.LogFormat != nil {
		cfg.LogFormat = *fileCfg.LogFormat
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("CHATDOC_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := os.LookupEnv("CHATDOC_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v, ok := os.LookupEnv("CHATDOC_PANDOC_PATH"); ok && v != "" {
		cfg.PandocPath = v
	}
	if v, ok := os.LookupEnv("CHATDOC_WKHTMLTOPDF_PATH"); ok && v != "" {
		cfg.WkhtmltopdfPath = v
	}
	if v, ok := os.LookupEnv("CHATDOC_PDF_ENGINE"); ok && v != "" {
		cfg.PDFEngine = v
	}
	if v, ok := os.LookupEnv("CHATDOC_PDF_PRECLEAN"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PDFPreclean = b
		}
	}
	if v, ok := os.LookupEnv("CHATDOC_NATIVE_FONT_PATH"); ok && v != "" {
		cfg.NativeFontPath = v
	}
	if v, ok := os.LookupEnv("CHATDOC_TEMP_DIR"); ok && v != "" {
		cfg.TempDir = v
	}
	if v, ok := os.LookupEnv("CHATDOC_MAX_CONCURRENT"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrent = n
		}
	}
	if v, ok := os.LookupEnv("CHATDOC_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("CHATDOC_LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}
}
