package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ConfigPathEnvVar   = "SCREEN_DIMMER"
	DefaultStateFile   = "screen_dimmer_state.env"
	defaultConfigName  = "config"
	defaultMaxOpacity  = 100.0
	defaultStepPercent = 10.0
)

var defaultPresets = []float64{100, 80, 60, 40, 20}

// LoadOptions carry command-line overrides. Zero values mean "not set".
type LoadOptions struct {
	MonitorOverride    *int
	MaxOpacityOverride *float64
	StateFileOverride  string
}

type Config struct {
	EnableFileLogging bool
	Monitor           int
	MaxOpacity        float64
	StepPercent       float64
	HotkeyDimmer      string
	HotkeyBrighter    string
	HotkeyOff         string
	Presets           []float64
	RestoreOnStart    bool
	StateFile         string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) command-line overrides
	// 2) process environment, then .env in the executable directory
	//    (or the file named by SCREEN_DIMMER)
	// 3) config.yaml in the executable directory or working directory
	// 4) defaults
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	v := viper.New()
	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	if dir := executableDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("enable_file_logging", false)
	v.SetDefault("monitor", 0)
	v.SetDefault("max_opacity", defaultMaxOpacity)
	v.SetDefault("step_percent", defaultStepPercent)
	v.SetDefault("hotkey_dimmer", "Ctrl+Alt+Down")
	v.SetDefault("hotkey_brighter", "Ctrl+Alt+Up")
	v.SetDefault("hotkey_off", "Ctrl+Alt+End")
	v.SetDefault("presets", "")
	v.SetDefault("restore_on_start", true)
	v.SetDefault("state_file", "")

	// Config file is optional; env-only is fine.
	_ = v.ReadInConfig()

	cfg := &Config{
		EnableFileLogging: v.GetBool("enable_file_logging"),
		Monitor:           resolveMonitor(v.GetString("monitor")),
		MaxOpacity:        resolvePercent(v.GetString("max_opacity"), defaultMaxOpacity, 1),
		StepPercent:       resolvePercent(v.GetString("step_percent"), defaultStepPercent, 0.1),
		HotkeyDimmer:      strings.TrimSpace(v.GetString("hotkey_dimmer")),
		HotkeyBrighter:    strings.TrimSpace(v.GetString("hotkey_brighter")),
		HotkeyOff:         strings.TrimSpace(v.GetString("hotkey_off")),
		Presets:           ParsePresets(v.GetString("presets")),
		RestoreOnStart:    v.GetBool("restore_on_start"),
		StateFile:         resolveStateFile(v.GetString("state_file")),
	}

	if opts.MonitorOverride != nil && *opts.MonitorOverride >= 0 {
		cfg.Monitor = *opts.MonitorOverride
	}
	if opts.MaxOpacityOverride != nil {
		cfg.MaxOpacity = clampPercent(*opts.MaxOpacityOverride, defaultMaxOpacity, 1)
	}
	if p := strings.TrimSpace(opts.StateFileOverride); p != "" {
		cfg.StateFile = p
	}

	return cfg, nil
}

// ParsePresets parses a comma-separated list of brightness percentages.
// Invalid entries are skipped; an empty result yields the default presets.
func ParsePresets(s string) []float64 {
	var presets []float64
	seen := make(map[float64]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "%"))
		if part == "" {
			continue
		}
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || math.IsNaN(n) || n < 0 || n > 100 || seen[n] {
			continue
		}
		seen[n] = true
		presets = append(presets, n)
	}
	if len(presets) == 0 {
		return append([]float64(nil), defaultPresets...)
	}
	return presets
}

func resolveEnvPath() string {
	if dir := executableDir(); dir != "" {
		exeEnv := filepath.Join(dir, ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(execPath)
}

func resolveMonitor(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func resolvePercent(value string, def, min float64) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%")), 64)
	if err != nil {
		return def
	}
	return clampPercent(n, def, min)
}

func clampPercent(n, def, min float64) float64 {
	switch {
	case math.IsNaN(n):
		return def
	case n < min:
		return min
	case n > 100:
		return 100
	default:
		return n
	}
}

func resolveStateFile(value string) string {
	if p := strings.TrimSpace(value); p != "" {
		return p
	}
	if dir := executableDir(); dir != "" {
		return filepath.Join(dir, DefaultStateFile)
	}
	return DefaultStateFile
}
