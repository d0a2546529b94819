// Package config holds the target-application profile and runtime settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mj1618/luckydog/internal/logging"
	"gopkg.in/yaml.v3"
)

// Identifiers of the WeChat screens and views the claimer acts on.
const (
	DefaultPackage        = "com.tencent.mm"
	DefaultPopupActivity  = "com.tencent.mm.plugin.luckymoney.ui.LuckyMoneyNotHookReceiveUI"
	DefaultDetailActivity = "com.tencent.mm.plugin.luckymoney.ui.LuckyMoneyDetailUI"
	DefaultRewardViewID   = "com.tencent.mm:id/tv"
	DefaultClaimedViewID  = "com.tencent.mm:id/tt"
	DefaultKeyword        = "[微信红包]"
	DefaultButtonClass    = "android.widget.Button"
	DefaultTickerSep      = ":"

	DefaultPollAttempts = 1000
	DefaultPollInterval = 5 * time.Millisecond
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Target describes the foreign application's screens and views.
type Target struct {
	Package        string `yaml:"package"`
	PopupActivity  string `yaml:"popup_activity"`
	DetailActivity string `yaml:"detail_activity"`
	RewardViewID   string `yaml:"reward_view_id"`
	ClaimedViewID  string `yaml:"claimed_view_id"`
	ButtonClass    string `yaml:"button_class"`
	Keyword        string `yaml:"keyword"`
	TickerSep      string `yaml:"ticker_separator"`
}

// Poll bounds the wait for the popup's button.
type Poll struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

// ADB configures the adb host backend.
type ADB struct {
	Path          string        `yaml:"path"`
	Serial        string        `yaml:"serial"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// MQTT configures the claim report bridge. An empty broker disables it.
type MQTT struct {
	Broker      string `yaml:"broker"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
}

// API configures the HTTP status server. An empty address disables it.
type API struct {
	Addr string `yaml:"addr"`
}

// Config is the full runtime configuration.
type Config struct {
	Target Target         `yaml:"target"`
	Poll   Poll           `yaml:"poll"`
	ADB    ADB            `yaml:"adb"`
	MQTT   MQTT           `yaml:"mqtt"`
	API    API            `yaml:"api"`
	Log    logging.Config `yaml:"log"`
}

// Default returns the built-in WeChat profile.
func Default() Config {
	return Config{
		Target: Target{
			Package:        DefaultPackage,
			PopupActivity:  DefaultPopupActivity,
			DetailActivity: DefaultDetailActivity,
			RewardViewID:   DefaultRewardViewID,
			ClaimedViewID:  DefaultClaimedViewID,
			ButtonClass:    DefaultButtonClass,
			Keyword:        DefaultKeyword,
			TickerSep:      DefaultTickerSep,
		},
		Poll: Poll{
			Attempts: DefaultPollAttempts,
			Interval: DefaultPollInterval,
		},
		ADB: ADB{
			Path:          "adb",
			WatchInterval: 300 * time.Millisecond,
		},
		MQTT: MQTT{
			Port:        1883,
			TopicPrefix: "luckydog",
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads .env (if present), overlays the YAML file at path onto the
// defaults, applies environment overrides and validates the result.
// An empty path skips the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LUCKYDOG_SERIAL"); v != "" {
		c.ADB.Serial = v
	}
	if v := os.Getenv("LUCKYDOG_ADB"); v != "" {
		c.ADB.Path = v
	}
	if v := os.Getenv("LUCKYDOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.MQTT.Port = p
		}
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
}

// Validate checks that every identifier the engine needs is present.
func (c Config) Validate() error {
	t := c.Target
	required := []struct{ name, value string }{
		{"target.package", t.Package},
		{"target.popup_activity", t.PopupActivity},
		{"target.detail_activity", t.DetailActivity},
		{"target.reward_view_id", t.RewardViewID},
		{"target.claimed_view_id", t.ClaimedViewID},
		{"target.button_class", t.ButtonClass},
		{"target.keyword", t.Keyword},
		{"target.ticker_separator", t.TickerSep},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, r.name)
		}
	}
	if c.Poll.Attempts <= 0 {
		return fmt.Errorf("%w: poll.attempts must be positive, got %d", ErrInvalid, c.Poll.Attempts)
	}
	if c.Poll.Interval < 0 {
		return fmt.Errorf("%w: poll.interval must not be negative", ErrInvalid)
	}
	if c.MQTT.Broker != "" && (c.MQTT.Port <= 0 || c.MQTT.Port > 65535) {
		return fmt.Errorf("%w: mqtt.port out of range: %d", ErrInvalid, c.MQTT.Port)
	}
	return nil
}
