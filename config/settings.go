package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // 默认时区 Asia/Shanghai 不依赖宿主机 zoneinfo

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/feature"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/logging"
	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/pkg/validation"
)

const (
	// EnvPrefix 环境变量前缀，CANTEEN_ENGINE_K -> engine.k
	EnvPrefix = "CANTEEN_"

	// ConfigPathEnvVar 指定配置文件路径的环境变量
	ConfigPathEnvVar = "CANTEEN_CONFIG"
)

// DefaultConfigPaths 未显式指定时按顺序查找的配置文件。
var DefaultConfigPaths = []string{
	"canteen.yaml",
	"canteen.yml",
	"/etc/canteen/canteen.yaml",
}

// Settings 是应用配置：默认值 → YAML 文件 → 环境变量，逐层覆盖。
type Settings struct {
	Log     logging.Config  `koanf:"log"`
	Store   StoreSettings   `koanf:"store"`
	Engine  EngineSettings  `koanf:"engine"`
	Breaker BreakerSettings `koanf:"breaker"`
	Lexicon feature.Lexicon `koanf:"lexicon"`

	// Rules 为 CEL 过滤规则，命中即排除，例如 "dish.price > 30.0"
	Rules []string `koanf:"rules"`

	// Blacklist 为始终排除的菜品 ID（售罄、下架等）
	Blacklist []string `koanf:"blacklist"`

	// PipelineFile 为空时使用内置 Pipeline
	PipelineFile string `koanf:"pipeline_file"`
}

type StoreSettings struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory redis mongo sqlite"`

	RedisAddr     string `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"min=0"`

	MongoURI      string `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase string `koanf:"mongo_database" validate:"required_if=Driver mongo"`

	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type EngineSettings struct {
	K                int           `koanf:"k" validate:"min=1,max=50"`
	Alpha            float64       `koanf:"alpha" validate:"gte=0,lte=1"`
	Timezone         string        `koanf:"timezone" validate:"required,timezone"`
	Seed             uint64        `koanf:"seed"`
	ProfileDecayDays float64       `koanf:"profile_decay_days" validate:"gt=0"`
	ContentDecayDays float64       `koanf:"content_decay_days" validate:"gt=0"`
	CooldownWindow   time.Duration `koanf:"cooldown_window" validate:"gte=0"`
	ScorerTimeout    time.Duration `koanf:"scorer_timeout" validate:"gte=0"`
}

// BreakerSettings 对应 gobreaker.Settings。
type BreakerSettings struct {
	Enabled          bool          `koanf:"enabled"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// DefaultSettings 返回全部默认值。
func DefaultSettings() *Settings {
	return &Settings{
		Log: logging.Config{Level: "info", Format: "json"},
		Store: StoreSettings{
			Driver:        "memory",
			RedisAddr:     "127.0.0.1:6379",
			MongoDatabase: "canteen",
			SQLitePath:    "canteen.db",
			Timeout:       3 * time.Second,
		},
		Engine: EngineSettings{
			K:                core.DefaultTopK,
			Alpha:            core.DefaultAlpha,
			Timezone:         core.DefaultTimezone,
			ProfileDecayDays: core.ProfileDecayDays,
			ContentDecayDays: core.ContentDecayDays,
			CooldownWindow:   core.CooldownWindow,
			ScorerTimeout:    2 * time.Second,
		},
		Breaker: BreakerSettings{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		Lexicon: feature.DefaultLexicon(),
	}
}

// Validate 校验配置取值。
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s)
}

// Location 返回引擎时区；Validate 通过后不会失败。
func (s *Settings) Location() (*time.Location, error) {
	return time.LoadLocation(s.Engine.Timezone)
}

// LoadSettings 加载配置。path 为空时依次查找 CANTEEN_CONFIG 与 DefaultConfigPaths，都不存在则只用默认值与环境变量。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if s.Lexicon.IsZero() {
		s.Lexicon = feature.DefaultLexicon()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return s, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sections = map[string]bool{
	"log":     true,
	"store":   true,
	"engine":  true,
	"breaker": true,
	"lexicon": true,
}

// envTransformFunc 把环境变量名映射到 koanf 路径：
//   - CANTEEN_ENGINE_PROFILE_DECAY_DAYS -> engine.profile_decay_days
//   - CANTEEN_BLACKLIST -> blacklist
//   - CANTEEN_CONFIG -> ""（忽略）
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	section, rest, ok := strings.Cut(key, "_")
	if ok && sections[section] {
		return section + "." + rest
	}
	return key
}

// 来自环境变量的切片字段是单个字符串，按分隔符拆开。CEL 规则里可能有逗号，用分号。
var sliceConfigPaths = map[string]string{
	"blacklist":                 ",",
	"rules":                     ";",
	"lexicon.hot_spicy_tags":    ",",
	"lexicon.mild_spicy_tags":   ",",
	"lexicon.sweet_tags":        ",",
	"lexicon.sugar_markers":     ",",
	"lexicon.salty_tags":        ",",
	"lexicon.cooked_categories": ",",
	"lexicon.sour_tags":         ",",
	"lexicon.vinegar_markers":   ",",
	"lexicon.fried_tags":        ",",
	"lexicon.meat_categories":   ",",
	"lexicon.light_categories":  ",",
	"lexicon.seafood_tags":      ",",
	"lexicon.soup_markers":      ",",
}

func processSliceFields(k *koanf.Koanf) error {
	for path, sep := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, sep)
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
