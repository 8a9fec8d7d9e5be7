package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/pkg/validate"
)

// PathEnvVar 指定配置文件路径的环境变量。
const PathEnvVar = "GAMEREC_CONFIG"

// DefaultPaths 未指定配置文件时依次查找的路径。
var DefaultPaths = []string{"config.yaml", "config.yml", "/etc/gamerec/config.yaml"}

// Settings 是服务的完整配置。
// 加载顺序（后者覆盖前者）：默认值 -> YAML 文件 -> .env -> 环境变量。
type Settings struct {
	Server    ServerSettings    `koanf:"server"`
	Log       LogSettings       `koanf:"log"`
	Catalog   CatalogSettings   `koanf:"catalog"`
	Store     StoreSettings     `koanf:"store"`
	Recommend RecommendSettings `koanf:"recommend"`
}

type ServerSettings struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"min=0"` // 每个 IP 每分钟请求数，0 表示不限
}

type LogSettings struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled off"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

type CatalogSettings struct {
	// BaseURL 上游目录服务地址，对应环境变量 MAIN_SERVER_API_BASE_URL
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	// Sources 拉取的接口路径，多个时并发拉取并合并
	Sources []string `koanf:"sources"`

	// File 本地候选池文件，设置后不访问上游
	File string `koanf:"file"`

	Timeout      time.Duration   `koanf:"timeout"`
	MaxRetries   int             `koanf:"max_retries" validate:"min=0,max=10"`
	RetryBackoff time.Duration   `koanf:"retry_backoff"`
	CacheTTL     time.Duration   `koanf:"cache_ttl"`
	Breaker      BreakerSettings `koanf:"breaker"`
}

type BreakerSettings struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
}

type StoreSettings struct {
	Driver    string `koanf:"driver" validate:"oneof=memory redis"`
	Addr      string `koanf:"addr" validate:"required_if=Driver redis"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db" validate:"min=0"`
	KeyPrefix string `koanf:"key_prefix"`
}

type RecommendSettings struct {
	TopK            int     `koanf:"top_k" validate:"min=1,max=20"`
	PipelinePath    string  `koanf:"pipeline_path"`
	Blacklist       []int64 `koanf:"blacklist"`
	BlacklistKey    string  `koanf:"blacklist_key"`
	MaxFilterLength int     `koanf:"max_filter_length" validate:"min=0"`
}

// Defaults 返回默认配置。
func Defaults() *Settings {
	rc := &core.DefaultRecommendConfig{}
	return &Settings{
		Server: ServerSettings{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       120,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogSettings{
			Sources:      []string{rc.DefaultSourcePath()},
			Timeout:      rc.DefaultFetchTimeout(),
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
			CacheTTL:     5 * time.Minute,
			Breaker: BreakerSettings{
				FailureThreshold: 5,
				MaxRequests:      1,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
			},
		},
		Store: StoreSettings{
			Driver:    "memory",
			KeyPrefix: "gamerec:",
		},
		Recommend: RecommendSettings{
			TopK:            rc.DefaultTopK(),
			BlacklistKey:    "recommend:blacklist",
			MaxFilterLength: 1024,
		},
	}
}

// Load 加载配置。path 为空时按 PathEnvVar 和 DefaultPaths 查找，找不到文件时只用默认值和环境变量。
// 当前目录下的 .env 会先被载入进程环境（已存在的环境变量不被覆盖）。
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
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

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Settings{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate 校验配置。
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	for _, src := range s.Catalog.Sources {
		if !strings.HasPrefix(src, "/") {
			return fmt.Errorf("catalog.sources: path %q must start with /", src)
		}
	}
	if s.Catalog.File == "" {
		if s.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog.base_url: required unless catalog.file is set")
		}
		if len(s.Catalog.Sources) == 0 {
			return fmt.Errorf("catalog.sources: at least one source is required")
		}
	}
	return nil
}

// Addr 返回 HTTP 监听地址。
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceFields 环境变量中以逗号分隔的列表字段。
var sliceFields = []string{
	"server.cors_origins",
	"catalog.sources",
	"recommend.blacklist",
}

func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceFields {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0, 4)
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings 环境变量 -> 配置路径。未列出的环境变量被忽略。
var envMappings = map[string]string{
	"main_server_api_base_url": "catalog.base_url",

	"host":                  "server.host",
	"port":                  "server.port",
	"gamerec_host":          "server.host",
	"gamerec_port":          "server.port",
	"gamerec_cors_origins":  "server.cors_origins",
	"gamerec_rate_limit":    "server.rate_limit",
	"gamerec_read_timeout":  "server.read_timeout",
	"gamerec_write_timeout": "server.write_timeout",

	"log_level":  "log.level",
	"log_format": "log.format",
	"log_caller": "log.caller",

	"gamerec_catalog_sources":       "catalog.sources",
	"gamerec_catalog_file":          "catalog.file",
	"gamerec_catalog_timeout":       "catalog.timeout",
	"gamerec_catalog_max_retries":   "catalog.max_retries",
	"gamerec_catalog_retry_backoff": "catalog.retry_backoff",
	"gamerec_catalog_cache_ttl":     "catalog.cache_ttl",

	"gamerec_store_driver": "store.driver",
	"redis_addr":           "store.addr",
	"redis_password":       "store.password",
	"redis_db":             "store.db",

	"gamerec_top_k":         "recommend.top_k",
	"gamerec_pipeline_path": "recommend.pipeline_path",
	"gamerec_blacklist":     "recommend.blacklist",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
