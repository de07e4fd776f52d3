package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Seat struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"seat"`
	Game struct {
		Retention       time.Duration `mapstructure:"retention"`
		CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
		Seed            int64         `mapstructure:"seed"` // 0 = 按时间随机
		ActionBuffer    int           `mapstructure:"action_buffer"`
	} `mapstructure:"game"`
	Rules struct {
		RedealOnAllPass     bool `mapstructure:"redeal_on_all_pass"`
		ForbidTopCardFriend bool `mapstructure:"forbid_top_card_friend"`
	} `mapstructure:"rules"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var C Config

const envPrefix = "FRIENDCALL"

func defaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("seat.secret", "")
	v.SetDefault("seat.ttl", 2*time.Hour)
	v.SetDefault("game.retention", 30*time.Minute)
	v.SetDefault("game.cleanup_interval", 5*time.Minute)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.action_buffer", 32)
	v.SetDefault("rules.redeal_on_all_pass", true)
	v.SetDefault("rules.forbid_top_card_friend", false)
	v.SetDefault("log.level", "info")
}

// Read 读取配置文件；path 为空或文件不存在时只用默认值 + 环境变量
// （FRIENDCALL_SERVER_PORT、FRIENDCALL_SEAT_SECRET ...）
func Read(path string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load 读取到全局 C，失败直接退出
func Load(path string) {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	C = c
}
