package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tvd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.SetDefault("video.ttl", "24h")
	viper.SetDefault("video.chunkUnit", 4096)
	viper.SetDefault("video.chunkBudget", 400)
	viper.SetDefault("video.sweepInterval", "1h")
	viper.SetDefault("auth.tokenTTL", "168h")
	viper.SetDefault("auth.loginPath", "/login")
	viper.SetDefault("auth.publicPrefixes", []string{"/static/", "/favicon.ico", "/login", "/api/login", "/api/phonecode/"})
	viper.SetDefault("upstream.requestSize", 409600)
	viper.SetDefault("upstream.timeout", "30s")

	viper.BindEnv("logger.level", "TVD_LOG_LEVEL")
	viper.BindEnv("auth.secret", "TVD_SECRET_KEY")
	viper.BindEnv("video.baseUrl", "TVD_BASE_URL")
	viper.BindEnv("upstream.gatewayUrl", "TVD_GATEWAY_URL")
	viper.BindEnv("upstream.eventsUrl", "TVD_EVENTS_URL")
	viper.BindEnv("upstream.phoneNumber", "TVD_PHONE_NUMBER")
	viper.BindEnv("cache.enabled", "TVD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "TVD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "TelegramVideoDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
