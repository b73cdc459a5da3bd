package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath      string `yaml:"filePath" validate:"required|unixPath"`
	LinksFilePath string `yaml:"linksFilePath" validate:"required|unixPath"`
	Compress      bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type UpstreamConfig struct {
	GatewayUrl   string        `yaml:"gatewayUrl" validate:"required|fullUrl"`
	EventsUrl    string        `yaml:"eventsUrl" validate:"required"`
	PhoneNumber  string        `yaml:"phoneNumber"`
	SessionFile  string        `yaml:"sessionFile" validate:"required|unixPath"`
	AllowedChats []int64       `yaml:"allowedChats" validate:"required"`
	RequestSize  int64         `yaml:"requestSize"`
	Timeout      time.Duration `yaml:"timeout"`
}

type VideoConfig struct {
	TTL           time.Duration `yaml:"ttl" validate:"required|min:1"`
	ChunkUnit     int64         `yaml:"chunkUnit"`
	ChunkBudget   int64         `yaml:"chunkBudget"`
	BaseUrl       string        `yaml:"baseUrl" validate:"required"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type AuthConfig struct {
	Secret         string            `yaml:"secret" validate:"required"`
	TokenTTL       time.Duration     `yaml:"tokenTTL"`
	Users          map[string]string `yaml:"users" validate:"required"`
	PublicPrefixes []string          `yaml:"publicPrefixes"`
	LoginPath      string            `yaml:"loginPath"`
}

type PagesConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Upstream    UpstreamConfig `yaml:"upstream"`
	Video       VideoConfig    `yaml:"video"`
	Auth        AuthConfig     `yaml:"auth"`
	Pages       PagesConfig    `yaml:"pages"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
