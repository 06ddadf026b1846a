// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
//
// Конфиг читается из YAML-файла, путь к которому задаётся переменной CONFIG_PATH.
// Секреты (ключи подписи токенов, ключи медиахранилища) можно переопределить
// переменными окружения.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string          `yaml:"env" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string          `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	Redis                   RedisConnection `yaml:"redis_connection"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	MediaStorage            MediaStorage    `yaml:"media_storage"`
	Uploads                 Uploads         `yaml:"uploads"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
	RateLimit               RateLimit       `yaml:"rate_limit"`
	Cache                   Cache           `yaml:"cache"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP   string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP   time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout   time.Duration `yaml:"idle_timeout" env-default:"60s"`
	MaxUploadSize int64         `yaml:"max_upload_size" env-default:"10485760"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken хранит секреты и время жизни access и refresh токенов.
type JWTToken struct {
	AccessSecret  string        `yaml:"access_secret" env:"ACCESS_TOKEN_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshSecret string        `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"240h"`
}

// MediaStorage параметры S3-совместимого хранилища, куда загружаются аватары и обложки.
type MediaStorage struct {
	Endpoint        string        `yaml:"endpoint"`
	Region          string        `yaml:"region" env-default:"us-east-1"`
	AccessKey       string        `yaml:"access_key" env:"MEDIA_ACCESS_KEY"`
	SecretKey       string        `yaml:"secret_key" env:"MEDIA_SECRET_KEY"`
	Bucket          string        `yaml:"bucket"`
	PublicBaseURL   string        `yaml:"public_base_url"`
	KeyPrefix       string        `yaml:"key_prefix" env-default:"media"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"30s"`
	CleanupReplaced bool          `yaml:"cleanup_replaced"`
}

// Uploads каталог для временного хранения загружаемых файлов.
type Uploads struct {
	TempDir string `yaml:"temp_dir" env-default:"./public/temp"`
}

// RabbitMQ подключение для публикации событий аккаунта. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"accounts"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit ограничение частоты запросов к эндпоинтам входа.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// Cache настройки кеширования профилей каналов. Нулевой TTL отключает кеш.
type Cache struct {
	ChannelProfileTTL time.Duration `yaml:"channel_profile_ttl" env-default:"15s"`
}

// Load читает конфиг из файла по пути path.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"JWTToken:\n"+
			"  AccessTTL: %s\n"+
			"  RefreshTTL: %s\n"+
			"MediaStorage:\n"+
			"  Endpoint: %s\n"+
			"  Bucket: %s\n"+
			"RabbitMQ enabled: %t\n",
		c.Env,
		c.MigrationsPath,
		c.HTTPServer.AddressHTTP,
		c.HTTPServer.TimeoutHTTP,
		c.HTTPServer.IdleTimeout,
		c.Redis.AddressRedis,
		c.Redis.DB,
		c.JWTToken.AccessTTL,
		c.JWTToken.RefreshTTL,
		c.MediaStorage.Endpoint,
		c.MediaStorage.Bucket,
		c.RabbitMQ.URL != "",
	)
}
