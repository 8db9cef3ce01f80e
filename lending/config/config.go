package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Astemirdum/lending-service/pkg/cache"
	"github.com/Astemirdum/lending-service/pkg/geocoder"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/Astemirdum/lending-service/pkg/tracing"
)

type StoreDriver string

const (
	DriverMemory   StoreDriver = "memory"
	DriverPostgres StoreDriver = "postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LENDING_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LENDING_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type Sweeper struct {
	Interval  time.Duration `yaml:"interval" envconfig:"SWEEP_INTERVAL" default:"1m"`
	GraceDays int           `yaml:"graceDays" envconfig:"SWEEP_GRACE_DAYS" default:"0"`
	Disabled  bool          `yaml:"disabled" envconfig:"SWEEP_DISABLED"`
}

type GeocoderBreaker struct {
	RecordLength     int           `envconfig:"GEOCODER_CB_RECORDS" default:"20"`
	Timeout          time.Duration `envconfig:"GEOCODER_CB_TIMEOUT" default:"30s"`
	Percentile       float64       `envconfig:"GEOCODER_CB_PERCENTILE" default:"0.5"`
	RecoveryRequests int           `envconfig:"GEOCODER_CB_RECOVERY" default:"3"`
}

type Config struct {
	Server   HTTPServer  `yaml:"server"`
	Store    StoreDriver `yaml:"store" envconfig:"STORE_DRIVER"` // empty means memory
	Database postgres.DB `yaml:"db"`
	Sweeper  Sweeper     `yaml:"sweeper"`
	Kafka    kafka.Config
	// KafkaEnabled turns on event publishing; without it events are dropped.
	KafkaEnabled bool `envconfig:"KAFKA_ENABLED"`
	Redis        cache.Config
	Geocoder     geocoder.Config
	Breaker      GeocoderBreaker
	Tracing      tracing.Config
	Log          logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment. Options set defaults the environment may override.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
