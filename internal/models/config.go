package models

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/chrisdamba/bookrfm/internal/errors"
	"github.com/chrisdamba/bookrfm/internal/logging"
)

type ScoreOrientation string

const (
	// OrientationNTile reports the raw quintile: 1 is the first (best) group.
	OrientationNTile ScoreOrientation = "ntile"
	// OrientationScore reports 6 - quintile so 5 is best.
	OrientationScore ScoreOrientation = "score"
)

const (
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
	SourceCSV      = "csv"

	OutputConsole  = "console"
	OutputJSON     = "json"
	OutputCSV      = "csv"
	OutputParquet  = "parquet"
	OutputKafka    = "kafka"
	OutputPostgres = "postgres"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type SourceConfig struct {
	Kind           string        `mapstructure:"kind"`
	DSN            string        `mapstructure:"dsn"`
	CSVDir         string        `mapstructure:"csv_dir"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type OutputConfig struct {
	Destination string `mapstructure:"destination"`
	Storage     string `mapstructure:"storage"`
	Path        string `mapstructure:"path"`
	Folder      string `mapstructure:"folder"`
}

type RFMConfig struct {
	Workers     int              `mapstructure:"workers"`
	Orientation ScoreOrientation `mapstructure:"orientation"`
}

type ReportsConfig struct {
	TopN              int `mapstructure:"top_n"`
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

type SeedConfig struct {
	Seed           int64     `mapstructure:"seed"`
	Books          int       `mapstructure:"books"`
	Customers      int       `mapstructure:"customers"`
	MarketingRows  int       `mapstructure:"marketing_rows"`
	StartDate      time.Time `mapstructure:"start_date"`
	EndDate        time.Time `mapstructure:"end_date"`
	BatchSize      int       `mapstructure:"batch_size"`
	CreateSchema   bool      `mapstructure:"create_schema"`
	TruncateTables bool      `mapstructure:"truncate"`
	IDStyle        string    `mapstructure:"id_style"`
}

type KafkaConfig struct {
	BrokerList       string `mapstructure:"broker_list"`
	TopicPrefix      string `mapstructure:"topic_prefix"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
	Endpoint   string `mapstructure:"endpoint"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	Source       SourceConfig       `mapstructure:"source"`
	Output       OutputConfig       `mapstructure:"output"`
	RFM          RFMConfig          `mapstructure:"rfm"`
	Reports      ReportsConfig      `mapstructure:"reports"`
	Seed         SeedConfig         `mapstructure:"seed"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      logging.Config     `mapstructure:"logging"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", SourceCSV)
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.csv_dir", "data")
	v.SetDefault("source.connect_timeout", "5s")

	v.SetDefault("output.destination", OutputConsole)
	v.SetDefault("output.storage", StorageLocal)
	v.SetDefault("output.path", "output")
	v.SetDefault("output.folder", "reports")

	v.SetDefault("rfm.workers", 1)
	v.SetDefault("rfm.orientation", string(OrientationNTile))

	v.SetDefault("reports.top_n", 10)
	v.SetDefault("reports.low_stock_threshold", 10)

	v.SetDefault("seed.seed", 42)
	v.SetDefault("seed.books", 200)
	v.SetDefault("seed.customers", 500)
	v.SetDefault("seed.marketing_rows", 800)
	v.SetDefault("seed.start_date", "2024-01-01T00:00:00Z")
	v.SetDefault("seed.end_date", "2024-12-31T00:00:00Z")
	v.SetDefault("seed.batch_size", 500)
	v.SetDefault("seed.create_schema", false)
	v.SetDefault("seed.truncate", false)
	v.SetDefault("seed.id_style", "sequential")

	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("kafka.topic_prefix", "bookrfm.")
	v.SetDefault("kafka.session_timeout_ms", 45000)

	v.SetDefault("cloud_storage.provider", StorageS3)
	v.SetDefault("cloud_storage.region", "us-east-1")
	v.SetDefault("cloud_storage.bucket_name", "")
	v.SetDefault("cloud_storage.endpoint", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "bookstore")
	v.SetDefault("database.sslmode", "disable")

	def := logging.DefaultConfig()
	v.SetDefault("logging.level", def.Level)
	v.SetDefault("logging.format", def.Format)
	v.SetDefault("logging.output", def.Output)
	v.SetDefault("logging.development", def.Development)
}

// LoadConfig initializes and reads the configuration using the global Viper instance
func LoadConfig(cfgFile string) (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), cfgFile)
}

// LoadConfigFrom reads cfgFile (or examples/config.json when empty) into v and decodes it.
// A missing default file is not an error; defaults and environment still apply.
func LoadConfigFrom(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath("examples")
		v.SetConfigName("config")
		v.SetConfigType("json")
	}

	v.SetEnvPrefix("BOOKRFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	switch cfg.Source.Kind {
	case SourcePostgres, SourceMySQL:
		if cfg.Source.DSN == "" {
			return errors.Config(fmt.Sprintf("source.dsn is required for source %q", cfg.Source.Kind))
		}
	case SourceCSV:
		if cfg.Source.CSVDir == "" {
			return errors.Config("source.csv_dir is required for csv source")
		}
	default:
		return errors.Config(fmt.Sprintf("unsupported source kind: %q", cfg.Source.Kind))
	}

	switch cfg.Output.Destination {
	case OutputConsole, OutputJSON, OutputCSV, OutputKafka, OutputPostgres:
	case OutputParquet:
		switch cfg.Output.Storage {
		case StorageLocal:
		case StorageS3:
			if cfg.CloudStorage.BucketName == "" {
				return errors.Config("cloud_storage.bucket_name is required for remote parquet output")
			}
		default:
			return errors.Config(fmt.Sprintf("unsupported output storage: %q", cfg.Output.Storage))
		}
	default:
		return errors.Config(fmt.Sprintf("unsupported output destination: %q", cfg.Output.Destination))
	}

	if cfg.RFM.Workers < 1 {
		return errors.Config("rfm.workers must be at least 1")
	}
	if cfg.RFM.Orientation != OrientationNTile && cfg.RFM.Orientation != OrientationScore {
		return errors.Config(fmt.Sprintf("unsupported rfm.orientation: %q", cfg.RFM.Orientation))
	}
	if cfg.Reports.TopN < 1 {
		return errors.Config("reports.top_n must be at least 1")
	}
	if cfg.Reports.LowStockThreshold < 0 {
		return errors.Config("reports.low_stock_threshold must not be negative")
	}
	if cfg.Seed.EndDate.Before(cfg.Seed.StartDate) {
		return errors.Config("seed.end_date is before seed.start_date")
	}
	return nil
}
