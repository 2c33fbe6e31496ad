package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"

	SensorSerial = "serial"
	SensorNone   = "none"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8765"`
	Storage    Storage   `yaml:"storage"`
	Redis      Redis     `yaml:"redis"`
	Sensor     Sensor    `yaml:"sensor"`
	Detection  Detection `yaml:"detection"`
	Game       Game      `yaml:"game"`
}

type Storage struct {
	Driver   string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	FilePath string `yaml:"file-path" env:"STORAGE_FILE_PATH" env-default:"player_data.json"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Key      string `yaml:"key" env:"REDIS_KEY" env-default:"players:snapshot"`
}

type Sensor struct {
	Kind        string        `yaml:"kind" env:"SENSOR_KIND" env-default:"serial"`
	Port        string        `yaml:"port" env:"SENSOR_PORT" env-default:"/dev/ttyUSB0"`
	BaudRate    int           `yaml:"baud-rate" env:"SENSOR_BAUD_RATE" env-default:"9600"`
	ReadTimeout time.Duration `yaml:"read-timeout" env:"SENSOR_READ_TIMEOUT" env-default:"200ms"`
}

type Detection struct {
	Threshold     float64       `yaml:"threshold" env:"DETECTION_THRESHOLD" env-default:"30"`
	Debounce      time.Duration `yaml:"debounce" env:"DETECTION_DEBOUNCE" env-default:"500ms"`
	PollInterval  time.Duration `yaml:"poll-interval" env:"DETECTION_POLL_INTERVAL" env-default:"100ms"`
	SensorTimeout time.Duration `yaml:"sensor-timeout" env:"DETECTION_SENSOR_TIMEOUT" env-default:"250ms"`
	Reward        float64       `yaml:"reward" env:"DETECTION_REWARD" env-default:"0.5"`
}

type Game struct {
	LeaderboardSize     int           `yaml:"leaderboard-size" env:"LEADERBOARD_SIZE" env-default:"10"`
	LeaderboardInterval time.Duration `yaml:"leaderboard-interval" env:"LEADERBOARD_INTERVAL" env-default:"5s"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage.Driver {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", that.Storage.Driver)
	}

	switch that.Sensor.Kind {
	case SensorSerial, SensorNone:
	default:
		return fmt.Errorf("unknown sensor kind %q", that.Sensor.Kind)
	}

	if that.Detection.Threshold <= 0 {
		return fmt.Errorf("detection threshold must be positive, got %v", that.Detection.Threshold)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
