package config

import (
	"fmt"
	"time"

	"github.com/formaops/messaging-gateway/pkg/mq"
	"github.com/formaops/messaging-gateway/pkg/mysql"
	"github.com/spf13/viper"
)

type Config struct {
	API       API          `mapstructure:"api"`
	Database  mysql.Config `mapstructure:"database"`
	RabbitMQ  mq.Config    `mapstructure:"rabbitmq"`
	Provider  Provider     `mapstructure:"provider"`
	Broadcast Broadcast    `mapstructure:"broadcast"`
	Worker    Worker       `mapstructure:"worker"`
}

type API struct {
	Port string `mapstructure:"port"`
}

type Provider struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Broadcast struct {
	SendInterval time.Duration `mapstructure:"send_interval"`
}

type Worker struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	viper.SetDefault("provider.timeout", 30*time.Second)
	viper.SetDefault("broadcast.send_interval", time.Second)
	viper.SetDefault("worker.poll_interval", time.Minute)
	viper.SetDefault("worker.batch_size", 50)

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
