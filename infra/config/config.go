// Package config loads daemon configuration: defaults, optional YAML
// file, then environment overrides applied by the caller.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr        string `yaml:"addr"`
		MetricsAddr string `yaml:"metrics_addr"`
	} `yaml:"server"`
	Book struct {
		Symbol   string `yaml:"symbol"`
		RingSize uint64 `yaml:"ring_size"`
		EpochMs  int    `yaml:"epoch_interval_ms"`
	} `yaml:"book"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		TradesTopic string   `yaml:"trades_topic"`
		DepthTopic  string   `yaml:"depth_topic"`
	} `yaml:"kafka"`
	Outbox struct {
		Dir        string `yaml:"dir"`
		DrainMs    int    `yaml:"drain_interval_ms"`
		TruncateMs int    `yaml:"truncate_interval_ms"`
	} `yaml:"outbox"`
	Feed struct {
		DepthLevels int `yaml:"depth_levels"`
		DepthMs     int `yaml:"depth_interval_ms"`
	} `yaml:"feed"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":8080"
	c.Server.MetricsAddr = ":9090"
	c.Book.Symbol = "LOB"
	c.Book.RingSize = 1 << 18
	c.Book.EpochMs = 2000
	c.Kafka.Enabled = false
	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.TradesTopic = "lob.trades"
	c.Kafka.DepthTopic = "lob.depth"
	c.Outbox.Dir = "./outbox"
	c.Outbox.DrainMs = 250
	c.Outbox.TruncateMs = 60000
	c.Feed.DepthLevels = 10
	c.Feed.DepthMs = 1000
	return c
}

// Load returns defaults merged with the YAML file at path. An empty
// path skips the file; a missing file is an error.
func Load(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}
