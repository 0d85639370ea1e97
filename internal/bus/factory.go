package bus

import (
	"fmt"
	"strings"
)

// Config selects the bus implementation.
type Config struct {
	Type         string `mapstructure:"type"`
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaGroup   string `mapstructure:"kafka_group"`
}

// New creates a Bus instance based on the configuration.
func New(cfg Config) (Bus, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		return NewMemoryBus(), nil

	case "kafka":
		brokers := ParseKafkaBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka brokers not configured")
		}
		return NewKafkaBus(KafkaConfig{
			Brokers:       brokers,
			ConsumerGroup: cfg.KafkaGroup,
		})

	default:
		return nil, fmt.Errorf("unknown bus type: %s", cfg.Type)
	}
}

// ParseKafkaBrokers splits a comma-separated broker list.
func ParseKafkaBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
