package kafka

import (
	"fmt"
	"time"
)

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers список брокеров через запятую: "broker1:9092,broker2:9092".
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:19092"`
	// Topic топик, в который публикуются входящие webhook-уведомления
	Topic string `env:"KAFKA_TOPIC" envDefault:"mercadopago.webhook.received"`
	// WriteTimeout верхняя граница на запись одного сообщения
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" envDefault:"5s"`
}

// Validate проверяет, что с конфигурацией можно создать writer
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	for _, b := range c.Brokers {
		if b == "" {
			return fmt.Errorf("KAFKA_BROKERS contains an empty broker address")
		}
	}
	if c.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("KAFKA_WRITE_TIMEOUT must be positive")
	}
	return nil
}
