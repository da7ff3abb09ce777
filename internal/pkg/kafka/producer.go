package kafka

import (
	"Beacon/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// 通知生命周期事件，供下游投递系统（邮件推送、站外渠道）消费
const (
	EventNotificationCreated  = "notification.created"
	EventNotificationArchived = "notification.archived"
)

// NotificationEvent 投递到事件总线的消息体
type NotificationEvent struct {
	Event          string    `json:"event"`
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	Audience       string    `json:"audience"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Producer 包装 sarama 同步生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// newSaramaConfig 统一初始化 sarama.Config，避免代码重复
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Retry.Max = 3
	c.Producer.Return.Successes = true

	return c
}

// NewProducer 构造事件生产者
func NewProducer(cfg *config.Config) (*Producer, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &Producer{
		producer: producer,
		topic:    cfg.Kafka.NotificationTopic,
	}, nil
}

// PublishNotificationEvent 发布通知事件，key 取通知 id 保证同一通知的事件有序
func (p *Producer) PublishNotificationEvent(ctx context.Context, event NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.NotificationID),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "notification event published",
		"event", event.Event,
		"notification_id", event.NotificationID,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// Close 关闭生产者连接
func (p *Producer) Close() error {
	return p.producer.Close()
}
