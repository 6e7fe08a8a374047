package kafka

import (
	"Inkwell/internal/api/config"
	"Inkwell/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	userFollowsConsumer sarama.ConsumerGroup
	userFollowsHandler  sarama.ConsumerGroupHandler

	postSharesConsumer sarama.ConsumerGroup
	postSharesHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, socialSvc service.SocialService) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	userFollowsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaUserFollowsConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	postSharesConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaPostShareConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = userFollowsConsumer.Close()
		return nil, err
	}

	return &ConsumerManager{
		userFollowsConsumer: userFollowsConsumer,
		userFollowsHandler:  NewUserFollowsHandler(socialSvc),
		postSharesConsumer:  postSharesConsumer,
		postSharesHandler:   NewPostSharesHandler(socialSvc),
	}, nil
}

// Start 启动所有消费者，阻塞至 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go m.consume(ctx, "User Follows", m.userFollowsConsumer, cfg.KafkaUserFollowsConsumer.Topic, m.userFollowsHandler)
	go m.consume(ctx, "Post Shares", m.postSharesConsumer, cfg.KafkaPostShareConsumer.Topic, m.postSharesHandler)

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.userFollowsConsumer.Close(); err != nil {
		log.Error("Failed to close follows consumer", "err", err)
	}
	if err := m.postSharesConsumer.Close(); err != nil {
		log.Error("Failed to close shares consumer", "err", err)
	}
	return nil
}

func (m *ConsumerManager) consume(ctx context.Context, name string, group sarama.ConsumerGroup, topic string, handler sarama.ConsumerGroupHandler) {
	log.Info(name+" consumer started", "topic", topic)
	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			log.Error("Error from consumer", "consumer", name, "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
