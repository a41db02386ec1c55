package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"placeprep_backend/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// 事件路由键
const (
	QuizCompleted = "quiz.completed"
)

// Publisher 发布领域事件，失败只记录日志，不影响主流程
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// QuizCompletedEvent 测验提交后发出
type QuizCompletedEvent struct {
	UserID     uint      `json:"userId"`
	QuizID     string    `json:"quizId"`
	Topic      string    `json:"topic"`
	Subtopic   string    `json:"subtopic"`
	Difficulty string    `json:"difficulty"`
	Source     string    `json:"source"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	TakenAt    time.Time `json:"takenAt"`
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload any) error { return nil }
func (NoopPublisher) Close() error                                                  { return nil }

// AMQPPublisher 向 topic 类型交换机发布 JSON 消息
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// channel 不是并发安全的
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// New 根据配置创建发布器，未启用或连接失败时退化为 NoopPublisher
func New(cfg config.EventsConfig, log *zap.Logger) Publisher {
	if !cfg.Enabled || cfg.AMQPURL == "" {
		return NoopPublisher{}
	}
	p, err := NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		log.Warn("Event publisher unavailable, events disabled", zap.Error(err))
		return NoopPublisher{}
	}
	log.Info("Event publisher connected", zap.String("exchange", cfg.Exchange))
	return p
}
