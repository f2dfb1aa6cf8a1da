package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	// ErrPublisherClosed 发布器已关闭
	ErrPublisherClosed = errors.New("event publisher closed")
	// ErrPublisherBusy 发送缓冲区已满
	ErrPublisherBusy = errors.New("event publisher buffer full")
)

// Publisher 订单事件发布接口
type Publisher interface {
	Publish(ctx context.Context, key string, env Envelope) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NoopPublisher 未启用 Kafka 时使用
type NoopPublisher struct{}

// Publish 丢弃事件
func (NoopPublisher) Publish(context.Context, string, Envelope) error { return nil }

// Close 无操作
func (NoopPublisher) Close() error { return nil }

// KafkaPublisher 基于 kafka-go 的异步发布器
// 事件先进入缓冲通道，由后台协程顺序写入
type KafkaPublisher struct {
	writer  messageWriter
	inbox   chan kafka.Message
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewPublisher 根据配置创建发布器，未启用时返回 NoopPublisher
func NewPublisher(cfg *config.KafkaConfig) Publisher {
	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 || strings.TrimSpace(cfg.Topic) == "" {
		return NoopPublisher{}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        strings.TrimSpace(cfg.Topic),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(writer, cfg.BufferSize)
}

func newKafkaPublisher(writer messageWriter, buffer int) *KafkaPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &KafkaPublisher{
		writer: writer,
		inbox:  make(chan kafka.Message, buffer),
		done:   make(chan struct{}),
	}
}

// Start 启动后台写入协程，ctx 取消后排空缓冲并关闭
func (p *KafkaPublisher) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	log := logger.Component("events")
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				p.markClosed()
				p.drain(log)
				return
			case msg, ok := <-p.inbox:
				if !ok {
					p.drain(log)
					return
				}
				p.write(log, msg)
			}
		}
	}()
}

func (p *KafkaPublisher) write(log *zap.SugaredLogger, msg kafka.Message) {
	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		log.Warnw("event_publish_failed", "key", string(msg.Key), "error", err)
	}
}

func (p *KafkaPublisher) drain(log *zap.SugaredLogger) {
	for msg := range p.inbox {
		p.write(log, msg)
	}
	if err := p.writer.Close(); err != nil {
		log.Warnw("event_writer_close_failed", "error", err)
	}
}

func (p *KafkaPublisher) markClosed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
}

// Publish 投递事件，缓冲区满时立即返回 ErrPublisherBusy
func (p *KafkaPublisher) Publish(ctx context.Context, key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrPublisherBusy
	}
}

// Close 停止接收新事件，等待缓冲中的事件写完
func (p *KafkaPublisher) Close() error {
	p.markClosed()
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		p.drain(logger.Component("events"))
		return nil
	}
	<-p.done
	return nil
}
