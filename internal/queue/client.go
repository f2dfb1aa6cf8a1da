package queue

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列名称
	CriticalQueue = constants.QueueCritical

	defaultConcurrency = 10
	// 去重任务保留时长，窗口内同一 TaskID 不会重复入队
	dedupRetention = 24 * time.Hour
)

// Client asynq 客户端；队列关闭时所有入队操作都是空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderPlaced 推送下单任务，同一订单只会入队一次
func (c *Client) EnqueueOrderPlaced(payload OrderPlacedPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderPlacedTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(5),
		asynq.TaskID(OrderPlacedTaskID(payload)),
		asynq.Retention(dedupRetention),
	}, opts)
}

// EnqueueOrderStatusEmail 推送订单状态邮件任务，同一订单同一状态只会入队一次
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, []asynq.Option{
		asynq.Queue(DefaultQueue),
		asynq.TaskID(OrderStatusEmailTaskID(payload)),
		asynq.Retention(dedupRetention),
	}, opts)
}

// enqueue 调用方选项追加在默认选项之后，可覆盖默认值；TaskID 冲突视为已入队
func (c *Client) enqueue(task *asynq.Task, defaults, opts []asynq.Option) error {
	_, err := c.client.Enqueue(task, append(defaults, opts...)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}

// OrderPlacedTaskID 下单任务去重 ID
func OrderPlacedTaskID(payload OrderPlacedPayload) string {
	if no := strings.TrimSpace(payload.OrderNo); no != "" {
		return TaskOrderPlaced + ":" + no
	}
	return TaskOrderPlaced + ":" + strconv.FormatUint(uint64(payload.OrderID), 10)
}

// OrderStatusEmailTaskID 状态邮件去重 ID
func OrderStatusEmailTaskID(payload OrderStatusEmailPayload) string {
	return TaskOrderStatusEmail + ":" + strconv.FormatUint(uint64(payload.OrderID), 10) + ":" + strings.ToLower(strings.TrimSpace(payload.Status))
}

// BuildServerConfig 生成 worker 端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	server := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1, CriticalQueue: 2},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			server.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			server.Queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), server
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
