package service

import (
	"strings"

	"github.com/ananas-next/internal/queue"
	"github.com/ananas-next/internal/repository"

	"github.com/hibiken/asynq"
)

// orderStatusEmailEnqueuer 订单状态邮件入队能力，由 *queue.Client 实现
type orderStatusEmailEnqueuer interface {
	Enabled() bool
	EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, opts ...asynq.Option) error
}

// enqueueOrderStatusEmailTaskIfEligible 订单有可用接收邮箱时入队状态邮件任务。
// 返回值 skipped 表示任务被跳过（队列未启用或无接收邮箱）。
func enqueueOrderStatusEmailTaskIfEligible(orderRepo repository.OrderRepository, enqueuer orderStatusEmailEnqueuer, orderID uint, status string) (skipped bool, err error) {
	if enqueuer == nil || !enqueuer.Enabled() || orderID == 0 {
		return true, nil
	}
	if orderRepo != nil {
		receiverEmail, lookupErr := orderRepo.ResolveReceiverEmail(orderID)
		if lookupErr == nil && strings.TrimSpace(receiverEmail) == "" {
			return true, nil
		}
	}
	if err := enqueuer.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID: orderID,
		Status:  strings.TrimSpace(status),
	}); err != nil {
		return false, err
	}
	return false, nil
}
