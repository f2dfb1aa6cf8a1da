package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/provider"
	"github.com/ananas-next/internal/queue"
	"github.com/ananas-next/internal/repository"
	"github.com/ananas-next/internal/service"

	"github.com/hibiken/asynq"
)

// orderMailer 订单邮件发送能力，由 *service.EmailService 实现
type orderMailer interface {
	Enabled() bool
	SendOrderPlacedEmail(toEmail string, input service.OrderEmailInput, locale string) error
	SendOrderStatusEmail(toEmail string, input service.OrderEmailInput, locale string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	OrderRepo repository.OrderRepository
	UserRepo  repository.UserRepository
	Mailer    orderMailer
	Currency  string
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{
		OrderRepo: c.OrderRepo,
		UserRepo:  c.UserRepo,
		Currency:  constants.SiteCurrencyDefault,
	}
	if c.EmailService != nil {
		consumer.Mailer = c.EmailService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlaced, c.handleOrderPlaced)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleOrderPlaced(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_placed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPlacedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_placed_unmarshal_failed", "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_placed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, receiver, locale, err := c.loadOrderReceiver(payload.OrderID)
	if err != nil || order == nil || receiver == "" {
		return err
	}
	if !c.mailerEnabled() {
		logger.Debugw("worker_order_placed_skip_email_disabled", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	input := service.OrderEmailInput{
		OrderNo:         order.OrderNo,
		Status:          order.Status,
		Amount:          order.TotalAmount,
		Currency:        c.Currency,
		ShippingAddress: order.ShippingAddress,
		Items:           service.OrderEmailLinesFrom(order.Items),
	}
	if err := c.Mailer.SendOrderPlacedEmail(receiver, input, locale); err != nil {
		logger.Warnw("worker_order_placed_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiver,
			"error", err,
		)
		return retryableEmailError(err)
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, receiver, locale, err := c.loadOrderReceiver(payload.OrderID)
	if err != nil || order == nil || receiver == "" {
		return err
	}
	if !c.mailerEnabled() {
		logger.Debugw("worker_order_status_email_skip_email_disabled", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	input := service.OrderEmailInput{
		OrderNo:         order.OrderNo,
		Status:          status,
		Amount:          order.TotalAmount,
		Currency:        c.Currency,
		ShippingAddress: order.ShippingAddress,
	}
	if err := c.Mailer.SendOrderStatusEmail(receiver, input, locale); err != nil {
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiver,
			"status", status,
			"error", err,
		)
		return retryableEmailError(err)
	}
	return nil
}

// loadOrderReceiver 读取订单及下单用户的邮箱与语言，订单或邮箱缺失时返回空值
func (c *Consumer) loadOrderReceiver(orderID uint) (*models.Order, string, string, error) {
	order, err := c.OrderRepo.GetByID(orderID)
	if err != nil {
		logger.Warnw("worker_fetch_order_failed", "order_id", orderID, "error", err)
		return nil, "", "", err
	}
	if order == nil {
		logger.Debugw("worker_skip_order_not_found", "order_id", orderID)
		return nil, "", "", nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return nil, "", "", err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return order, "", "", nil
	}
	return order, strings.TrimSpace(user.Email), strings.TrimSpace(user.Locale), nil
}

func (c *Consumer) mailerEnabled() bool {
	return c.Mailer != nil && c.Mailer.Enabled()
}

// retryableEmailError 收件人被拒或地址无效时不再重试
func retryableEmailError(err error) error {
	if errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}
