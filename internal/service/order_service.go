package service

import (
	"context"
	"strings"
	"time"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/events"
	"github.com/ananas-next/internal/logger"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/queue"
	"github.com/ananas-next/internal/repository"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	queueClient *queue.Client
	publisher   events.Publisher
	producer    string
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, queueClient *queue.Client, publisher events.Publisher, producer string) *OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OrderService{
		orderRepo:   orderRepo,
		queueClient: queueClient,
		publisher:   publisher,
		producer:    producer,
	}
}

// AdminOrderListInput 后台订单列表筛选
type AdminOrderListInput struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// GetConfirmation 获取下单确认信息，订单不存在或不属于该用户时返回 ErrOrderNotFound
func (s *OrderService) GetConfirmation(userID, orderID uint) (*models.Order, error) {
	if userID == 0 || orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 用户订单历史
func (s *OrderService) ListByUser(userID uint, page, pageSize int) ([]models.Order, int64, error) {
	if userID == 0 {
		return nil, 0, ErrInvalidInput
	}
	page, pageSize = normalizePage(page, pageSize)
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return orders, total, nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(input AdminOrderListInput) ([]models.Order, int64, error) {
	status := ""
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status = normalizeOrderStatus(raw)
		if status == "" {
			return nil, 0, ErrInvalidOrderStatus
		}
	}
	page, pageSize := normalizePage(input.Page, input.PageSize)
	orders, total, err := s.orderRepo.ListAdmin(repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      input.UserID,
		Status:      status,
		OrderNo:     strings.TrimSpace(input.OrderNo),
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return orders, total, nil
}

// GetAdmin 后台订单详情
func (s *OrderService) GetAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, storageError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus 后台修改订单状态，只允许流转表中的迁移
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, targetStatus string) (*models.Order, error) {
	target := normalizeOrderStatus(targetStatus)
	if target == "" {
		return nil, ErrInvalidOrderStatus
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, storageError(err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == target {
		return order, nil
	}
	if isTerminalOrderStatus(order.Status) || !canTransitOrderStatus(order.Status, target) {
		return nil, ErrInvalidOrderStatus
	}

	affected, err := s.orderRepo.UpdateStatus(order.ID, order.Status, target)
	if err != nil {
		return nil, storageError(err)
	}
	if affected == 0 {
		latest, err := s.orderRepo.GetByID(order.ID)
		if err != nil {
			return nil, storageError(err)
		}
		if latest == nil {
			return nil, ErrOrderNotFound
		}
		return nil, ErrConcurrencyConflict
	}

	fromStatus := order.Status
	order.Status = target
	order.UpdatedAt = time.Now()
	s.afterStatusChanged(ctx, order, fromStatus)
	return order, nil
}

func (s *OrderService) afterStatusChanged(ctx context.Context, order *models.Order, fromStatus string) {
	var enqueuer orderStatusEmailEnqueuer
	if s.queueClient != nil {
		enqueuer = s.queueClient
	}
	if _, err := enqueueOrderStatusEmailTaskIfEligible(s.orderRepo, enqueuer, order.ID, order.Status); err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}

	env, err := events.NewEnvelope(constants.EventOrderStatusChanged, s.producer, order.OrderNo, events.OrderStatusChangedPayload{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, order.OrderNo, env)
	}
	if err != nil {
		logger.Warnw("order_publish_status_changed_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}
