package service

import (
	"strings"

	"github.com/ananas-next/internal/constants"
)

// orderStatusTransitions 订单状态流转表
// pending → processing → shipped → delivered，pending/processing 可取消
var orderStatusTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered},
}

// OrderStatuses 全部订单状态
func OrderStatuses() []string {
	return []string{
		constants.OrderStatusPending,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
	}
}

func normalizeOrderStatus(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "canceled" {
		return constants.OrderStatusCancelled
	}
	for _, status := range OrderStatuses() {
		if status == value {
			return value
		}
	}
	return ""
}

func canTransitOrderStatus(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isTerminalOrderStatus(status string) bool {
	return len(orderStatusTransitions[status]) == 0
}
