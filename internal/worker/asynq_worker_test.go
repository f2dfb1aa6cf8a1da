package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/queue"
	"github.com/ananas-next/internal/repository"
	"github.com/ananas-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sentEmail struct {
	kind   string
	to     string
	input  service.OrderEmailInput
	locale string
}

type fakeMailer struct {
	disabled bool
	err      error
	sent     []sentEmail
}

func (m *fakeMailer) Enabled() bool {
	return !m.disabled
}

func (m *fakeMailer) SendOrderPlacedEmail(toEmail string, input service.OrderEmailInput, locale string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{kind: "placed", to: toEmail, input: input, locale: locale})
	return nil
}

func (m *fakeMailer) SendOrderStatusEmail(toEmail string, input service.OrderEmailInput, locale string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{kind: "status", to: toEmail, input: input, locale: locale})
	return nil
}

func setupConsumerTest(t *testing.T, mailer *fakeMailer) (*Consumer, *models.Order) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	user := &models.User{Email: "lan@example.com", PasswordHash: "x", Locale: "en-US"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	orderRepo := repository.NewOrderRepository(db)
	order := &models.Order{
		OrderNo:         "AN20261017000001",
		UserID:          user.ID,
		ShippingAddress: "1 Le Loi",
		PhoneNumber:     "0901234567",
		Status:          "pending",
		TotalAmount:     models.NewMoneyFromDecimal(decimal.RequireFromString("250")),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := orderRepo.Create(order, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	consumer := &Consumer{
		OrderRepo: orderRepo,
		UserRepo:  repository.NewUserRepository(db),
		Currency:  "VND",
	}
	if mailer != nil {
		consumer.Mailer = mailer
	}
	return consumer, order
}

func TestHandleOrderPlacedSendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	consumer, order := setupConsumerTest(t, mailer)

	task, err := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: order.ID, OrderNo: order.OrderNo})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderPlaced(context.Background(), task); err != nil {
		t.Fatalf("handle order placed failed: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(mailer.sent))
	}
	sent := mailer.sent[0]
	if sent.kind != "placed" || sent.to != "lan@example.com" || sent.locale != "en-US" {
		t.Fatalf("unexpected email: %+v", sent)
	}
	if sent.input.Amount.String() != "250.00" || sent.input.Currency != "VND" || sent.input.ShippingAddress != "1 Le Loi" {
		t.Fatalf("unexpected email input: %+v", sent.input)
	}
}

func TestHandleOrderStatusEmailUsesPayloadStatus(t *testing.T) {
	mailer := &fakeMailer{}
	consumer, order := setupConsumerTest(t, mailer)

	task, err := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: order.ID, Status: " shipped "})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("handle status email failed: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].kind != "status" || mailer.sent[0].input.Status != "shipped" {
		t.Fatalf("unexpected emails: %+v", mailer.sent)
	}
}

func TestHandleOrderTasksSkip(t *testing.T) {
	t.Run("missing_order", func(t *testing.T) {
		mailer := &fakeMailer{}
		consumer, _ := setupConsumerTest(t, mailer)
		task, _ := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: 999, Status: "shipped"})
		if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
			t.Fatalf("expected missing order skipped, got %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email")
		}
	})
	t.Run("email_disabled", func(t *testing.T) {
		mailer := &fakeMailer{disabled: true}
		consumer, order := setupConsumerTest(t, mailer)
		task, _ := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: order.ID})
		if err := consumer.handleOrderPlaced(context.Background(), task); err != nil {
			t.Fatalf("expected disabled mailer skipped, got %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email")
		}
	})
	t.Run("no_mailer", func(t *testing.T) {
		consumer, order := setupConsumerTest(t, nil)
		task, _ := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: order.ID})
		if err := consumer.handleOrderPlaced(context.Background(), task); err != nil {
			t.Fatalf("expected nil mailer skipped, got %v", err)
		}
	})
	t.Run("bad_payload", func(t *testing.T) {
		consumer, _ := setupConsumerTest(t, &fakeMailer{})
		task := asynq.NewTask(queue.TaskOrderPlaced, []byte("{"))
		if err := consumer.handleOrderPlaced(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("expected skip retry for bad payload, got %v", err)
		}
	})
}

func TestHandleOrderPlacedRetryPolicy(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{name: "recipient_rejected", err: service.ErrEmailRecipientRejected, skipRetry: true},
		{name: "invalid_email", err: service.ErrInvalidEmail, skipRetry: true},
		{name: "smtp_down", err: errors.New("dial tcp: connection refused"), skipRetry: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			consumer, order := setupConsumerTest(t, &fakeMailer{err: tc.err})
			task, _ := queue.NewOrderPlacedTask(queue.OrderPlacedPayload{OrderID: order.ID})
			err := consumer.handleOrderPlaced(context.Background(), task)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, asynq.SkipRetry); got != tc.skipRetry {
				t.Fatalf("skip retry want %v, got %v (%v)", tc.skipRetry, got, err)
			}
		})
	}
}
