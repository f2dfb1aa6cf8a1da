package service

import (
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/i18n"
	"github.com/ananas-next/internal/models"
)

// EmailService 邮件发送服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否启用邮件发送
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// OrderEmailLine 邮件中的订单明细行
type OrderEmailLine struct {
	ProductName string
	Quantity    int
	UnitPrice   models.Money
}

// OrderEmailInput 订单邮件内容
type OrderEmailInput struct {
	OrderNo         string
	Status          string
	Amount          models.Money
	Currency        string
	ShippingAddress string
	Items           []OrderEmailLine
}

// OrderEmailLinesFrom 从订单项快照生成邮件明细
func OrderEmailLinesFrom(items []models.OrderItem) []OrderEmailLine {
	lines := make([]OrderEmailLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderEmailLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return lines
}

// SendOrderPlacedEmail 发送下单确认邮件
func (s *EmailService) SendOrderPlacedEmail(toEmail string, input OrderEmailInput, locale string) error {
	subject, body := buildOrderPlacedContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, input OrderEmailInput, locale string) error {
	subject, body := buildOrderStatusContent(input, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// smtpTransport 连接方式
type smtpTransport int

const (
	transportPlain smtpTransport = iota
	transportStartTLS
	transportImplicitTLS
)

func (s *EmailService) transport() smtpTransport {
	switch {
	case s.cfg.UseSSL:
		return transportImplicitTLS
	case s.cfg.UseTLS:
		return transportStartTLS
	default:
		return transportPlain
	}
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if !s.Enabled() {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	msg := buildEmailMessage(buildFromAddress(s.cfg.From, s.cfg.FromName), toEmail, subject, body)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	err := deliver(s.transport(), s.cfg.Host, s.cfg.Port, auth, s.cfg.From, toEmail, []byte(msg))
	return normalizeEmailSendError(err)
}

func buildOrderPlacedContent(input OrderEmailInput, locale string) (string, string) {
	subject := i18n.Sprintf(locale, "email.order_placed.subject", input.OrderNo)
	body := i18n.Sprintf(locale, "email.order_placed.body", input.OrderNo, input.Amount.String(), resolveCurrency(input.Currency), strings.TrimSpace(input.ShippingAddress))
	if len(input.Items) == 0 {
		return subject, body
	}
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(i18n.T(locale, "email.order_placed.items"))
	for _, line := range input.Items {
		fmt.Fprintf(&b, "\n- %s x%d: %s", line.ProductName, line.Quantity, line.UnitPrice.String())
	}
	return subject, b.String()
}

func buildOrderStatusContent(input OrderEmailInput, locale string) (string, string) {
	status := normalizeOrderStatus(input.Status)
	statusKey := "order.status." + status
	statusLabel := i18n.T(locale, statusKey)
	if status == "" || statusLabel == statusKey {
		statusLabel = strings.TrimSpace(input.Status)
	}
	subject := i18n.Sprintf(locale, "email.order_status.subject", statusLabel)
	amount := input.Amount.String()
	currency := resolveCurrency(input.Currency)
	if status == constants.OrderStatusCancelled {
		return subject, i18n.Sprintf(locale, "email.order_status.body_cancel", input.OrderNo, amount, currency)
	}
	return subject, i18n.Sprintf(locale, "email.order_status.body", input.OrderNo, statusLabel, amount, currency)
}

func resolveCurrency(currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return constants.SiteCurrencyDefault
	}
	return currency
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	return (&mail.Address{Name: mime.QEncoding.Encode("UTF-8", name), Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("UTF-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}

// deliver 建立连接、认证并投递一封邮件
func deliver(mode smtpTransport, host string, port int, auth smtp.Auth, from, to string, msg []byte) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	tlsConfig := &tls.Config{ServerName: host}

	var client *smtp.Client
	if mode == transportImplicitTLS {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return err
		}
		client, err = smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
	} else {
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return err
		}
	}
	defer client.Close()

	if mode == transportStartTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return err
}

var recipientRejectedHints = []string{
	"no such recipient",
	"no such user",
	"recipient not found",
	"recipient address rejected",
	"invalid recipient",
	"user unknown",
	"unknown user",
	"unknown mailbox",
	"mailbox unavailable",
}

// isEmailRecipientRejected 优先看 SMTP 状态码（550/553 永久拒收），否则按常见文案判断
func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) && (protoErr.Code == 550 || protoErr.Code == 553) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, hint := range recipientRejectedHints {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return false
}
