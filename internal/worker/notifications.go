package worker

// notifications.go
// Handlers for the notification queue:
//   - low_stock_alert: e-mails ALERT_EMAIL when an exit leaves a product at
//     or below its minimum stock
//   - order_receipt: renders the completed order PDF and mails it to the
//     customer
// SMTP calls go through the circuit breaker; an open breaker fails the job
// so the pool retries it later.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tireshop/internal/infra"
	"tireshop/internal/model"
	"tireshop/internal/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type LowStockAlertPayload struct {
	ProductID    string `json:"product_id"`
	Description  string `json:"description"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
}

type OrderReceiptPayload struct {
	OrderID string `json:"order_id"`
	Email   string `json:"email"`
}

// Mailer is the slice of infra.Mailer the handlers use.
type Mailer interface {
	Enabled() bool
	Send(msg infra.Message) error
}

// OrderLoader loads an order with customer and lines preloaded.
type OrderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
}

type NotificationWorker struct {
	mailer     Mailer
	cb         *infra.CircuitBreaker
	orders     OrderLoader
	shopName   string
	alertEmail string
}

func NewNotificationWorker(mailer Mailer, cb *infra.CircuitBreaker, orders OrderLoader, shopName, alertEmail string) *NotificationWorker {
	return &NotificationWorker{
		mailer:     mailer,
		cb:         cb,
		orders:     orders,
		shopName:   shopName,
		alertEmail: alertEmail,
	}
}

// Handlers maps every job type to its handler for NewPool.
func (w *NotificationWorker) Handlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		JobLowStockAlert: w.LowStockAlert,
		JobOrderReceipt:  w.OrderReceipt,
	}
}

func (w *NotificationWorker) LowStockAlert(_ context.Context, raw json.RawMessage) error {
	var p LowStockAlertPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	if w.alertEmail == "" {
		log.Debug().Str("product_id", p.ProductID).Msg("notifications: ALERT_EMAIL not set, skipping low stock alert")
		return nil
	}

	body := fmt.Sprintf(
		"O produto %s está com estoque baixo.\n\nEstoque atual: %d\nEstoque mínimo: %d\n",
		p.Description, p.CurrentStock, p.MinStock,
	)
	return w.send(infra.Message{
		To:      []string{w.alertEmail},
		Subject: fmt.Sprintf("[%s] Estoque baixo: %s", w.shopName, p.Description),
		Body:    body,
	})
}

func (w *NotificationWorker) OrderReceipt(ctx context.Context, raw json.RawMessage) error {
	var p OrderReceiptPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	if p.Email == "" {
		return fmt.Errorf("%w: empty e-mail", ErrPermanent)
	}
	id, err := uuid.Parse(p.OrderID)
	if err != nil {
		return fmt.Errorf("%w: order_id %q", ErrPermanent, p.OrderID)
	}

	order, err := w.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %s not found", ErrPermanent, p.OrderID)
	}
	if err != nil {
		return err
	}

	pdf, err := infra.RenderServiceOrderPDF(infra.OrderDocumentFromModel(order, w.shopName))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	body := fmt.Sprintf(
		"Olá!\n\nSua ordem de serviço nº %d foi concluída.\nTotal: %s\n\nO comprovante segue em anexo.\n\n%s\n",
		order.Number, money.FormatBRL(order.TotalAmount), w.shopName,
	)
	return w.send(infra.Message{
		To:      []string{p.Email},
		Subject: fmt.Sprintf("%s - Ordem de serviço nº %d concluída", w.shopName, order.Number),
		Body:    body,
		Attachments: []infra.Attachment{{
			Name:        fmt.Sprintf("os-%d.pdf", order.Number),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
}

func (w *NotificationWorker) send(msg infra.Message) error {
	if !w.mailer.Enabled() {
		log.Debug().Strs("to", msg.To).Msg("notifications: SMTP disabled, message dropped")
		return nil
	}
	if w.cb == nil {
		return w.mailer.Send(msg)
	}
	return w.cb.Execute(func() error { return w.mailer.Send(msg) })
}
