package service

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"go-backoffice-api/internal/metrics"
	"go-backoffice-api/internal/model"
	"go-backoffice-api/internal/repository"
	"go-backoffice-api/pkg/mailer"
	"go-backoffice-api/pkg/money"
	"go-backoffice-api/pkg/validator"
)

type ConfirmationItem struct {
	Name     string          `json:"name" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

// ConfirmationRequest is everything the confirmation email shows.
type ConfirmationRequest struct {
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerName    string             `json:"customer_name" validate:"required"`
	OrderNumber     string             `json:"order_number" validate:"required"`
	Items           []ConfirmationItem `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal    `json:"total" validate:"gte=0"`
	ShippingAddress string             `json:"shipping_address"`
}

type NotificationService interface {
	SendOrderConfirmation(ctx context.Context, req *ConfirmationRequest) error
	ResendOrderConfirmation(ctx context.Context, orderID uuid.UUID) error
	ConfirmOrder(ctx context.Context, order *model.Order) error
}

type notificationService struct {
	mailer    mailer.Mailer
	orderRepo repository.OrderRepository
	now       func() time.Time
}

// NewNotificationService returns a service sending through m. A nil m makes
// every send fail with NotSupported.
func NewNotificationService(m mailer.Mailer, orderRepo repository.OrderRepository) NotificationService {
	return &notificationService{mailer: m, orderRepo: orderRepo, now: time.Now}
}

func (s *notificationService) SendOrderConfirmation(ctx context.Context, req *ConfirmationRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	return s.deliver(ctx, req)
}

func (s *notificationService) ResendOrderConfirmation(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return lookupError(err, "order %s", orderID)
	}
	return s.ConfirmOrder(ctx, order)
}

// ConfirmOrder emails the confirmation for a stored order and stamps
// confirmation_sent_at.
func (s *notificationService) ConfirmOrder(ctx context.Context, order *model.Order) error {
	req := ConfirmationRequest{
		CustomerEmail:   order.CustomerEmail,
		CustomerName:    order.CustomerName,
		OrderNumber:     order.OrderNumber,
		Total:           order.Total,
		ShippingAddress: order.ShippingAddress,
	}
	for _, it := range order.Items {
		req.Items = append(req.Items, ConfirmationItem{Name: it.ProductName, Quantity: it.Quantity, Price: it.UnitPrice})
	}
	if len(req.Items) == 0 {
		return errors.NotValidf("order %s without items", order.OrderNumber)
	}
	if err := s.deliver(ctx, &req); err != nil {
		return err
	}
	at := s.now()
	if err := s.orderRepo.MarkConfirmationSent(order.ID, at); err != nil {
		return errors.Annotate(err, "recording confirmation")
	}
	order.ConfirmationSentAt = &at
	return nil
}

func (s *notificationService) deliver(ctx context.Context, req *ConfirmationRequest) error {
	if s.mailer == nil {
		return errors.NotSupportedf("email delivery")
	}
	msg, err := RenderConfirmation(req)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(metrics.ResultFailed).Inc()
		logger.Errorf("order confirmation %s: %v", req.OrderNumber, err)
		return err
	}
	metrics.EmailsSent.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

type confirmationLine struct {
	Name     string
	Quantity int
	Price    string
	Amount   string
}

type confirmationView struct {
	CustomerName    string
	OrderNumber     string
	Lines           []confirmationLine
	Total           string
	ShippingAddress string
}

var confirmationText = template.Must(template.New("text").Parse(`Hi {{.CustomerName}},

Thank you for your order {{.OrderNumber}}.

{{range .Lines}}{{.Quantity}} x {{.Name}} @ {{.Price}} = {{.Amount}}
{{end}}
Total: {{.Total}}
{{if .ShippingAddress}}
Shipping to:
{{.ShippingAddress}}
{{end}}`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<p>Hi {{.CustomerName}},</p>
<p>Thank you for your order <strong>{{.OrderNumber}}</strong>.</p>
<table>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td><td>{{.Amount}}</td></tr>
{{end}}</table>
<p><strong>Total: {{.Total}}</strong></p>
{{if .ShippingAddress}}<p>Shipping to:<br>{{.ShippingAddress}}</p>{{end}}`))

// RenderConfirmation builds the confirmation email for req.
func RenderConfirmation(req *ConfirmationRequest) (mailer.Message, error) {
	view := confirmationView{
		CustomerName:    req.CustomerName,
		OrderNumber:     req.OrderNumber,
		Total:           money.Format(req.Total),
		ShippingAddress: req.ShippingAddress,
	}
	for _, it := range req.Items {
		view.Lines = append(view.Lines, confirmationLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    money.Format(it.Price),
			Amount:   money.Format(money.LineTotal(it.Quantity, it.Price)),
		})
	}

	var text, html bytes.Buffer
	if err := confirmationText.Execute(&text, view); err != nil {
		return mailer.Message{}, errors.Annotate(err, "rendering text body")
	}
	if err := confirmationHTML.Execute(&html, view); err != nil {
		return mailer.Message{}, errors.Annotate(err, "rendering html body")
	}
	return mailer.Message{
		To:      req.CustomerEmail,
		ToName:  req.CustomerName,
		Subject: "Order Confirmation - " + req.OrderNumber,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
