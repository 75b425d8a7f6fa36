package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/flexiworks/cetpredict/internal/config"
	obsmetrics "github.com/flexiworks/cetpredict/internal/observability/metrics"
	"github.com/flexiworks/cetpredict/internal/payment/domain"
	"github.com/flexiworks/cetpredict/internal/payment/gate"
	"github.com/flexiworks/cetpredict/internal/payment/razorpay"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Gate    *gate.Gate
	Client  *razorpay.Client
	Webhook *razorpay.Webhook
	GenID   *snowflake.Node
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	currency string
	gate     *gate.Gate
	client   *razorpay.Client
	webhook  *razorpay.Webhook
	genID    *snowflake.Node
	metrics  *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		currency: p.Cfg.Currency,
		gate:     p.Gate,
		client:   p.Client,
		webhook:  p.Webhook,
		genID:    p.GenID,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateOrder(ctx context.Context, amountMinor int64) (domain.Order, error) {
	receipt := "rcpt_" + s.genID.Generate().String()

	resource, err := s.client.CreateOrder(ctx, amountMinor, s.currency, receipt)
	if err != nil {
		s.log.Error("provider order creation failed", zap.Error(err))
		return domain.Order{}, domain.ErrProviderUnavailable
	}

	order := domain.Order{
		ID:        resource.ID,
		Amount:    resource.Amount,
		Currency:  resource.Currency,
		Receipt:   receipt,
		Status:    domain.OrderCreated,
		CreatedAt: time.Now().UTC(),
	}
	s.gate.Track(order)
	s.metrics.RecordOrderCreated(ctx)

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)
	return order, nil
}

func (s *Service) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.webhook.Verify(ctx, payload, headers); err != nil {
		s.metrics.RecordWebhookRejected(ctx)
		s.log.Warn("webhook signature rejected")
		return err
	}

	event, err := s.webhook.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			return nil
		}
		return err
	}

	if s.gate.MarkPaid(event.OrderID) {
		s.metrics.RecordPaymentEvent(ctx, event.Kind)
		s.log.Info("order confirmed paid",
			zap.String("order_id", event.OrderID),
			zap.String("via", "webhook"),
			zap.String("event", event.Kind),
		)
	}
	return nil
}

func (s *Service) IsPaid(orderID string) bool {
	return s.gate.IsPaid(orderID)
}

func (s *Service) ConfirmPaid(ctx context.Context, orderID string) bool {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return false
	}
	if s.gate.IsPaid(orderID) {
		return true
	}

	resource, err := s.client.FetchOrder(ctx, orderID)
	if err != nil {
		// Fail safe closed: the client retries rather than spuriously unlocking.
		s.log.Warn("provider status poll failed", zap.String("order_id", orderID), zap.Error(err))
		return false
	}
	if strings.EqualFold(strings.TrimSpace(resource.Status), "paid") {
		if s.gate.MarkPaid(orderID) {
			s.metrics.RecordPaymentEvent(ctx, "poll")
			s.log.Info("order confirmed paid",
				zap.String("order_id", orderID),
				zap.String("via", "poll"),
			)
		}
		return true
	}
	return false
}
