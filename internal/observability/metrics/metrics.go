package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	eligibilityQueries metric.Int64Counter
	ordersCreated      metric.Int64Counter
	paymentEvents      metric.Int64Counter
	webhookRejected    metric.Int64Counter
	unlockDenied       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "cetpredict"
	}
	meter := provider.Meter(name)

	eligibilityQueries, err := meter.Int64Counter("cetpredict_eligibility_queries_total")
	if err != nil {
		return nil, err
	}
	ordersCreated, err := meter.Int64Counter("cetpredict_orders_created_total")
	if err != nil {
		return nil, err
	}
	paymentEvents, err := meter.Int64Counter("cetpredict_payment_events_total")
	if err != nil {
		return nil, err
	}
	webhookRejected, err := meter.Int64Counter("cetpredict_webhook_rejected_total")
	if err != nil {
		return nil, err
	}
	unlockDenied, err := meter.Int64Counter("cetpredict_unlock_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		eligibilityQueries: eligibilityQueries,
		ordersCreated:      ordersCreated,
		paymentEvents:      paymentEvents,
		webhookRejected:    webhookRejected,
		unlockDenied:       unlockDenied,
	}, nil
}

// RecordEligibilityQuery increments the query counter per round.
func (m *Metrics) RecordEligibilityQuery(ctx context.Context, round string) {
	if m == nil {
		return
	}
	m.eligibilityQueries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("round", strings.TrimSpace(round)),
	))
}

// RecordOrderCreated increments the order creation counter.
func (m *Metrics) RecordOrderCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCreated.Add(ctx, 1)
}

// RecordPaymentEvent increments the payment event counter per event kind.
func (m *Metrics) RecordPaymentEvent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.paymentEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
	))
}

// RecordWebhookRejected increments the rejected webhook counter.
func (m *Metrics) RecordWebhookRejected(ctx context.Context) {
	if m == nil {
		return
	}
	m.webhookRejected.Add(ctx, 1)
}

// RecordUnlockDenied increments the denied unlock counter.
func (m *Metrics) RecordUnlockDenied(ctx context.Context) {
	if m == nil {
		return
	}
	m.unlockDenied.Add(ctx, 1)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}
