package payment

import (
	"github.com/flexiworks/cetpredict/internal/config"
	"github.com/flexiworks/cetpredict/internal/payment/gate"
	"github.com/flexiworks/cetpredict/internal/payment/razorpay"
	"github.com/flexiworks/cetpredict/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(gate.New),
	fx.Provide(newClient),
	fx.Provide(newWebhook),
	fx.Provide(service.NewService),
)

func newClient(cfg config.Config) *razorpay.Client {
	return razorpay.NewClient(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

func newWebhook(cfg config.Config) *razorpay.Webhook {
	return razorpay.NewWebhook(cfg.RazorpayWebhookSecret)
}
