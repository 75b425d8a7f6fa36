package service

import (
	"context"
	"strings"

	cutoffdomain "github.com/flexiworks/cetpredict/internal/cutoff/domain"
	obsmetrics "github.com/flexiworks/cetpredict/internal/observability/metrics"
	paymentdomain "github.com/flexiworks/cetpredict/internal/payment/domain"
	"github.com/flexiworks/cetpredict/internal/unlock/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	CutoffSvc  cutoffdomain.Service
	PaymentSvc paymentdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	cutoffSvc  cutoffdomain.Service
	paymentSvc paymentdomain.Service
	metrics    *obsmetrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("unlock.service"),
		cutoffSvc:  p.CutoffSvc,
		paymentSvc: p.PaymentSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) Unlock(ctx context.Context, q cutoffdomain.Query, orderID string) (domain.Result, error) {
	// The gate check comes first: nothing is computed for an unpaid order.
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || !s.paymentSvc.IsPaid(orderID) {
		s.metrics.RecordUnlockDenied(ctx)
		return domain.Result{}, paymentdomain.ErrNotConfirmed
	}

	eligible, err := s.cutoffSvc.ComputeEligible(ctx, q)
	if err != nil {
		return domain.Result{}, err
	}
	nearMiss, err := s.cutoffSvc.ComputeNearMiss(ctx, q, eligible)
	if err != nil {
		return domain.Result{}, err
	}

	round := strings.TrimSpace(q.Round)
	if round == "" {
		round = s.cutoffSvc.DefaultRound()
	}

	return domain.Result{
		Round:           round,
		EligibleCount:   len(eligible),
		GroupedEligible: s.cutoffSvc.GroupByBranch(eligible),
		NearMiss:        nearMiss,
	}, nil
}
