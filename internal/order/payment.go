package order

import (
	"context"
	"strings"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/servererrors"
	"github.com/pkg/errors"
)

// PaymentVerifier decides whether a capture confirmation settles an order.
type PaymentVerifier interface {
	Verify(ctx context.Context, order *model.Order, capture dto.PaymentCapture) (model.PaymentResult, error)
}

type StatusVerifier struct {
	accepted map[string]struct{}
}

// NewStatusVerifier accepts captures whose status is one of statuses,
// compared case-insensitively. With no statuses only COMPLETED is accepted.
func NewStatusVerifier(statuses ...string) *StatusVerifier {
	if len(statuses) == 0 {
		statuses = []string{"COMPLETED"}
	}
	accepted := make(map[string]struct{}, len(statuses))
	for _, s := range statuses {
		accepted[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &StatusVerifier{accepted: accepted}
}

func (v *StatusVerifier) Verify(_ context.Context, _ *model.Order, capture dto.PaymentCapture) (model.PaymentResult, error) {
	if strings.TrimSpace(capture.ID) == "" {
		return model.PaymentResult{}, servererrors.Validation(servererrors.ErrMissingTransactionID, map[string]string{"id": "is required"})
	}
	if _, ok := v.accepted[strings.ToUpper(capture.Status)]; !ok {
		return model.PaymentResult{}, servererrors.ExternalProvider(
			errors.Wrapf(servererrors.ErrPaymentNotCompleted, "status %q", capture.Status),
		)
	}
	return model.PaymentResult{
		ID:           capture.ID,
		Status:       capture.Status,
		UpdateTime:   capture.UpdateTime,
		EmailAddress: capture.Payer.EmailAddress,
	}, nil
}
