package mailer

import (
	"context"

	"esim-service/internal/domain"
)

type SinkInterface interface {
	SendEsimDelivery(ctx context.Context, email string, d domain.EsimDelivery) error
}

var _ SinkInterface = (*Mailer)(nil)
