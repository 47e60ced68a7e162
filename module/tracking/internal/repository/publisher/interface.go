package publisher

import (
	"context"

	"github.com/Dhamar7-Torres/bovino-sub007/module/tracking/domain"
)

type AlertPublisher interface {
	Publish(ctx context.Context, alert *domain.Alert) error
}
