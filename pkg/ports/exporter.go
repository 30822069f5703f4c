package ports

import (
	"context"

	"github.com/botarmy/switchboard/pkg/domain"
)

// Exporter hands a finalized record to a downstream system. Delivery is not retried.
type Exporter interface {
	Export(ctx context.Context, e domain.Export) error
}
