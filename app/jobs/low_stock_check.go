// Package jobs holds the background jobs run by the queue workers.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/queue"
)

const LowStockCheckName = "low_stock_check"

// LowStockCheckJob recomputes the stock of the products of a confirmed
// order and alerts on those that fell below the threshold.
type LowStockCheckJob struct {
	ProductIDs []string `json:"product_ids"`
}

func (LowStockCheckJob) JobName() string { return LowStockCheckName }

func (j *LowStockCheckJob) Handle(ctx context.Context) error {
	ids := make([]uuid.UUID, 0, len(j.ProductIDs))
	for _, raw := range j.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("low stock check: bad product id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	_, err := services.NewLowStockService().Check(ctx, ids)
	return err
}

// Register makes the jobs of this package decodable by m.
func Register(m *queue.Manager) {
	m.Register(LowStockCheckName, func() queue.Job { return &LowStockCheckJob{} })
}
