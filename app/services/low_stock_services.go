package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/notifications"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/mail"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"github.com/shashiranjanraj/bodega/pkg/notification"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/shashiranjanraj/bodega/pkg/workerpool"
)

// Sender delivers a notification. *notification.Notifier implements it.
type Sender interface {
	Send(ctx context.Context, n notification.Notification) error
}

// LowStockService finds products whose total stock fell below the threshold
// and alerts on them.
type LowStockService struct {
	sender    Sender
	events    *event.Bus
	threshold int
	workers   int
}

// NewLowStockService alerts through the configured webhook, Slack and mail
// channels.
func NewLowStockService() *LowStockService {
	n := notification.New(config.LowStockWebhookURL(), config.SlackWebhookURL()).
		WithMail(mail.New(mail.FromConfig()), config.LowStockMailTo()...)
	return NewLowStockServiceWith(n, config.LowStockThreshold())
}

func NewLowStockServiceWith(sender Sender, threshold int) *LowStockService {
	return &LowStockService{sender: sender, events: event.Default(), threshold: threshold, workers: 4}
}

// Threshold is the total quantity under which a product is alerted on.
func (s *LowStockService) Threshold() int { return s.threshold }

// Check alerts on the given products that are below the threshold.
func (s *LowStockService) Check(ctx context.Context, ids []uuid.UUID) ([]LowStockAlert, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := orm.DB().WithContext(ctx).Model(&models.Product{}).Preload("Stocks").
		Where("id IN ? AND is_active = ?", ids, true).
		Order("name").
		Get(&products)
	if err != nil {
		return nil, err
	}
	return s.alert(ctx, products)
}

// Scan alerts on every active, stocked product below the threshold.
func (s *LowStockService) Scan(ctx context.Context) ([]LowStockAlert, error) {
	var products []models.Product
	err := orm.DB().WithContext(ctx).Model(&models.Product{}).Preload("Stocks").
		Where("is_active = ?", true).
		Order("name").
		Get(&products)
	if err != nil {
		return nil, err
	}
	alerts, err := s.alert(ctx, products)
	metrics.LowStockProducts.Set(float64(len(alerts)))
	return alerts, err
}

func (s *LowStockService) alert(ctx context.Context, products []models.Product) ([]LowStockAlert, error) {
	var alerts []LowStockAlert
	for _, p := range products {
		// Products never stocked anywhere are left out, as in ProductService.LowStock.
		if len(p.Stocks) == 0 {
			continue
		}
		if total := p.TotalStock(); total < s.threshold {
			alerts = append(alerts, LowStockAlert{
				ProductID: p.ID, Name: p.Name, SKU: p.SKU, TotalStock: total, Threshold: s.threshold,
			})
		}
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	log := logger.WithCtx(ctx)
	pool := workerpool.New(s.workers)
	var mu sync.Mutex
	var sent int
	for _, a := range alerts {
		s.events.Fire(ctx, EventStockLow, a)
		err := pool.SubmitWait(ctx, func() {
			n := notifications.LowStock{
				ProductID: a.ProductID.String(), Name: a.Name, SKU: a.SKU,
				TotalStock: a.TotalStock, Threshold: a.Threshold,
			}
			if err := s.sender.Send(ctx, n); err != nil {
				log.Warn("low stock notification failed", "sku", a.SKU, "error", err)
				return
			}
			metrics.LowStockAlerts.Inc()
			mu.Lock()
			sent++
			mu.Unlock()
		})
		if err != nil {
			break
		}
	}
	pool.Shutdown()
	log.Info("low stock alerts", "products", len(alerts), "notified", sent)
	return alerts, ctx.Err()
}
