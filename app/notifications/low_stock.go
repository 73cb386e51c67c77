// Package notifications holds the messages sent over pkg/notification.
package notifications

import (
	"fmt"

	"github.com/shashiranjanraj/bodega/pkg/notification"
)

// LowStock tells operators that a product is running out.
type LowStock struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	SKU        string `json:"sku"`
	TotalStock int    `json:"total_stock"`
	Threshold  int    `json:"threshold"`
}

func (LowStock) Via() []string {
	return []string{notification.ChannelWebhook, notification.ChannelSlack, notification.ChannelMail}
}

func (n LowStock) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		Payload: map[string]any{"event": "stock.low", "product": n},
		Headers: map[string]string{"X-Bodega-Event": "stock.low"},
	}
}

func (n LowStock) ToSlack() notification.SlackData {
	color := "warning"
	if n.TotalStock == 0 {
		color = "danger"
	}
	return notification.SlackData{
		Text: fmt.Sprintf("Low stock: %s (%s)", n.Name, n.SKU),
		Attachments: []notification.SlackAttachment{{
			Color:  color,
			Title:  n.SKU,
			Text:   fmt.Sprintf("%d units left across all warehouses (threshold %d)", n.TotalStock, n.Threshold),
			Footer: "bodega",
		}},
	}
}

func (n LowStock) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Low stock: %s (%s)", n.Name, n.SKU),
		Text: fmt.Sprintf("%s (%s) has %d units left across all warehouses.\nThe alert threshold is %d.\n\nProduct id: %s\n",
			n.Name, n.SKU, n.TotalStock, n.Threshold, n.ProductID),
	}
}
