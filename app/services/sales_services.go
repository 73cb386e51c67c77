package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/repositories"
	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func orderRepo() *repositories.Repository[models.Order] {
	return repositories.New[models.Order]("created_at DESC",
		repositories.Preload{Path: "Customer"},
		repositories.Preload{Path: "Items", Args: []any{func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }}},
		repositories.Preload{Path: "Items.Product"},
		repositories.Preload{Path: "Payment"},
	)
}

// availableUnits sums qty - reserved over every stock row of product.
func availableUnits(ctx context.Context, db *gorm.DB, product uuid.UUID) (int, error) {
	var n int
	err := db.WithContext(ctx).Model(&models.Stock{}).
		Where("product_id = ?", product).
		Select("COALESCE(SUM(qty - reserved), 0)").
		Scan(&n).Error
	return n, err
}

// checkAvailable fails when qty units of product cannot be served.
func checkAvailable(ctx context.Context, db *gorm.DB, product uuid.UUID, qty int) error {
	available, err := availableUnits(ctx, db, product)
	if err != nil {
		return err
	}
	if qty > available {
		return invalid("qty", "not enough stock. available: %d, requested: %d", available, qty)
	}
	return nil
}

// loadProduct resolves a product reference from a request body.
func loadProduct(ctx context.Context, repo *repositories.Repository[models.Product], ref string) (*models.Product, error) {
	id, err := refID("product", ref)
	if err != nil {
		return nil, err
	}
	p, err := repo.Find(ctx, id)
	if orm.IsNotFound(err) {
		return nil, invalid("product", "product %s does not exist", id)
	}
	return p, err
}

// unitPrice is the requested price, or the product price when none or zero
// was sent.
func unitPrice(requested *decimal.Decimal, p *models.Product) decimal.Decimal {
	if requested == nil || requested.IsZero() {
		return p.Price
	}
	return requested.Round(2)
}

type CustomerInput struct {
	FullName *string `json:"full_name" validate:"required,max=200"`
	Email    *string `json:"email"     validate:"required,email,max=254"`
}

type CustomerService struct {
	crud[models.Customer]
	orders *repositories.Repository[models.Order]
}

func NewCustomerService() *CustomerService {
	return &CustomerService{
		crud: crud[models.Customer]{
			model: "customer",
			repo:  repositories.New[models.Customer]("full_name", repositories.Preload{Path: "Orders.Payment"}),
		},
		orders: orderRepo(),
	}
}

func (in CustomerInput) values() map[string]any {
	v := map[string]any{}
	if in.FullName != nil {
		v["full_name"] = trimmed(in.FullName)
	}
	if in.Email != nil {
		v["email"] = trimmed(in.Email)
	}
	return v
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c := models.Customer{FullName: trimmed(in.FullName), Email: trimmed(in.Email)}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, c.ID)
}

func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (*models.Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c.ID, in.values()); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, c.ID)
}

// Orders lists the customer's orders, newest first, with items and products.
func (s *CustomerService) Orders(ctx context.Context, id string) ([]models.Order, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.orders.Where(ctx, "customer_id = ?", c.ID)
}

type NewOrderItem struct {
	Product   *string          `json:"product"    validate:"required,uuid"`
	Qty       *int             `json:"qty"        validate:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"nullable,gte=0.01"`
}

type OrderCreateInput struct {
	Customer *string        `json:"customer" validate:"required,uuid"`
	Items    []NewOrderItem `json:"items"    validate:"required,dive"`
}

// OrderInput is the body of order updates. Items are written through
// /order-items.
type OrderInput struct {
	Customer *string `json:"customer" validate:"required,uuid"`
	Status   *string `json:"status"   validate:"nullable,in=PENDING,CANCELED"`
}

type OrderService struct {
	crud[models.Order]
	customers *repositories.Repository[models.Customer]
	products  *repositories.Repository[models.Product]
	events    *event.Bus
}

func NewOrderService() *OrderService {
	return &OrderService{
		crud:      crud[models.Order]{model: "order", repo: orderRepo()},
		customers: repositories.New[models.Customer]("full_name"),
		products:  repositories.New[models.Product]("name"),
		events:    event.Default(),
	}
}

// Create writes the order and its items in one transaction. Each item is
// checked against the product's unreserved stock.
func (s *OrderService) Create(ctx context.Context, in OrderCreateInput) (*models.Order, error) {
	customer, err := refID("customer", trimmed(in.Customer))
	if err != nil {
		return nil, err
	}
	if err := mustExist(ctx, s.customers, "customer", customer); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, invalid("items", "an order needs at least one item")
	}

	order := models.Order{Status: models.OrderPending, CustomerID: customer}
	err = orm.DB().WithContext(ctx).Transaction(func(tx *orm.Query) error {
		db := tx.Gorm()
		for _, it := range in.Items {
			p, err := loadProduct(ctx, s.products.WithDB(db), trimmed(it.Product))
			if err != nil {
				return err
			}
			if err := checkAvailable(ctx, db, p.ID, deref(it.Qty, 0)); err != nil {
				return err
			}
			order.Items = append(order.Items, models.OrderItem{
				Qty:       deref(it.Qty, 0),
				UnitPrice: unitPrice(it.UnitPrice, p),
				ProductID: p.ID,
			})
		}
		return writeError(tx.Create(&order))
	})
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("order created", "order_id", order.ID, "items", len(order.Items))
	return s.reload(ctx, order.ID)
}

func (s *OrderService) Update(ctx context.Context, id string, in OrderInput) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := map[string]any{}
	if in.Customer != nil {
		customer, err := refID("customer", *in.Customer)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.customers, "customer", customer); err != nil {
			return nil, err
		}
		v["customer_id"] = customer
	}
	if in.Status != nil && *in.Status != o.Status {
		if o.Status == models.OrderConfirmed {
			return nil, &StateError{Message: "confirmed orders cannot change status"}
		}
		v["status"] = *in.Status
	}
	if err := s.repo.Update(ctx, o.ID, v); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, o.ID)
}

// Confirm reserves stock for every item and marks the order CONFIRMED.
//
// For each item the product's stock rows with free units are locked and
// consumed largest first until the item's qty is covered. Either every item
// is covered or nothing is reserved.
func (s *OrderService) Confirm(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var reservations []StockReserved
	var products []uuid.UUID
	err = orm.DB().WithContext(ctx).Transaction(func(tx *orm.Query) error {
		var o models.Order
		err := tx.Model(&models.Order{}).ForUpdate().Preload("Items").Preload("Items.Product").
			Where("id = ?", oid).First(&o)
		if err != nil {
			return findError(err)
		}
		if o.Status != models.OrderPending {
			metrics.OrderConfirmFailures.WithLabelValues("state").Inc()
			return &StateError{Message: "only pending orders can be confirmed"}
		}

		for _, it := range o.Items {
			made, missing, err := reserve(tx, o.ID, it)
			if err != nil {
				return err
			}
			if missing > 0 {
				metrics.OrderConfirmFailures.WithLabelValues("insufficient_stock").Inc()
				name := it.ProductID.String()
				if it.Product != nil {
					name = it.Product.Name
				}
				return &StateError{Message: fmt.Sprintf("insufficient stock for %s. missing: %d", name, missing)}
			}
			reservations = append(reservations, made...)
			products = append(products, it.ProductID)
		}

		return tx.Model(&models.Order{}).Where("id = ?", o.ID).
			Updates(map[string]any{"status": models.OrderConfirmed})
	})
	if err != nil {
		var se *StateError
		if !errors.As(err, &se) && !errors.Is(err, ErrNotFound) {
			metrics.OrderConfirmFailures.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	units := 0
	for _, r := range reservations {
		units += r.Units
		s.events.Fire(ctx, EventStockReserved, r)
	}
	metrics.OrdersConfirmed.Inc()
	metrics.StockReserved.Add(float64(units))
	logger.WithCtx(ctx).Info("order confirmed", "order_id", oid, "reserved_units", units)
	s.events.Fire(ctx, EventOrderConfirmed, OrderConfirmed{OrderID: oid, ProductIDs: products})

	return s.reload(ctx, oid)
}

// reserve takes it.Qty units from the product's stock rows, largest free
// quantity first, and returns the reservations made and the units that
// could not be covered.
func reserve(tx *orm.Query, order uuid.UUID, it models.OrderItem) ([]StockReserved, int, error) {
	var stocks []models.Stock
	err := tx.Model(&models.Stock{}).ForUpdate().
		Where("product_id = ? AND qty > reserved", it.ProductID).
		Order("qty DESC").
		Get(&stocks)
	if err != nil {
		return nil, 0, err
	}

	remaining := it.Qty
	var made []StockReserved
	for _, st := range stocks {
		if remaining == 0 {
			break
		}
		take := min(st.AvailableQty(), remaining)
		if take <= 0 {
			continue
		}
		reserved := st.Reserved + take
		if err := tx.Model(&models.Stock{}).Where("id = ?", st.ID).
			Updates(map[string]any{"reserved": reserved}); err != nil {
			return nil, 0, writeError(err)
		}
		remaining -= take
		made = append(made, StockReserved{
			OrderID:     order,
			StockID:     st.ID,
			ProductID:   st.ProductID,
			WarehouseID: st.WarehouseID,
			Units:       take,
			Reserved:    reserved,
			Qty:         st.Qty,
		})
	}
	return made, remaining, nil
}

type OrderItemInput struct {
	Order     *string          `json:"order"      validate:"required,uuid"`
	Product   *string          `json:"product"    validate:"required,uuid"`
	Qty       *int             `json:"qty"        validate:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"nullable,gte=0.01"`
}

type OrderItemService struct {
	crud[models.OrderItem]
	orders   *repositories.Repository[models.Order]
	products *repositories.Repository[models.Product]
}

func NewOrderItemService() *OrderItemService {
	return &OrderItemService{
		crud: crud[models.OrderItem]{
			model: "order item",
			repo:  repositories.New[models.OrderItem]("created_at", repositories.Preload{Path: "Product"}),
		},
		orders:   repositories.New[models.Order]("created_at DESC"),
		products: repositories.New[models.Product]("name"),
	}
}

func (s *OrderItemService) Create(ctx context.Context, in OrderItemInput) (*models.OrderItem, error) {
	order, err := refID("order", trimmed(in.Order))
	if err != nil {
		return nil, err
	}
	if err := mustExist(ctx, s.orders, "order", order); err != nil {
		return nil, err
	}
	p, err := loadProduct(ctx, s.products, trimmed(in.Product))
	if err != nil {
		return nil, err
	}
	qty := deref(in.Qty, 0)
	if err := checkAvailable(ctx, orm.DB().Gorm(), p.ID, qty); err != nil {
		return nil, err
	}
	it := models.OrderItem{Qty: qty, UnitPrice: unitPrice(in.UnitPrice, p), OrderID: order, ProductID: p.ID}
	if err := s.repo.Create(ctx, &it); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, it.ID)
}

// Update re-checks stock whenever the product or the quantity changes.
func (s *OrderItemService) Update(ctx context.Context, id string, in OrderItemInput) (*models.OrderItem, error) {
	it, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := map[string]any{}
	if in.Order != nil {
		order, err := refID("order", *in.Order)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.orders, "order", order); err != nil {
			return nil, err
		}
		v["order_id"] = order
	}
	product := it.ProductID
	if in.Product != nil {
		p, err := loadProduct(ctx, s.products, *in.Product)
		if err != nil {
			return nil, err
		}
		product = p.ID
		v["product_id"] = p.ID
	}
	if in.Qty != nil {
		v["qty"] = *in.Qty
	}
	if in.UnitPrice != nil && !in.UnitPrice.IsZero() {
		v["unit_price"] = in.UnitPrice.Round(2)
	}
	if in.Qty != nil || in.Product != nil {
		if err := checkAvailable(ctx, orm.DB().Gorm(), product, deref(in.Qty, it.Qty)); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, it.ID, v); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, it.ID)
}

type PaymentInput struct {
	Method *string          `json:"method" validate:"required,in=CARD,TRANSFER,COD"`
	Amount *decimal.Decimal `json:"amount" validate:"required,gte=0.01"`
	Status *string          `json:"status" validate:"nullable,in=PENDING,CONFIRMED,FAILED"`
	Order  *string          `json:"order"  validate:"required,uuid"`
}

type PaymentService struct {
	crud[models.Payment]
	orders *repositories.Repository[models.Order]
	events *event.Bus
}

func NewPaymentService() *PaymentService {
	return &PaymentService{
		crud: crud[models.Payment]{
			model: "payment",
			repo:  repositories.New[models.Payment]("created_at DESC", repositories.Preload{Path: "Order.Customer"}),
		},
		orders: repositories.New[models.Order]("created_at DESC", repositories.Preload{Path: "Items"}),
		events: event.Default(),
	}
}

// checkAmount requires amount to equal the order's total.
func (s *PaymentService) checkAmount(ctx context.Context, order uuid.UUID, amount decimal.Decimal) error {
	o, err := s.orders.Find(ctx, order)
	if orm.IsNotFound(err) {
		return invalid("order", "order %s does not exist", order)
	}
	if err != nil {
		return err
	}
	total := o.TotalAmount()
	if !amount.Equal(total) {
		return invalid("amount", "payment amount (%s) does not match order total (%s)",
			amount.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func (s *PaymentService) Create(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	order, err := refID("order", trimmed(in.Order))
	if err != nil {
		return nil, err
	}
	amount := in.Amount.Round(2)
	if err := s.checkAmount(ctx, order, amount); err != nil {
		return nil, err
	}
	p := models.Payment{
		Method:  trimmed(in.Method),
		Amount:  amount,
		Status:  deref(in.Status, models.PaymentPending),
		OrderID: order,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, p.ID)
}

// Update checks the amount against the order total whenever either of
// them is sent.
func (s *PaymentService) Update(ctx context.Context, id string, in PaymentInput) (*models.Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := map[string]any{}
	order, amount := p.OrderID, p.Amount
	if in.Order != nil {
		if order, err = refID("order", *in.Order); err != nil {
			return nil, err
		}
		v["order_id"] = order
	}
	if in.Amount != nil {
		amount = in.Amount.Round(2)
		v["amount"] = amount
	}
	if in.Order != nil || in.Amount != nil {
		if err := s.checkAmount(ctx, order, amount); err != nil {
			return nil, err
		}
	}
	if in.Method != nil {
		v["method"] = trimmed(in.Method)
	}
	if in.Status != nil {
		v["status"] = *in.Status
	}
	if err := s.repo.Update(ctx, p.ID, v); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, p.ID)
}

// Confirm moves a PENDING payment to CONFIRMED.
func (s *PaymentService) Confirm(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PaymentPending {
		return nil, &StateError{Message: "only pending payments can be confirmed"}
	}
	if err := s.repo.Update(ctx, p.ID, map[string]any{"status": models.PaymentConfirmed}); err != nil {
		return nil, err
	}
	metrics.PaymentsConfirmed.WithLabelValues(p.Method).Inc()
	logger.WithCtx(ctx).Info("payment confirmed", "payment_id", p.ID, "order_id", p.OrderID)
	s.events.Fire(ctx, EventPaymentConfirmed, PaymentConfirmed{
		PaymentID: p.ID, OrderID: p.OrderID, Method: p.Method, Amount: p.Amount,
	})
	return s.reload(ctx, p.ID)
}
