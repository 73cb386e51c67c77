package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/repositories"
)

type WarehouseInput struct {
	Name *string `json:"name" validate:"required,max=100"`
	City *string `json:"city" validate:"required,max=100"`
}

type WarehouseService struct {
	crud[models.Warehouse]
	stocks *repositories.Repository[models.Stock]
}

func NewWarehouseService() *WarehouseService {
	return &WarehouseService{
		crud: crud[models.Warehouse]{
			model: "warehouse",
			repo: repositories.New[models.Warehouse]("city, name",
				repositories.Preload{Path: "Stocks", Args: []any{"qty > ?", 0}},
			),
		},
		stocks: repositories.New[models.Stock]("qty DESC",
			repositories.Preload{Path: "Product.Brand"},
			repositories.Preload{Path: "Product.Category"},
			repositories.Preload{Path: "Warehouse"},
		),
	}
}

func (in WarehouseInput) values() map[string]any {
	v := map[string]any{}
	if in.Name != nil {
		v["name"] = trimmed(in.Name)
	}
	if in.City != nil {
		v["city"] = trimmed(in.City)
	}
	return v
}

func (s *WarehouseService) Create(ctx context.Context, in WarehouseInput) (*models.Warehouse, error) {
	w := models.Warehouse{Name: trimmed(in.Name), City: trimmed(in.City)}
	if err := s.repo.Create(ctx, &w); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, w.ID)
}

func (s *WarehouseService) Update(ctx context.Context, id string, in WarehouseInput) (*models.Warehouse, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, w.ID, in.values()); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, w.ID)
}

// Stock lists the warehouse's stock rows with product, brand and category.
func (s *WarehouseService) Stock(ctx context.Context, id string) ([]models.Stock, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stocks.Where(ctx, "warehouse_id = ?", w.ID)
}

type StockInput struct {
	Qty       *int    `json:"qty"       validate:"nullable,gte=0"`
	Reserved  *int    `json:"reserved"  validate:"nullable,gte=0"`
	Product   *string `json:"product"   validate:"required,uuid"`
	Warehouse *string `json:"warehouse" validate:"required,uuid"`
}

type StockService struct {
	crud[models.Stock]
	products   *repositories.Repository[models.Product]
	warehouses *repositories.Repository[models.Warehouse]
}

func NewStockService() *StockService {
	return &StockService{
		crud: crud[models.Stock]{
			model: "stock",
			repo: repositories.New[models.Stock]("created_at",
				repositories.Preload{Path: "Product"},
				repositories.Preload{Path: "Warehouse"},
			),
		},
		products:   repositories.New[models.Product]("name"),
		warehouses: repositories.New[models.Warehouse]("city, name"),
	}
}

func (s *StockService) values(ctx context.Context, in StockInput) (map[string]any, error) {
	v := map[string]any{}
	if in.Qty != nil {
		v["qty"] = *in.Qty
	}
	if in.Reserved != nil {
		v["reserved"] = *in.Reserved
	}
	if in.Product != nil {
		id, err := refID("product", *in.Product)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.products, "product", id); err != nil {
			return nil, err
		}
		v["product_id"] = id
	}
	if in.Warehouse != nil {
		id, err := refID("warehouse", *in.Warehouse)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.warehouses, "warehouse", id); err != nil {
			return nil, err
		}
		v["warehouse_id"] = id
	}
	return v, nil
}

// checkReserved rejects reserved > qty before the CHECK constraint does.
func checkReserved(qty, reserved int) error {
	if reserved > qty {
		return invalid("reserved", "reserved (%d) cannot exceed qty (%d)", reserved, qty)
	}
	return nil
}

func (s *StockService) Create(ctx context.Context, in StockInput) (*models.Stock, error) {
	v, err := s.values(ctx, in)
	if err != nil {
		return nil, err
	}
	st := models.Stock{Qty: deref(in.Qty, 0), Reserved: deref(in.Reserved, 0)}
	if err := checkReserved(st.Qty, st.Reserved); err != nil {
		return nil, err
	}
	st.ProductID, _ = v["product_id"].(uuid.UUID)
	st.WarehouseID, _ = v["warehouse_id"].(uuid.UUID)
	if err := s.repo.Create(ctx, &st); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, st.ID)
}

func (s *StockService) Update(ctx context.Context, id string, in StockInput) (*models.Stock, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.values(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := checkReserved(deref(in.Qty, st.Qty), deref(in.Reserved, st.Reserved)); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, st.ID, v); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, st.ID)
}

// Available lists stock rows that still have unreserved units.
func (s *StockService) Available(ctx context.Context) ([]models.Stock, error) {
	return s.repo.Where(ctx, "qty > reserved")
}
