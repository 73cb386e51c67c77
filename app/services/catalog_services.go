package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/repositories"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// activeProducts preloads only active products; their count is the
// products_count of brands and categories.
var activeProducts = repositories.Preload{Path: "Products", Args: []any{"is_active = ?", true}}

func productRepo() *repositories.Repository[models.Product] {
	return repositories.New[models.Product]("name",
		repositories.Preload{Path: "Brand"},
		repositories.Preload{Path: "Category"},
		repositories.Preload{Path: "Stocks"},
	)
}

// NameInput is the body of brands and categories.
type NameInput struct {
	Name     *string `json:"name"      validate:"required,max=100"`
	IsActive *bool   `json:"is_active"`
}

func (in NameInput) values() map[string]any {
	v := map[string]any{}
	if in.Name != nil {
		v["name"] = trimmed(in.Name)
	}
	if in.IsActive != nil {
		v["is_active"] = *in.IsActive
	}
	return v
}

type BrandService struct {
	crud[models.Brand]
	products *repositories.Repository[models.Product]
}

func NewBrandService() *BrandService {
	return &BrandService{
		crud:     crud[models.Brand]{model: "brand", repo: repositories.New[models.Brand]("name", activeProducts)},
		products: productRepo(),
	}
}

func (s *BrandService) Create(ctx context.Context, in NameInput) (*models.Brand, error) {
	b := models.Brand{Name: trimmed(in.Name), IsActive: deref(in.IsActive, true)}
	if err := s.repo.Create(ctx, &b); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, b.ID)
}

// Update changes the fields present in in.
func (s *BrandService) Update(ctx context.Context, id string, in NameInput) (*models.Brand, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b.ID, in.values()); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, b.ID)
}

// Products lists the brand's active products.
func (s *BrandService) Products(ctx context.Context, id string) ([]models.Product, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.Where(ctx, "brand_id = ? AND is_active = ?", b.ID, true)
}

type CategoryService struct {
	crud[models.Category]
	products *repositories.Repository[models.Product]
}

func NewCategoryService() *CategoryService {
	return &CategoryService{
		crud:     crud[models.Category]{model: "category", repo: repositories.New[models.Category]("name", activeProducts)},
		products: productRepo(),
	}
}

func (s *CategoryService) Create(ctx context.Context, in NameInput) (*models.Category, error) {
	c := models.Category{Name: trimmed(in.Name), IsActive: deref(in.IsActive, true)}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, c.ID)
}

func (s *CategoryService) Update(ctx context.Context, id string, in NameInput) (*models.Category, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c.ID, in.values()); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, c.ID)
}

// Products lists the category's active products.
func (s *CategoryService) Products(ctx context.Context, id string) ([]models.Product, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.Where(ctx, "category_id = ? AND is_active = ?", c.ID, true)
}

type ProductInput struct {
	Name     *string          `json:"name"      validate:"required,max=200"`
	SKU      *string          `json:"sku"       validate:"required,max=50"`
	Price    *decimal.Decimal `json:"price"     validate:"required,gte=0.01"`
	IsActive *bool            `json:"is_active"`
	Brand    *string          `json:"brand"     validate:"required,uuid"`
	Category *string          `json:"category"  validate:"required,uuid"`
}

type ProductService struct {
	crud[models.Product]
	brands     *repositories.Repository[models.Brand]
	categories *repositories.Repository[models.Category]
	stocks     *repositories.Repository[models.Stock]
}

func NewProductService() *ProductService {
	return &ProductService{
		crud:       crud[models.Product]{model: "product", repo: productRepo()},
		brands:     repositories.New[models.Brand]("name"),
		categories: repositories.New[models.Category]("name"),
		stocks: repositories.New[models.Stock]("qty DESC",
			repositories.Preload{Path: "Product"},
			repositories.Preload{Path: "Warehouse"},
		),
	}
}

func (s *ProductService) values(ctx context.Context, in ProductInput) (map[string]any, error) {
	v := map[string]any{}
	if in.Name != nil {
		v["name"] = trimmed(in.Name)
	}
	if in.SKU != nil {
		v["sku"] = trimmed(in.SKU)
	}
	if in.Price != nil {
		v["price"] = in.Price.Round(2)
	}
	if in.IsActive != nil {
		v["is_active"] = *in.IsActive
	}
	if in.Brand != nil {
		id, err := refID("brand", *in.Brand)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.brands, "brand", id); err != nil {
			return nil, err
		}
		v["brand_id"] = id
	}
	if in.Category != nil {
		id, err := refID("category", *in.Category)
		if err != nil {
			return nil, err
		}
		if err := mustExist(ctx, s.categories, "category", id); err != nil {
			return nil, err
		}
		v["category_id"] = id
	}
	return v, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	v, err := s.values(ctx, in)
	if err != nil {
		return nil, err
	}
	p := models.Product{
		Name:     trimmed(in.Name),
		SKU:      trimmed(in.SKU),
		Price:    in.Price.Round(2),
		IsActive: deref(in.IsActive, true),
	}
	p.BrandID, _ = v["brand_id"].(uuid.UUID)
	p.CategoryID, _ = v["category_id"].(uuid.UUID)
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, p.ID)
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := s.values(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p.ID, v); err != nil {
		return nil, writeError(err)
	}
	return s.reload(ctx, p.ID)
}

// Stock lists the product's stock rows, largest quantity first.
func (s *ProductService) Stock(ctx context.Context, id string) ([]models.Stock, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stocks.Where(ctx, "product_id = ?", p.ID)
}

// LowStock lists active products whose total quantity over all warehouses
// is below threshold. Products without any stock row are not listed.
func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	var out []models.Product
	err := s.repo.Query(ctx).
		Where("is_active = ?", true).
		Where("id IN (?)", lowStockIDs(orm.DB().WithContext(ctx).Gorm(), threshold)).
		Get(&out)
	return out, err
}

// lowStockIDs is the subquery of product ids whose summed qty is below
// threshold.
func lowStockIDs(db *gorm.DB, threshold int) *gorm.DB {
	return db.Table(models.Stock{}.TableName()).
		Select("product_id").
		Group("product_id").
		Having("SUM(qty) < ?", threshold)
}

// ProductFilter narrows Search. Zero fields do not filter.
type ProductFilter struct {
	SKU    string
	Brand  string // case-insensitive substring of the brand name
	Active *bool
}

func (s *ProductService) Search(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.repo.Query(ctx)
	if f.SKU != "" {
		q = q.Where("sku = ?", f.SKU)
	}
	if f.Brand != "" {
		brands := orm.DB().WithContext(ctx).Gorm().Model(&models.Brand{}).
			Select("id").
			Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Brand)+"%")
		q = q.Where("brand_id IN (?)", brands)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	var out []models.Product
	err := q.Get(&out)
	return out, err
}
