package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/logger"
)

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sqlx.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

// List returns all products with nested variants. Products and their
// variants are fetched in two queries and assembled in memory.
func (r *productRepository) List() ([]*domain.Product, error) {
	productQuery := `
		SELECT id, name, mechanism, category, guide_url, sort_order,
			variant_sort_strategy, created_at, updated_at
		FROM products
		ORDER BY sort_order ASC, created_at DESC
	`

	var products []*domain.Product
	if err := r.db.Select(&products, productQuery); err != nil {
		logger.Error("Failed to list products", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, 0, len(products))
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	variantQuery := `
		SELECT id, product_id, short_name, price, discount_percent, stock,
			duration_days, is_manual_delivery, total_sold, sort_order,
			guide_url, created_at, updated_at
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY sort_order ASC
	`

	var variants []*domain.ProductVariant
	if err := r.db.Select(&variants, variantQuery, pq.Array(ids)); err != nil {
		logger.Error("Failed to list product variants", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list product variants: %w", err)
	}

	for _, v := range variants {
		if p, ok := byID[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}

	return products, nil
}

// ListJoined is the fallback path: a single join query flattened into
// rows and regrouped. Output shape matches List.
func (r *productRepository) ListJoined() ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.mechanism, p.category, p.guide_url,
			p.sort_order, p.variant_sort_strategy, p.created_at, p.updated_at,
			v.id AS variant_id, v.short_name, v.price, v.discount_percent,
			v.stock, v.duration_days, v.is_manual_delivery, v.total_sold,
			v.sort_order AS variant_sort_order, v.guide_url AS variant_guide_url,
			v.created_at AS variant_created_at, v.updated_at AS variant_updated_at
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id
		ORDER BY p.sort_order ASC, p.created_at DESC, v.sort_order ASC
	`

	rows, err := r.db.Queryx(query)
	if err != nil {
		logger.Error("Failed to list joined products", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list joined products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	byID := make(map[string]*domain.Product)

	for rows.Next() {
		var row joinedRow
		if err := rows.StructScan(&row); err != nil {
			logger.Error("Failed to scan joined product row", logger.ErrorField(err))
			return nil, fmt.Errorf("failed to scan joined product row: %w", err)
		}

		p, ok := byID[row.ID]
		if !ok {
			p = &domain.Product{
				ID:                  row.ID,
				Name:                row.Name,
				Mechanism:           row.Mechanism,
				Category:            row.Category,
				GuideURL:            row.GuideURL,
				SortOrder:           row.SortOrder,
				VariantSortStrategy: row.VariantSortStrategy,
				CreatedAt:           row.CreatedAt,
				UpdatedAt:           row.UpdatedAt,
			}
			byID[row.ID] = p
			products = append(products, p)
		}

		if row.VariantID.Valid {
			p.Variants = append(p.Variants, row.variant())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read joined product rows: %w", err)
	}

	return products, nil
}

// GetVariant resolves a variant and its owning product in one query.
func (r *productRepository) GetVariant(variantID string) (*domain.ProductVariant, *domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.mechanism, p.category, p.guide_url,
			p.sort_order, p.variant_sort_strategy, p.created_at, p.updated_at,
			v.id AS variant_id, v.short_name, v.price, v.discount_percent,
			v.stock, v.duration_days, v.is_manual_delivery, v.total_sold,
			v.sort_order AS variant_sort_order, v.guide_url AS variant_guide_url,
			v.created_at AS variant_created_at, v.updated_at AS variant_updated_at
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`

	var row joinedRow
	err := r.db.Get(&row, query, variantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, domain.ErrVariantNotFound
		}
		logger.Error("Failed to get variant",
			logger.String("variant_id", variantID),
			logger.ErrorField(err),
		)
		return nil, nil, fmt.Errorf("failed to get variant: %w", err)
	}

	product := &domain.Product{
		ID:                  row.ID,
		Name:                row.Name,
		Mechanism:           row.Mechanism,
		Category:            row.Category,
		GuideURL:            row.GuideURL,
		SortOrder:           row.SortOrder,
		VariantSortStrategy: row.VariantSortStrategy,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	return row.variant(), product, nil
}

// joinedRow is the flat scan target shared by ListJoined and GetVariant.
type joinedRow struct {
	domain.Product

	VariantID        sql.NullString `db:"variant_id"`
	ShortName        sql.NullString `db:"short_name"`
	Price            sql.NullInt64  `db:"price"`
	DiscountPercent  sql.NullInt64  `db:"discount_percent"`
	Stock            *int           `db:"stock"`
	DurationDays     sql.NullInt64  `db:"duration_days"`
	IsManualDelivery sql.NullBool   `db:"is_manual_delivery"`
	TotalSold        sql.NullInt64  `db:"total_sold"`
	VariantSortOrder sql.NullInt64  `db:"variant_sort_order"`
	VariantGuideURL  *string        `db:"variant_guide_url"`
	VariantCreatedAt sql.NullTime   `db:"variant_created_at"`
	VariantUpdatedAt sql.NullTime   `db:"variant_updated_at"`
}

func (r *joinedRow) variant() *domain.ProductVariant {
	return &domain.ProductVariant{
		ID:               r.VariantID.String,
		ProductID:        r.ID,
		ShortName:        r.ShortName.String,
		Price:            r.Price.Int64,
		DiscountPercent:  int(r.DiscountPercent.Int64),
		Stock:            r.Stock,
		DurationDays:     int(r.DurationDays.Int64),
		IsManualDelivery: r.IsManualDelivery.Bool,
		TotalSold:        int(r.TotalSold.Int64),
		SortOrder:        int(r.VariantSortOrder.Int64),
		GuideURL:         r.VariantGuideURL,
		CreatedAt:        r.VariantCreatedAt.Time,
		UpdatedAt:        r.VariantUpdatedAt.Time,
	}
}
