package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/tannerv/shopsmith/pkg/models"
)

// CatalogStore reads customers, products, and embedding vectors from
// PostgreSQL.
type CatalogStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewCatalogStore(db DatabaseQuerier, logger *logrus.Logger) *CatalogStore {
	return &CatalogStore{db: db, logger: logger}
}

func (s *CatalogStore) GetCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	query := `
		SELECT customer_id, age, gender, location, customer_segment, avg_order_value,
		       browsing_history, purchase_history, season, holiday
		FROM customers
		WHERE customer_id = $1
	`

	var customer models.Customer
	err := s.db.QueryRow(ctx, query, customerID).Scan(
		&customer.CustomerID,
		&customer.Age,
		&customer.Gender,
		&customer.Location,
		&customer.Segment,
		&customer.AvgOrderValue,
		&customer.BrowsingHistory,
		&customer.PurchaseHistory,
		&customer.Season,
		&customer.HolidayShopping,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read customer %s: %w", customerID, err)
	}

	return &customer, nil
}

func (s *CatalogStore) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT product_id, category, subcategory, price, brand, product_rating,
		       sentiment_score, season, holiday, geographical_location,
		       recommendation_probability, similar_products
		FROM products
		WHERE product_id = $1
	`

	var product models.Product
	err := s.db.QueryRow(ctx, query, productID).Scan(
		&product.ProductID,
		&product.Category,
		&product.Subcategory,
		&product.Price,
		&product.Brand,
		&product.ProductRating,
		&product.SentimentScore,
		&product.Season,
		&product.Holiday,
		&product.GeographicalLocation,
		&product.RecommendationProbability,
		&product.SimilarProducts,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product %s: %w", productID, err)
	}

	return &product, nil
}

// ListProductsByCategories returns products in any of the given categories.
// An empty category list returns the whole catalog.
func (s *CatalogStore) ListProductsByCategories(ctx context.Context, categories []string) ([]models.Product, error) {
	query := `
		SELECT product_id, category, subcategory, price, brand, product_rating,
		       sentiment_score, season, holiday, geographical_location,
		       recommendation_probability, similar_products
		FROM products
	`

	var (
		rows pgx.Rows
		err  error
	)
	if len(categories) > 0 {
		rows, err = s.db.Query(ctx, query+` WHERE category = ANY($1) ORDER BY product_id`, categories)
	} else {
		rows, err = s.db.Query(ctx, query+` ORDER BY product_id`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ProductID,
			&product.Category,
			&product.Subcategory,
			&product.Price,
			&product.Brand,
			&product.ProductRating,
			&product.SentimentScore,
			&product.Season,
			&product.Holiday,
			&product.GeographicalLocation,
			&product.RecommendationProbability,
			&product.SimilarProducts,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// ProductEmbedding pairs a product with its stored vector.
type ProductEmbedding struct {
	ProductID string
	Vector    []float64
}

func (s *CatalogStore) GetEmbedding(ctx context.Context, entityType, entityID string) ([]float64, error) {
	query := `SELECT vector FROM embeddings WHERE entity_type = $1 AND entity_id = $2`

	var vector []float64
	err := s.db.QueryRow(ctx, query, entityType, entityID).Scan(&vector)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("embedding for %s %s: %w", entityType, entityID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding for %s %s: %w", entityType, entityID, err)
	}

	return vector, nil
}

func (s *CatalogStore) ListProductEmbeddings(ctx context.Context) ([]ProductEmbedding, error) {
	query := `SELECT entity_id, vector FROM embeddings WHERE entity_type = 'product' ORDER BY entity_id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list embeddings: %w", err)
	}
	defer rows.Close()

	var embeddings []ProductEmbedding
	for rows.Next() {
		var embedding ProductEmbedding
		if err := rows.Scan(&embedding.ProductID, &embedding.Vector); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		embeddings = append(embeddings, embedding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embeddings: %w", err)
	}

	return embeddings, nil
}

func (s *CatalogStore) UpsertEmbedding(ctx context.Context, entityType, entityID string, vector []float64) error {
	query := `
		INSERT INTO embeddings (entity_type, entity_id, vector, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET vector = $3, created_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, entityType, entityID, vector); err != nil {
		return &PersistenceError{Op: "upsert embedding", Err: err}
	}

	return nil
}
