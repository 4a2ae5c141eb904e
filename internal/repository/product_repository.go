package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/shop-api/internal/model"
)

const productColumns = `p.id, p.name, p.description, p.price, p.stock, p.sku, p.image_url, p.is_active, p.category_id,
	p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.description, c.image_url, c.is_active, c.created_at, c.updated_at`

// ProductFilter narrows List results.
type ProductFilter struct {
	Page       int
	Limit      int
	Search     string
	IsActive   *bool
	CategoryID string
}

type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// Create inserts a product.  SKU uniqueness is enforced by the database; the
// category must already exist (FK).
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (id, name, description, price, stock, sku, image_url, is_active, category_id) VALUES (?,?,?,?,?,?,?,?,?)",
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.SKU, p.ImageURL, p.IsActive, p.CategoryID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSKUExists
		}
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM products WHERE id=?", p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID fetches a product joined with its category.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id=? LIMIT 1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// GetBySKU fetches a product by its unique SKU.  Used for conflict checks.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products p JOIN categories c ON c.id = p.category_id WHERE p.sku=? LIMIT 1", sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns a page of products, newest first, plus the unpaged total.
func (r *ProductRepo) List(ctx context.Context, f ProductFilter) ([]*model.Product, int, error) {
	where, args := productWhere(f)

	var total int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM products p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM products p JOIN categories c ON c.id = p.category_id%s ORDER BY p.created_at DESC LIMIT ? OFFSET ?",
		productColumns, where)
	rows, err := r.DB.QueryContext(ctx, q, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// Update rewrites the mutable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE products SET name=?, description=?, price=?, stock=?, sku=?, image_url=?, is_active=?, category_id=? WHERE id=?",
		p.Name, p.Description, p.Price, p.Stock, p.SKU, p.ImageURL, p.IsActive, p.CategoryID, p.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrSKUExists
	}
	return err
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func productWhere(f ProductFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(p.name LIKE ? OR p.description LIKE ? OR p.sku LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.IsActive != nil {
		conds = append(conds, "p.is_active=?")
		args = append(args, *f.IsActive)
	}
	if f.CategoryID != "" {
		conds = append(conds, "p.category_id=?")
		args = append(args, f.CategoryID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p      model.Product
		c      model.Category
		pDesc  sql.NullString
		pImage sql.NullString
		cDesc  sql.NullString
		cImage sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &pDesc, &p.Price, &p.Stock, &p.SKU, &pImage, &p.IsActive, &p.CategoryID,
		&p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Slug, &cDesc, &cImage, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if pDesc.Valid {
		p.Description = &pDesc.String
	}
	if pImage.Valid {
		p.ImageURL = &pImage.String
	}
	if cDesc.Valid {
		c.Description = &cDesc.String
	}
	if cImage.Valid {
		c.ImageURL = &cImage.String
	}
	p.Category = &c
	return &p, nil
}
