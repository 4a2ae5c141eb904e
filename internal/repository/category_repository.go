package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/shop-api/internal/model"
)

// categoryColumns includes a COUNT subquery so every read carries the number
// of products in the category, which the API exposes in responses.
const categoryColumns = `c.id, c.name, c.slug, c.description, c.image_url, c.is_active, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count`

// CategoryFilter narrows List results.  Page and Limit are 1-based and
// already validated by the handler.
type CategoryFilter struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
}

type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category.  Slug uniqueness is enforced by the database.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (id, name, slug, description, image_url, is_active) VALUES (?,?,?,?,?,?)",
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugExists
		}
		return err
	}
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM categories WHERE id=?", c.ID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches a category with its product count.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return r.getWhere(ctx, "c.id=?", id)
}

// GetBySlug fetches a category by its unique slug.
func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.getWhere(ctx, "c.slug=?", slug)
}

// List returns a page of categories, newest first, plus the unpaged total.
func (r *CategoryRepo) List(ctx context.Context, f CategoryFilter) ([]*model.Category, int, error) {
	where, args := categoryWhere(f)

	var total int
	countQ := "SELECT COUNT(*) FROM categories c" + where
	if err := r.DB.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM categories c%s ORDER BY c.created_at DESC LIMIT ? OFFSET ?",
		categoryColumns, where)
	rows, err := r.DB.QueryContext(ctx, q, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// Update rewrites the mutable fields of a category.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE categories SET name=?, slug=?, description=?, image_url=?, is_active=? WHERE id=?",
		c.Name, c.Slug, c.Description, c.ImageURL, c.IsActive, c.ID)
	if err != nil && isDuplicateKey(err) {
		return ErrSlugExists
	}
	return err
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepo) getWhere(ctx context.Context, cond string, arg any) (*model.Category, error) {
	row := r.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM categories c WHERE %s LIMIT 1", categoryColumns, cond), arg)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func categoryWhere(f CategoryFilter) (string, []any) {
	var conds []string
	var args []any
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(c.name LIKE ? OR c.description LIKE ?)")
		args = append(args, like, like)
	}
	if f.IsActive != nil {
		conds = append(conds, "c.is_active=?")
		args = append(args, *f.IsActive)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		c           model.Category
		description sql.NullString
		imageURL    sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &description, &imageURL,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	if imageURL.Valid {
		c.ImageURL = &imageURL.String
	}
	return &c, nil
}
