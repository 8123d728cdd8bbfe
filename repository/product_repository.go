package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gpustats/database"
	"gpustats/models"
)

// ProductRepository is the catalog store gateway. Products are created by the
// seeding process; this repository only adds columns and updates rows.
type ProductRepository struct {
	db    *database.DB
	table string
}

// NewProductRepository creates a repository over table
func NewProductRepository(db *database.DB, table string) (*ProductRepository, error) {
	if !models.ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ProductRepository{db: db, table: table}, nil
}

// EnsureAttribute adds the attribute column. Adding an existing column is a no-op.
func (r *ProductRepository) EnsureAttribute(ctx context.Context, attr models.Attribute) error {
	if err := attr.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`,
		database.Quote(r.table), database.Quote(attr.Name), r.db.Dialect.ColumnType(attr.Kind))

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		if r.db.Dialect.IsDuplicateColumn(err) {
			return nil
		}
		return fmt.Errorf("%w: failed to add column %s: %v", ErrSchema, attr.Name, err)
	}
	return nil
}

// ResetAttribute sets the attribute to NULL for every product
func (r *ProductRepository) ResetAttribute(ctx context.Context, attr models.Attribute) error {
	if err := attr.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = NULL`, database.Quote(r.table), database.Quote(attr.Name))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: failed to reset column %s: %v", ErrSchema, attr.Name, err)
	}
	return nil
}

// Upsert writes value for the product with exactly this name. Absent values
// are not written. matched is false when no product has the name.
func (r *ProductRepository) Upsert(ctx context.Context, attr models.Attribute, name string, value models.Value) (bool, error) {
	return r.UpsertFields(ctx, name, []models.Field{{Attribute: attr, Value: value}})
}

// UpsertFields writes every present field of one product in a single statement
func (r *ProductRepository) UpsertFields(ctx context.Context, name string, fields []models.Field) (bool, error) {
	var (
		sets []string
		args []interface{}
	)
	for _, f := range fields {
		if !f.Value.Valid {
			continue
		}
		if err := f.Attribute.Validate(); err != nil {
			return false, err
		}
		args = append(args, f.Value.Arg())
		sets = append(sets, fmt.Sprintf("%s = %s", database.Quote(f.Attribute.Name), r.db.Dialect.Placeholder(len(args))))
	}
	if len(sets) == 0 {
		return false, nil
	}

	args = append(args, name)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE name = %s`,
		database.Quote(r.table), strings.Join(sets, ", "), r.db.Dialect.Placeholder(len(args)))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result for %q: %w", name, err)
	}
	return affected > 0, nil
}

// ProductNames returns every canonical product name in name order
func (r *ProductRepository) ProductNames(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, database.Quote(r.table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan product name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Attributes returns the attribute column names, excluding the name key
func (r *ProductRepository) Attributes(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE 1 = 0`, database.Quote(r.table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	attrs := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != "name" {
			attrs = append(attrs, c)
		}
	}
	sort.Strings(attrs)
	return attrs, nil
}

// Products returns every product with all of its attributes
func (r *ProductRepository) Products(ctx context.Context) ([]models.Product, error) {
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY name`, database.Quote(r.table))
	return r.queryProducts(ctx, query)
}

// Product returns one product by exact name
func (r *ProductRepository) Product(ctx context.Context, name string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE name = %s`, database.Quote(r.table), r.db.Dialect.Placeholder(1))

	products, err := r.queryProducts(ctx, query, name)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrProductNotFound, name)
	}
	return &products[0], nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var products []models.Product
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		p := models.Product{Attributes: make(map[string]interface{}, len(columns)-1)}
		for i, column := range columns {
			v := normalize(values[i])
			if column == "name" {
				p.Name, _ = v.(string)
				continue
			}
			p.Attributes[column] = v
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// normalize maps driver values to float64, string or nil
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case sql.RawBytes:
		return string(t)
	default:
		return t
	}
}

// IsNotFound reports whether err is ErrProductNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
