package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"site-janitor/core/database"
	"site-janitor/core/utils"

	"github.com/elliotchance/orderedmap/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoColumns is returned when introspection finds no columns for a table.
var ErrNoColumns = errors.New("no columns found")

// Row is one catalog record keyed by column name in column order.
type Row = *orderedmap.OrderedMap[string, any]

// NewRow returns an empty Row.
func NewRow() Row {
	return orderedmap.NewOrderedMap[string, any]()
}

// Site is the identity and owner of one site record.
type Site struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
}

// Catalog fetches rows from the configured tables.
type Catalog struct {
	db  *gorm.DB
	cfg Config
}

// New creates a Catalog. It fails when a configured table or column name is
// not a plain identifier.
func New(db *gorm.DB, cfg Config) (*Catalog, error) {
	if err := database.ValidateIdentifier(cfg.Identifiers()...); err != nil {
		return nil, fmt.Errorf("invalid catalog configuration: %w", err)
	}
	return &Catalog{db: db, cfg: cfg}, nil
}

// Config returns the catalog configuration.
func (c *Catalog) Config() Config {
	return c.cfg
}

// Rows fetches every row of table. With no columns every column is selected.
func (c *Catalog) Rows(ctx context.Context, table string, columns ...string) ([]Row, error) {
	if err := database.ValidateIdentifier(append([]string{table}, columns...)...); err != nil {
		return nil, err
	}
	q := c.db.WithContext(ctx).Table(table)
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	rows, err := fetch(q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q table: %w", table, err)
	}
	return rows, nil
}

// RowsByIDs fetches the rows of table whose idColumn is one of ids.
func (c *Catalog) RowsByIDs(ctx context.Context, table, idColumn string, ids []string, columns ...string) ([]Row, error) {
	if err := database.ValidateIdentifier(append([]string{table, idColumn}, columns...)...); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q := c.db.WithContext(ctx).Table(table).
		Where(clause.IN{Column: clause.Column{Name: idColumn}, Values: values})
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	rows, err := fetch(q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q rows by %s: %w", table, idColumn, err)
	}
	return rows, nil
}

// Columns returns the column names of table in ordinal order. It returns an
// error wrapping ErrNoColumns when none are found.
func (c *Catalog) Columns(ctx context.Context, table string) ([]string, error) {
	names, err := database.ColumnNames(c.db.WithContext(ctx), table)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch column metadata for %q: %w", table, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("table %q: %w", table, ErrNoColumns)
	}
	return names, nil
}

// SiteList returns the id and owner of every site.
func (c *Catalog) SiteList(ctx context.Context) ([]Site, error) {
	rows, err := c.Rows(ctx, c.cfg.SitesTable, c.cfg.IDColumn, c.cfg.OwnerColumn)
	if err != nil {
		return nil, err
	}
	sites := make([]Site, 0, len(rows))
	for _, row := range rows {
		id, _ := row.Get(c.cfg.IDColumn)
		owner, _ := row.Get(c.cfg.OwnerColumn)
		sites = append(sites, Site{ID: utils.ToString(id), Owner: utils.ToString(owner)})
	}
	return sites, nil
}

// Sites returns a map from site id to owner id.
func (c *Catalog) Sites(ctx context.Context) (map[string]string, error) {
	list, err := c.SiteList(ctx)
	if err != nil {
		return nil, err
	}
	sites := make(map[string]string, len(list))
	for _, s := range list {
		if s.ID != "" {
			sites[s.ID] = s.Owner
		}
	}
	return sites, nil
}

// ReferenceRows returns the id, owner and reference columns of every site.
func (c *Catalog) ReferenceRows(ctx context.Context) ([]Row, error) {
	columns := append([]string{c.cfg.IDColumn, c.cfg.OwnerColumn}, c.cfg.ReferenceColumns...)
	return c.Rows(ctx, c.cfg.SitesTable, columns...)
}

// Role returns the role of userID, or the default role when the user has no
// profile or no role.
func (c *Catalog) Role(ctx context.Context, userID string) (string, error) {
	var roles []sql.NullString
	err := c.db.WithContext(ctx).
		Table(c.cfg.ProfilesTable).
		Where(clause.Eq{Column: clause.Column{Name: c.cfg.IDColumn}, Value: userID}).
		Limit(1).
		Pluck(c.cfg.RoleColumn, &roles).Error
	if err != nil {
		return "", fmt.Errorf("failed to fetch role: %w", err)
	}
	if len(roles) == 0 || !roles[0].Valid || roles[0].String == "" {
		return c.cfg.DefaultRole, nil
	}
	return roles[0].String, nil
}

func fetch(q *gorm.DB) ([]Row, error) {
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := NewRow()
		for i, col := range columns {
			// MySQL returns text columns as raw bytes.
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row.Set(col, values[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
