package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// userRow maps the marketplace "user" table. Column names follow the
// camelCase naming of the marketplace schema.
type userRow struct {
	ID           int64    `gorm:"column:id;primaryKey"`
	Email        string   `gorm:"column:email"`
	Role         string   `gorm:"column:role"`
	Nom          *string  `gorm:"column:nom"`
	Prenom       *string  `gorm:"column:prenom"`
	Competences  *string  `gorm:"column:competences"`
	Description  *string  `gorm:"column:description"`
	TarifHoraire *float64 `gorm:"column:tarifHoraire"`
}

func (userRow) TableName() string { return "user" }

func (r userRow) toProvider() Provider {
	return Provider{
		ID:          r.ID,
		Email:       r.Email,
		Role:        r.Role,
		Name:        deref(r.Nom),
		FirstName:   deref(r.Prenom),
		Skills:      deref(r.Competences),
		Description: deref(r.Description),
		HourlyRate:  r.TarifHoraire,
	}
}

// Postgres reads providers straight from the marketplace database.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects to the marketplace database using the given DSN.
func OpenPostgres(dsn string) (*Postgres, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	return NewPostgres(db), nil
}

// NewPostgres wraps an existing gorm handle.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) ListProviders(ctx context.Context) ([]Provider, error) {
	if p == nil || p.db == nil {
		return nil, errors.New("postgres directory is not initialized")
	}

	var rows []userRow
	if err := providersQuery(p.db.WithContext(ctx), &rows).Error; err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}

	providers := make([]Provider, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, row.toProvider())
	}

	return providers, nil
}

func providersQuery(tx *gorm.DB, rows *[]userRow) *gorm.DB {
	return tx.Where("role = ?", RoleProvider).Order("id").Find(rows)
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
