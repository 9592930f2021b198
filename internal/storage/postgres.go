package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"printdesk/internal/config"
	"printdesk/internal/pricing"
	"printdesk/pkg/redis"
)

// catalogCacheKey holds the serialized catalog dump. Every admin write
// deletes it, so the next snapshot load re-reads Postgres.
const catalogCacheKey = "pricing:catalog"

type PostgresStore struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

func NewPostgresStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) (*PostgresStore, error) {
	const operation = "storage.NewPostgresStore"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStore{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying connection for migrations.
func (s *PostgresStore) DB() *sql.DB {
	return s.db.DB
}

// LoadSnapshot reads the full catalog, Redis first, Postgres on miss.
func (s *PostgresStore) LoadSnapshot(ctx context.Context) (*pricing.Snapshot, error) {
	const operation = "storage.LoadSnapshot"

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, catalogCacheKey); err == nil {
			var cat pricing.Catalog
			if err := json.Unmarshal(cached, &cat); err == nil {
				return pricing.NewSnapshot(cat), nil
			}
			s.logger.Warn("discarding unreadable catalog cache entry")
		}
	}

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(cat); err == nil {
			if err := s.redis.Set(ctx, catalogCacheKey, data); err != nil {
				s.logger.Warn("failed to cache catalog", zap.Error(err))
			}
		}
	}
	return pricing.NewSnapshot(*cat), nil
}

func (s *PostgresStore) loadCatalog(ctx context.Context) (*pricing.Catalog, error) {
	var cat pricing.Catalog

	if err := s.db.SelectContext(ctx, &cat.Services,
		`SELECT id, name, category, unit, base_rate, operator_percent, active, created_at, updated_at
		 FROM services ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.Tiers,
		`SELECT id, service_id, variant_id, min_quantity, rate, is_percent, active
		 FROM volume_tiers ORDER BY service_id, min_quantity, id`); err != nil {
		return nil, fmt.Errorf("load volume tiers: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.Rules,
		`SELECT id, service_id, rule_type, conditions, pricing_data, active
		 FROM pricing_rules ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load pricing rules: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.BindingTypes,
		`SELECT value, label, min_pages, max_pages, duplex_default, unit_price, active
		 FROM binding_types ORDER BY value`); err != nil {
		return nil, fmt.Errorf("load binding types: %w", err)
	}

	sheets, err := s.loadSheets(ctx)
	if err != nil {
		return nil, err
	}
	cat.Sheets = sheets

	if err := s.db.SelectContext(ctx, &cat.PrintTypeRates,
		`SELECT print_type, rate_per_sheet, setup_cost, active FROM print_type_rates`); err != nil {
		return nil, fmt.Errorf("load print type rates: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.PaperRates,
		`SELECT paper_type, density, cost_per_sheet, active FROM paper_rates`); err != nil {
		return nil, fmt.Errorf("load paper rates: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.FinishingRates,
		`SELECT kind, rate_per_item, active FROM finishing_rates`); err != nil {
		return nil, fmt.Errorf("load finishing rates: %w", err)
	}
	if err := s.db.SelectContext(ctx, &cat.QuantityDiscounts,
		`SELECT id, min_quantity, max_quantity, discount_percent, active
		 FROM quantity_discount_tiers ORDER BY min_quantity`); err != nil {
		return nil, fmt.Errorf("load quantity discounts: %w", err)
	}
	if err := s.db.GetContext(ctx, &cat.Markup,
		`SELECT default_markup_percent, urgency_markup_percent, min_order_total
		 FROM markup_settings LIMIT 1`); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load markup settings: %w", err)
	}

	return &cat, nil
}

func (s *PostgresStore) loadSheets(ctx context.Context) ([]pricing.PrintPriceSheet, error) {
	var sheets []pricing.PrintPriceSheet
	if err := s.db.SelectContext(ctx, &sheets,
		`SELECT id, technology_code, counter_unit, sheet_width_mm, sheet_height_mm, margin_mm, gap_mm, active
		 FROM print_price_sheets ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load print price sheets: %w", err)
	}

	var tiers []pricing.SheetTier
	if err := s.db.SelectContext(ctx, &tiers,
		`SELECT id, sheet_id, price_mode, min_sheets, max_sheets, price_per_sheet
		 FROM sheet_tiers ORDER BY sheet_id, min_sheets`); err != nil {
		return nil, fmt.Errorf("load sheet tiers: %w", err)
	}

	byID := make(map[int64]int, len(sheets))
	for i := range sheets {
		byID[sheets[i].ID] = i
	}
	for _, t := range tiers {
		if i, ok := byID[t.SheetID]; ok {
			sheets[i].Tiers = append(sheets[i].Tiers, t)
		}
	}
	return sheets, nil
}

// invalidateCatalog drops the cached catalog after an admin write.
func (s *PostgresStore) invalidateCatalog(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *PostgresStore) ListServices(ctx context.Context, includeInactive bool) ([]pricing.Service, error) {
	query := `SELECT id, name, category, unit, base_rate, operator_percent, active, created_at, updated_at
	          FROM services`
	if !includeInactive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY id`

	var services []pricing.Service
	if err := s.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *PostgresStore) GetService(ctx context.Context, id int64) (*pricing.Service, error) {
	const query = `SELECT id, name, category, unit, base_rate, operator_percent, active, created_at, updated_at
	               FROM services WHERE id = $1`

	var svc pricing.Service
	if err := s.db.GetContext(ctx, &svc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pricing.NotFound("service_id", "service %d not found", id)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (s *PostgresStore) CreateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error) {
	const query = `
        INSERT INTO services (name, category, unit, base_rate, operator_percent, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
        RETURNING id, name, category, unit, base_rate, operator_percent, active, created_at, updated_at
    `

	var created pricing.Service
	err := s.db.GetContext(ctx, &created, query,
		svc.Name, svc.Category, svc.Unit, svc.BaseRate, svc.OperatorPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidateCatalog(ctx)
	return &created, nil
}

func (s *PostgresStore) UpdateService(ctx context.Context, svc pricing.Service) (*pricing.Service, error) {
	const query = `
        UPDATE services
        SET name = $2, category = $3, unit = $4, base_rate = $5, operator_percent = $6, active = $7, updated_at = NOW()
        WHERE id = $1
        RETURNING id, name, category, unit, base_rate, operator_percent, active, created_at, updated_at
    `

	var updated pricing.Service
	err := s.db.GetContext(ctx, &updated, query,
		svc.ID, svc.Name, svc.Category, svc.Unit, svc.BaseRate, svc.OperatorPercent, svc.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pricing.NotFound("service_id", "service %d not found", svc.ID)
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.invalidateCatalog(ctx)
	return &updated, nil
}

func (s *PostgresStore) DeactivateService(ctx context.Context, id int64) error {
	const query = `UPDATE services SET active = FALSE, updated_at = NOW() WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return pricing.NotFound("service_id", "service %d not found", id)
	}

	s.invalidateCatalog(ctx)
	return nil
}

func (s *PostgresStore) ListTiers(ctx context.Context, serviceID int64, variantID string) ([]pricing.VolumeTier, error) {
	const query = `
        SELECT id, service_id, variant_id, min_quantity, rate, is_percent, active
        FROM volume_tiers
        WHERE service_id = $1 AND COALESCE(variant_id, '') = $2
        ORDER BY min_quantity, id
    `

	var tiers []pricing.VolumeTier
	if err := s.db.SelectContext(ctx, &tiers, query, serviceID, variantID); err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	return tiers, nil
}

func (s *PostgresStore) CreateTier(ctx context.Context, tier pricing.VolumeTier) (*pricing.VolumeTier, error) {
	if _, err := s.GetService(ctx, tier.ServiceID); err != nil {
		return nil, err
	}

	variant := ""
	if tier.VariantID != nil {
		variant = *tier.VariantID
	}
	existing, err := s.ListTiers(ctx, tier.ServiceID, variant)
	if err != nil {
		return nil, err
	}
	sched := pricing.NewTierSchedule(pricing.TierKey{ServiceID: tier.ServiceID, VariantID: variant}, existing)
	if err := sched.ValidateNewTier(tier.MinQuantity); err != nil {
		return nil, err
	}

	const query = `
        INSERT INTO volume_tiers (service_id, variant_id, min_quantity, rate, is_percent, active)
        VALUES ($1, $2, $3, $4, $5, TRUE)
        RETURNING id, service_id, variant_id, min_quantity, rate, is_percent, active
    `

	var created pricing.VolumeTier
	err = s.db.GetContext(ctx, &created, query,
		tier.ServiceID, tier.VariantID, tier.MinQuantity, tier.Rate, tier.IsPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to create tier: %w", err)
	}

	s.invalidateCatalog(ctx)
	return &created, nil
}

func (s *PostgresStore) ListProductOperations(ctx context.Context, productKey string) ([]pricing.ProductOperationLink, error) {
	const query = `
        SELECT id, product_key, service_id, sequence, is_required, is_default, price_multiplier, default_params, conditions
        FROM product_operations
        WHERE product_key = $1
        ORDER BY sequence, id
    `

	var links []pricing.ProductOperationLink
	if err := s.db.SelectContext(ctx, &links, query, productKey); err != nil {
		return nil, fmt.Errorf("failed to list product operations: %w", err)
	}
	return links, nil
}

func (s *PostgresStore) ListPrintSheets(ctx context.Context) ([]pricing.PrintPriceSheet, error) {
	sheets, err := s.loadSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list print price sheets: %w", err)
	}
	return sheets, nil
}

func (s *PostgresStore) GetPrintSheet(ctx context.Context, id int64) (*pricing.PrintPriceSheet, error) {
	sheets, err := s.loadSheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get print price sheet: %w", err)
	}
	for i := range sheets {
		if sheets[i].ID == id {
			return &sheets[i], nil
		}
	}
	return nil, pricing.NotFound("id", "print price sheet %d not found", id)
}
