package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/redact"
	"github.com/phrazzld/lifeline-api/internal/store"
	"github.com/shopspring/decimal"
)

// PostgresDonorStore implements store.DonorStore. Donors are users with the
// DONOR role; a donor_health_info row marks recorded health information.
type PostgresDonorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.DonorStore = (*PostgresDonorStore)(nil)

// NewPostgresDonorStore creates a donor store over db.
func NewPostgresDonorStore(db store.DBTX, logger *slog.Logger) *PostgresDonorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDonorStore{
		db:     db,
		logger: logger.With(slog.String("component", "donor_store")),
	}
}

// FindCandidates implements store.DonorStore.
func (s *PostgresDonorStore) FindCandidates(ctx context.Context, q store.DonorQuery) ([]*domain.Donor, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := []string{"u.role = 'DONOR'"}
	var args []any
	if q.BloodGroup != "" {
		args = append(args, q.BloodGroup)
		where = append(where, fmt.Sprintf("u.blood_group = $%d", len(args)))
	}
	if q.City != "" {
		args = append(args, q.City)
		where = append(where, fmt.Sprintf("u.city = $%d", len(args)))
	}
	if q.AvailableOnly {
		where = append(where, "u.is_available")
	}
	if q.VerifiedOnly {
		where = append(where, "u.is_verified")
	}

	query := `
		SELECT u.id, u.first_name, u.last_name, u.phone, u.email, u.blood_group, u.city,
		       u.latitude, u.longitude, u.is_available, u.is_verified, u.last_donation_date,
		       h.user_id IS NOT NULL
		FROM users u
		LEFT JOIN donor_health_info h ON h.user_id = u.id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY u.created_at, u.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query donors", slog.String("error", redact.Error(err)))
		return nil, store.NewStoreError("donor", "find_candidates", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	donors := []*domain.Donor{}
	for rows.Next() {
		var (
			d        domain.Donor
			group    sql.NullString
			lat, lon decimal.NullDecimal
			last     sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.FirstName, &d.LastName, &d.Phone, &d.Email, &group, &d.City,
			&lat, &lon, &d.Available, &d.Verified, &last, &d.HasHealthInfo,
		); err != nil {
			return nil, store.NewStoreError("donor", "find_candidates", "scan failed", err)
		}
		d.BloodGroup = domain.BloodGroup(group.String)
		d.Location = pointFromColumns(lat, lon)
		if last.Valid {
			t := last.Time
			d.LastDonationDate = &t
		}
		donors = append(donors, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("donor", "find_candidates", "iteration failed", MapError(err))
	}

	log.Debug("donor candidates loaded", slog.Int("count", len(donors)))
	return donors, nil
}

// Create implements store.DonorStore. The user row and, when HasHealthInfo
// is set, the health info row are written in one statement.
func (s *PostgresDonorStore) Create(ctx context.Context, d *domain.Donor) error {
	if err := d.BloodGroup.Validate(); err != nil {
		return err
	}
	if d.Location != nil {
		if err := d.Location.Validate(); err != nil {
			return err
		}
	}

	lat, lon := columnsFromPoint(d.Location)
	var last sql.NullTime
	if d.LastDonationDate != nil {
		last = sql.NullTime{Time: *d.LastDonationDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		WITH donor AS (
			INSERT INTO users (
				id, email, role, first_name, last_name, phone, city, latitude, longitude,
				blood_group, is_verified, is_available, last_donation_date
			) VALUES ($1, $2, 'DONOR', $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
		)
		INSERT INTO donor_health_info (user_id)
		SELECT id FROM donor WHERE $13`,
		d.ID, d.Email, d.FirstName, d.LastName, d.Phone, d.City, lat, lon,
		d.BloodGroup, d.Verified, d.Available, last, d.HasHealthInfo,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: donor email already registered", store.ErrDuplicate)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create donor",
			slog.String("donor_id", d.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("donor", "create", "insert failed", MapError(err))
	}
	return nil
}
