package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lifeline-api/internal/domain"
	"github.com/phrazzld/lifeline-api/internal/store"
)

// PostgresFacilityStore implements store.FacilityStore. Facilities are users
// with the HOSPITAL or BLOOD_BANK role.
type PostgresFacilityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.FacilityStore = (*PostgresFacilityStore)(nil)

// NewPostgresFacilityStore creates a facility store over db.
func NewPostgresFacilityStore(db store.DBTX, logger *slog.Logger) *PostgresFacilityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFacilityStore{
		db:     db,
		logger: logger.With(slog.String("component", "facility_store")),
	}
}

// Create implements store.FacilityStore.
func (s *PostgresFacilityStore) Create(ctx context.Context, f *domain.Facility) error {
	if err := f.Validate(); err != nil {
		return err
	}

	lat, lon := columnsFromPoint(f.Location)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, role, organization_name, phone, city, latitude, longitude, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		f.ID, f.Email, f.Kind, f.Name, f.Phone, f.City, lat, lon, f.Verified,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: facility email already registered", store.ErrDuplicate)
		}
		return store.NewStoreError("facility", "create", "insert failed", MapError(err))
	}
	return nil
}
