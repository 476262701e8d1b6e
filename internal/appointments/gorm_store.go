package appointments

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"doctor-booking-server/internal/models"
)

// GormStore is a Store backed by a SQL database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Create(ctx context.Context, a *models.Appointment) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.Active() {
			if err := ensureFree(tx, a.DoctorID, a.SlotID, ""); err != nil {
				return err
			}
		}
		return slotErr(tx.Create(a).Error)
	})
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) Update(ctx context.Context, a *models.Appointment) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Appointment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, "id = ?", a.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if a.Active() {
			if err := ensureFree(tx, a.DoctorID, a.SlotID, a.ID); err != nil {
				return err
			}
		}
		return slotErr(tx.Save(a).Error)
	})
}

func (s *GormStore) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("slot_id asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.DB.WithContext(ctx).
		Where("date = ?", date).
		Order("slot_id asc").
		Find(&out).Error
	return out, err
}

func (s *GormStore) BookedSlots(ctx context.Context, doctorID string) (map[string]bool, error) {
	var ids []string
	err := s.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("doctor_id = ? AND status <> ?", doctorID, models.StatusCancelled).
		Pluck("slot_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func ensureFree(tx *gorm.DB, doctorID, slotID, exceptID string) error {
	q := tx.Model(&models.Appointment{}).
		Where("doctor_id = ? AND slot_id = ? AND status <> ?", doctorID, slotID, models.StatusCancelled)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrSlotTaken
	}
	return nil
}

// slotErr maps a unique violation on the slot hold index to ErrSlotTaken.
// It relies on gorm.Config.TranslateError.
func slotErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrSlotTaken
	}
	return err
}
