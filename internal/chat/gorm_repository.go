package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"doctor-booking-server/internal/models"
)

// GormRepository stores threads and messages in a SQL database.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) GetThread(ctx context.Context, id string) (*models.ChatThread, error) {
	var t models.ChatThread
	if err := r.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *GormRepository) SaveThread(ctx context.Context, t *models.ChatThread) error {
	return r.DB.WithContext(ctx).Save(t).Error
}

func (r *GormRepository) DeleteThread(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.ChatThread{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrThreadNotFound
	}
	return nil
}

func (r *GormRepository) ThreadsFor(ctx context.Context, userID string) ([]models.ChatThread, error) {
	var out []models.ChatThread
	err := r.DB.WithContext(ctx).
		Where("user_id = ? OR doctor_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) AddMessage(ctx context.Context, m *models.Message) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepository) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GormRepository) UpdateMessage(ctx context.Context, m *models.Message) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// mysql reports zero affected rows when nothing changed, so check
		// existence separately
		var cur models.Message
		err := tx.Select("id").First(&cur, "id = ?", m.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		return tx.Model(&models.Message{}).
			Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"content": m.Content,
				"edited":  m.Edited,
				"read":    m.Read,
			}).Error
	})
}

func (r *GormRepository) DeleteMessage(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *GormRepository) MessagesIn(ctx context.Context, threadID string) ([]models.Message, error) {
	var out []models.Message
	err := r.DB.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("timestamp asc").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) DeleteMessagesIn(ctx context.Context, threadID string) error {
	return r.DB.WithContext(ctx).Delete(&models.Message{}, "thread_id = ?", threadID).Error
}
