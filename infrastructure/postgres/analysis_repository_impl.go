package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
)

// deleteBatchSize keeps IN lists well under driver parameter limits.
const deleteBatchSize = 500

type AnalysisRepositoryImpl struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) repositories.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

func (r *AnalysisRepositoryImpl) Create(ctx context.Context, analysis *models.Analysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

func (r *AnalysisRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).Preload("Photo").Where("id = ?", id).First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisRepositoryImpl) GetLatestForPhoto(ctx context.Context, photoID uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).
		Where("photo_id = ? AND is_hidden = ?", photoID, false).
		Order("created_at DESC").
		Order("id DESC").
		First(&analysis).Error
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// currentRows ranks the analyses of each photo newest first and keeps rank 1.
// Filters apply before ranking, so a hidden newest row lets the next visible
// one become current.
func (r *AnalysisRepositoryImpl) currentRows(ctx context.Context, filter repositories.AnalysisFilter) *gorm.DB {
	ranked := r.db.
		Table("analyses AS a").
		Select("a.id, a.created_at, ROW_NUMBER() OVER (PARTITION BY a.photo_id ORDER BY a.created_at DESC, a.id DESC) AS rn").
		Joins("JOIN photos p ON p.id = a.photo_id")

	if filter.UserID != nil {
		ranked = ranked.Where("a.user_id = ?", *filter.UserID)
	}
	if filter.CameraModel != "" {
		ranked = ranked.Where("a.camera_model = ?", filter.CameraModel)
	}
	if !filter.IncludeHidden {
		ranked = ranked.Where("a.is_hidden = ? AND p.is_hidden = ?", false, false)
	}

	return r.db.WithContext(ctx).Table("(?) AS ranked", ranked).Where("ranked.rn = 1")
}

func (r *AnalysisRepositoryImpl) ListCurrent(ctx context.Context, filter repositories.AnalysisFilter) ([]models.Analysis, int64, error) {
	var total int64
	if err := r.currentRows(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(filter.Offset) >= total {
		return []models.Analysis{}, total, nil
	}

	var ids []uuid.UUID
	err := r.currentRows(ctx, filter).
		Order("ranked.created_at DESC").
		Order("ranked.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Pluck("ranked.id", &ids).Error
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []models.Analysis{}, total, nil
	}

	var rows []models.Analysis
	if err := r.db.WithContext(ctx).Preload("Photo").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	// restore the ranked order
	byID := make(map[uuid.UUID]models.Analysis, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]models.Analysis, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}
	return ordered, total, nil
}

func (r *AnalysisRepositoryImpl) UpdateVisibility(ctx context.Context, id uuid.UUID, hidden bool) error {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).Where("id = ?", id).Update("is_hidden", hidden)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *AnalysisRepositoryImpl) UpdatePayload(ctx context.Context, id uuid.UUID, payload []byte) error {
	return r.db.WithContext(ctx).
		Model(&models.Analysis{}).
		Where("id = ?", id).
		Update("payload", datatypes.JSON(payload)).Error
}

func (r *AnalysisRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteAnalyses(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *AnalysisRepositoryImpl) DeleteRedundant(ctx context.Context, keepPerPhoto int) (int64, error) {
	if keepPerPhoto < 1 {
		keepPerPhoto = 1
	}

	ranked := r.db.
		Table("analyses AS a").
		Select("a.id, ROW_NUMBER() OVER (PARTITION BY a.photo_id ORDER BY a.created_at DESC, a.id DESC) AS rn").
		Where("a.is_hidden = ?", false)

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Where("ranked.rn > ?", keepPerPhoto).
		Pluck("ranked.id", &ids).Error
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(ids); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		var n int64
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = deleteAnalyses(tx, batch)
			return err
		})
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}

// deleteAnalyses detaches opinions and removes the rows. It must run inside
// a transaction.
func deleteAnalyses(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	err := tx.Model(&models.Opinion{}).
		Where("analysis_id IN ?", ids).
		Update("analysis_id", nil).Error
	if err != nil {
		return 0, err
	}
	result := tx.Where("id IN ?", ids).Delete(&models.Analysis{})
	return result.RowsAffected, result.Error
}
