package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"photocritic/domain/models"
	"photocritic/domain/repositories"
)

type OpinionRepositoryImpl struct {
	db *gorm.DB
}

func NewOpinionRepository(db *gorm.DB) repositories.OpinionRepository {
	return &OpinionRepositoryImpl{db: db}
}

// Upsert rewrites the latest row of the pair. Older duplicates are left
// alone; readers ignore them.
func (r *OpinionRepositoryImpl) Upsert(ctx context.Context, analysisID, userID uuid.UUID, liked bool, comment string) (*models.Opinion, error) {
	var opinion models.Opinion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("analysis_id = ? AND user_id = ?", analysisID, userID).
			Order("created_at DESC").
			Order("id DESC").
			First(&opinion).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			opinion = models.Opinion{
				AnalysisID: &analysisID,
				UserID:     userID,
				Liked:      liked,
				Comment:    comment,
			}
			return tx.Create(&opinion).Error
		case err != nil:
			return err
		}

		opinion.Liked = liked
		opinion.Comment = comment
		return tx.Model(&opinion).Select("liked", "comment", "updated_at").Updates(&opinion).Error
	})
	if err != nil {
		return nil, err
	}
	return &opinion, nil
}

func (r *OpinionRepositoryImpl) ListCanonical(ctx context.Context, analysisID uuid.UUID) ([]models.Opinion, error) {
	ranked := r.db.
		Table("opinions AS o").
		Select("o.id, ROW_NUMBER() OVER (PARTITION BY o.user_id ORDER BY o.created_at DESC, o.id DESC) AS rn").
		Where("o.analysis_id = ?", analysisID)

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("(?) AS ranked", ranked).
		Where("ranked.rn = 1").
		Pluck("ranked.id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Opinion{}, nil
	}

	var opinions []models.Opinion
	err = r.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&opinions).Error
	return opinions, err
}
