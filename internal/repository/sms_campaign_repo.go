package repository

import (
	"time"

	"go-backoffice-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SmsCampaignRepository interface {
	FindAll(status model.SmsCampaignStatus) ([]model.SmsCampaign, error)
	FindByID(id uuid.UUID) (*model.SmsCampaign, error)
	Create(campaign *model.SmsCampaign) error
	Save(campaign *model.SmsCampaign) error
	Delete(id uuid.UUID, deletedBy string) error
	ClaimForSending(id uuid.UUID, updatedBy string, staleBefore time.Time) (bool, error)
	FinishSending(campaign *model.SmsCampaign) (bool, error)
}

type smsCampaignRepo struct {
	db *gorm.DB
}

func NewSmsCampaignRepo(db *gorm.DB) SmsCampaignRepository {
	return &smsCampaignRepo{db}
}

func (r *smsCampaignRepo) FindAll(status model.SmsCampaignStatus) ([]model.SmsCampaign, error) {
	var campaigns []model.SmsCampaign
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&campaigns).Error
	return campaigns, err
}

func (r *smsCampaignRepo) FindByID(id uuid.UUID) (*model.SmsCampaign, error) {
	var campaign model.SmsCampaign
	if err := r.db.First(&campaign, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *smsCampaignRepo) Create(campaign *model.SmsCampaign) error {
	return r.db.Create(campaign).Error
}

func (r *smsCampaignRepo) Save(campaign *model.SmsCampaign) error {
	return r.db.Save(campaign).Error
}

func (r *smsCampaignRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SmsCampaign{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.SmsCampaign{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ClaimForSending flips a draft or failed campaign to sending. A campaign
// left in sending since before staleBefore is claimed again, so a run that
// died half way does not pin it. It reports false when another request got
// there first or the campaign already went out.
func (r *smsCampaignRepo) ClaimForSending(id uuid.UUID, updatedBy string, staleBefore time.Time) (bool, error) {
	res := r.db.Model(&model.SmsCampaign{}).
		Where("id = ?", id).
		Where(r.db.Where("status IN ?", []model.SmsCampaignStatus{model.SmsDraft, model.SmsFailed}).
			Or("status = ? AND updated_at < ?", model.SmsSending, staleBefore)).
		Updates(map[string]interface{}{
			"status":     model.SmsSending,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FinishSending stores the outcome of a run on a campaign that is still
// sending. It reports false when the claim was lost in the meantime.
func (r *smsCampaignRepo) FinishSending(campaign *model.SmsCampaign) (bool, error) {
	res := r.db.Model(&model.SmsCampaign{}).
		Where("id = ? AND status = ?", campaign.ID, model.SmsSending).
		Updates(map[string]interface{}{
			"status":       campaign.Status,
			"sent_count":   campaign.SentCount,
			"failed_count": campaign.FailedCount,
			"last_error":   campaign.LastError,
			"sent_at":      campaign.SentAt,
			"updated_by":   campaign.UpdatedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
