package repository

import "github.com/drivelead/drivelead-api/internal/domain/entity"

// CampaignRepository define el puerto de persistencia para Campaign.
type CampaignRepository interface {
	Create(c *entity.Campaign) error
	GetByID(id string) (*entity.Campaign, error)
	ListActive() ([]*entity.Campaign, error)
}
