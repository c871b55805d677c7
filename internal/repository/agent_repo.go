package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/proagent/activity-api/internal/models"
)

// AgentRepository reads and writes agent accounts.
type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	FindByPhone(ctx context.Context, phone string) (*models.Agent, error)
	FindByID(ctx context.Context, id uint) (*models.Agent, error)
}

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository constructs the agent repository.
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Create(ctx context.Context, agent *models.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *agentRepository) FindByPhone(ctx context.Context, phone string) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) FindByID(ctx context.Context, id uint) (*models.Agent, error) {
	var agent models.Agent
	if err := r.db.WithContext(ctx).First(&agent, id).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}
