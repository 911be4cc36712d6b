package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// SupervisorRepository stores supervisor to agent pairings. An agent has at
// most one supervisor.
type SupervisorRepository interface {
	Pair(ctx context.Context, pairing *domain.SupervisorAgent) error
	GetSupervisorID(ctx context.Context, agentID string) (string, error)
}

type supervisorRepository struct {
	pool *pgxpool.Pool
}

// NewSupervisorRepository builds the repository.
func NewSupervisorRepository(pool *pgxpool.Pool) SupervisorRepository {
	return &supervisorRepository{pool: pool}
}

func (r *supervisorRepository) Pair(ctx context.Context, pairing *domain.SupervisorAgent) error {
	const query = `
        INSERT INTO supervisor_agents (supervisor_id, agent_id)
        VALUES ($1,$2)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query, pairing.SupervisorID, pairing.AgentID).Scan(&pairing.CreatedAt)
}

func (r *supervisorRepository) GetSupervisorID(ctx context.Context, agentID string) (string, error) {
	var supervisorID string
	err := r.pool.QueryRow(ctx, `SELECT supervisor_id FROM supervisor_agents WHERE agent_id=$1`, agentID).Scan(&supervisorID)
	return supervisorID, err
}
