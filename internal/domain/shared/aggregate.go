package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is implemented by every persisted ledger record. Version is
// the optimistic lock; events queue until the owning service publishes them.
type AggregateRoot interface {
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch bumps the update timestamp
func (e *BaseEntity) Touch(at time.Time) {
	e.UpdatedAt = at
}

// OrgAggregateRoot scopes an aggregate to one organization.
// Records of different organizations never interact.
type OrgAggregateRoot struct {
	BaseEntity
	OrganizationID uuid.UUID
	Version        int
	domainEvents   []DomainEvent
}

// NewOrgAggregateRoot starts a fresh aggregate at version 1
func NewOrgAggregateRoot(orgID uuid.UUID) OrgAggregateRoot {
	now := time.Now()
	return OrgAggregateRoot{
		BaseEntity:     BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrganizationID: orgID,
		Version:        1,
	}
}

func (a *OrgAggregateRoot) GetVersion() int { return a.Version }

func (a *OrgAggregateRoot) IncrementVersion() { a.Version++ }

func (a *OrgAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns events recorded since the last publish
func (a *OrgAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *OrgAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
