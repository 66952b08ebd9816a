// Package shared holds the building blocks common to all domain
// packages: base entity/aggregate types, domain events, and the domain
// error taxonomy.
package shared

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseEntity carries the identity and timestamp columns every persisted
// entity shares.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh UUID and timestamps
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// BaseAggregateRoot adds optimistic-lock versioning and a pending
// domain-event list on top of BaseEntity. Events accumulate on the
// aggregate during a mutation and are published by the application layer
// after the aggregate is persisted.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
	// storedVersion is the version the row carried when it was loaded.
	// Optimistic writes must match against this, not Version, because a
	// single operation may bump Version more than once (a lazy clock
	// transition followed by a bid).
	storedVersion int           `gorm:"-"`
	events        []DomainEvent `gorm:"-"`
}

// NewBaseAggregateRoot starts an aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// GetVersion returns the version used for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// AfterFind records the persisted version on every load
func (a *BaseAggregateRoot) AfterFind(*gorm.DB) error {
	a.storedVersion = a.Version
	return nil
}

// StoredVersion returns the version the aggregate had in storage when it
// was loaded. Zero for aggregates that were never persisted.
func (a *BaseAggregateRoot) StoredVersion() int {
	return a.storedVersion
}

// SyncStoredVersion marks the current version as persisted. Repositories
// call this after a successful conditional write; test doubles call it
// when handing out loaded copies.
func (a *BaseAggregateRoot) SyncStoredVersion() {
	a.storedVersion = a.Version
}

// IncrementVersion bumps the version; every state mutation calls this so
// a stale concurrent save fails its conditional update.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues an event for publication
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// GetDomainEvents returns the queued events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.events
}

// ClearDomainEvents drops the queue, called after publication
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.events = nil
}
