// Package events declares the domain events that flow between modules.
// The bus mechanics live in platform/events; modules import only this
// package so event definitions and transport stay in one place.
package events

import (
	platformevents "roofline_backend/platform/events"
	"roofline_backend/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
