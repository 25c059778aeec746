package models

import "time"

// OfferEvent is emitted once, on the turn an application first receives its offer.
type OfferEvent struct {
	ApplicationID string      `json:"applicationId"`
	Application   Application `json:"application"`
	IssuedAt      time.Time   `json:"issuedAt"`
}
