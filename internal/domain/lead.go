package domain

import (
	"strings"
	"time"
)

// Lead funnel statuses.
const (
	LeadStatusNew         = "new"
	LeadStatusContacted   = "contacted"
	LeadStatusQualified   = "qualified"
	LeadStatusProposal    = "proposal"
	LeadStatusNegotiation = "negotiation"
	LeadStatusWon         = "won"
	LeadStatusLost        = "lost"
)

var leadStatusSynonyms = map[string]string{
	"new":         LeadStatusNew,
	"nuevo":       LeadStatusNew,
	"contacted":   LeadStatusContacted,
	"contactado":  LeadStatusContacted,
	"qualified":   LeadStatusQualified,
	"calificado":  LeadStatusQualified,
	"proposal":    LeadStatusProposal,
	"propuesta":   LeadStatusProposal,
	"negotiation": LeadStatusNegotiation,
	"negociacion": LeadStatusNegotiation,
	"negociación": LeadStatusNegotiation,
	"won":         LeadStatusWon,
	"ganado":      LeadStatusWon,
	"lost":        LeadStatusLost,
	"perdido":     LeadStatusLost,
}

// Lead is a prospective customer moving through the sales funnel.
// A won lead is expected to have a Customer with the same name pair.
type Lead struct {
	ID string `json:"id"`
	Contact
	Status         string     `json:"status"`
	LastContactAt  *time.Time `json:"lastContactAt,omitempty"`
	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NormalizeLeadStatus maps English or Spanish status names to the funnel value.
// An empty status defaults to new; ok is false for anything unrecognized.
func NormalizeLeadStatus(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return LeadStatusNew, true
	}
	status, ok := leadStatusSynonyms[key]
	return status, ok
}
