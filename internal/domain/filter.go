package domain

import "time"

// Filter narrows list, export and report queries. Zero values mean "no filter".
type Filter struct {
	DateStart *time.Time
	DateEnd   *time.Time
	Brand     string
	Province  string
	City      string
	Source    string
	Status    string
}
