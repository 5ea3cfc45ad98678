package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/fieldmap"
	"smallbiz-crm/internal/logging"
)

// Entity selects the table an import writes to.
type Entity string

const (
	EntityCustomers Entity = "customers"
	EntityLeads     Entity = "leads"
)

// ParseEntity validates the "type" value sent by clients.
func ParseEntity(raw string) (Entity, error) {
	switch e := Entity(strings.ToLower(strings.TrimSpace(raw))); e {
	case EntityCustomers, EntityLeads:
		return e, nil
	default:
		return "", fmt.Errorf("%w: type must be customers or leads", domain.ErrInvalidInput)
	}
}

// CustomerStore is the persistence the resolver needs for customers.
type CustomerStore interface {
	FindByName(ctx context.Context, firstName, lastName string) (*domain.Customer, error)
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}

// LeadStore is the persistence the resolver needs for leads.
type LeadStore interface {
	FindByName(ctx context.Context, firstName, lastName string) (*domain.Lead, error)
	Create(ctx context.Context, l domain.Lead) (*domain.Lead, error)
	Update(ctx context.Context, l domain.Lead) (*domain.Lead, error)
}

// Summary reports the outcome of one import batch. Errors stays nil when every
// record was stored so it serializes as null.
type Summary struct {
	Count   int      `json:"count"`
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// CustomerEnsurer creates or completes the customer for a won lead.
// The customer service satisfies it.
type CustomerEnsurer interface {
	EnsureByName(ctx context.Context, in domain.Contact) (*domain.Customer, bool, error)
}

// errNotConverted marks a lead that was stored but whose customer could not
// be ensured. The record still counts as imported.
var errNotConverted = errors.New("lead stored but not converted to customer")

// Importer upserts normalized records, matching existing entities on the exact
// (firstName, lastName) pair.
type Importer struct {
	customers CustomerStore
	leads     LeadStore
	converter CustomerEnsurer
	logger    *slog.Logger
	now       func() time.Time
}

// New builds an Importer. converter may be nil, in which case won leads are
// stored without ensuring a customer.
func New(customers CustomerStore, leads LeadStore, converter CustomerEnsurer, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Importer{
		customers: customers,
		leads:     leads,
		converter: converter,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Import processes records strictly in order so a row can match an entity
// inserted by an earlier row of the same batch. A failing record is recorded
// and the loop moves on; nothing is rolled back.
func (i *Importer) Import(ctx context.Context, entity Entity, records []Record) Summary {
	var sum Summary
	for idx, rec := range records {
		var (
			created bool
			err     error
		)
		switch entity {
		case EntityCustomers:
			created, err = i.upsertCustomer(ctx, rec)
		case EntityLeads:
			created, err = i.upsertLead(ctx, rec)
		default:
			err = fmt.Errorf("%w: unknown entity %q", domain.ErrInvalidInput, entity)
		}
		if err != nil {
			name := strings.TrimSpace(rec[fieldmap.FirstName] + " " + rec[fieldmap.LastName])
			sum.Errors = append(sum.Errors, fmt.Sprintf("record %d (%s): %v", idx+1, name, err))
			i.logger.Warn("import record failed", "entity", entity, "record", idx+1, "error", err)
			if !errors.Is(err, errNotConverted) {
				continue
			}
		}
		if created {
			sum.Created++
		} else {
			sum.Updated++
		}
		if extra := unknownFields(rec); len(extra) > 0 {
			i.logger.Debug("import ignored columns", "entity", entity, "record", idx+1, "columns", extra)
		}
	}
	sum.Count = sum.Created + sum.Updated
	i.logger.Info("import finished", "entity", entity, "records", len(records),
		"created", sum.Created, "updated", sum.Updated, "errors", len(sum.Errors))
	return sum
}

func (i *Importer) upsertCustomer(ctx context.Context, rec Record) (bool, error) {
	if i.customers == nil {
		return false, errors.New("customer store unavailable")
	}
	first, last := rec[fieldmap.FirstName], rec[fieldmap.LastName]
	existing, err := i.customers.FindByName(ctx, first, last)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("lookup customer: %w", err)
	}
	if existing == nil {
		c := domain.Customer{}
		mergeContact(&c.Contact, rec)
		if _, err := i.customers.Create(ctx, c); err != nil {
			return false, fmt.Errorf("create customer: %w", err)
		}
		return true, nil
	}

	mergeContact(&existing.Contact, rec)
	existing.UpdatedAt = i.now()
	if _, err := i.customers.Update(ctx, *existing); err != nil {
		return false, fmt.Errorf("update customer: %w", err)
	}
	return false, nil
}

func (i *Importer) upsertLead(ctx context.Context, rec Record) (bool, error) {
	if i.leads == nil {
		return false, errors.New("lead store unavailable")
	}
	first, last := rec[fieldmap.FirstName], rec[fieldmap.LastName]
	existing, err := i.leads.FindByName(ctx, first, last)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("lookup lead: %w", err)
	}
	if existing == nil {
		l := domain.Lead{Status: domain.LeadStatusNew}
		mergeContact(&l.Contact, rec)
		if err := mergeLead(&l, rec); err != nil {
			return false, err
		}
		stored, err := i.leads.Create(ctx, l)
		if err != nil {
			return false, fmt.Errorf("create lead: %w", err)
		}
		if stored.Status == domain.LeadStatusWon {
			return true, i.convert(ctx, stored)
		}
		return true, nil
	}

	previous := existing.Status
	mergeContact(&existing.Contact, rec)
	if err := mergeLead(existing, rec); err != nil {
		return false, err
	}
	existing.UpdatedAt = i.now()
	stored, err := i.leads.Update(ctx, *existing)
	if err != nil {
		return false, fmt.Errorf("update lead: %w", err)
	}
	if stored.Status == domain.LeadStatusWon && previous != domain.LeadStatusWon {
		return false, i.convert(ctx, stored)
	}
	return false, nil
}

// convert ensures a customer for a lead that just became won.
func (i *Importer) convert(ctx context.Context, l *domain.Lead) error {
	if i.converter == nil {
		return nil
	}
	if _, _, err := i.converter.EnsureByName(ctx, l.Contact); err != nil {
		return fmt.Errorf("%w: %v", errNotConverted, err)
	}
	return nil
}

// mergeContact copies every present, non-empty field of rec over dst.
func mergeContact(dst *domain.Contact, rec Record) {
	fields := []struct {
		name string
		dst  *string
	}{
		{fieldmap.FirstName, &dst.FirstName},
		{fieldmap.LastName, &dst.LastName},
		{fieldmap.Email, &dst.Email},
		{fieldmap.Phone, &dst.Phone},
		{fieldmap.Street, &dst.Street},
		{fieldmap.City, &dst.City},
		{fieldmap.Province, &dst.Province},
		{fieldmap.DeliveryInstructions, &dst.DeliveryInstructions},
		{fieldmap.Source, &dst.Source},
		{fieldmap.Brand, &dst.Brand},
		{fieldmap.Notes, &dst.Notes},
	}
	for _, f := range fields {
		if v := strings.TrimSpace(rec[f.name]); v != "" {
			*f.dst = v
		}
	}
}

func mergeLead(dst *domain.Lead, rec Record) error {
	if raw := rec[fieldmap.Status]; strings.TrimSpace(raw) != "" {
		status, ok := domain.NormalizeLeadStatus(raw)
		if !ok {
			return fmt.Errorf("%w: unknown lead status %q", domain.ErrInvalidInput, raw)
		}
		dst.Status = status
	}
	for field, target := range map[string]**time.Time{
		fieldmap.LastContactAt:  &dst.LastContactAt,
		fieldmap.NextFollowUpAt: &dst.NextFollowUpAt,
	} {
		raw := strings.TrimSpace(rec[field])
		if raw == "" {
			continue
		}
		t, err := ParseDate(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		*target = &t
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02/01/2006 15:04",
}

// ParseDate accepts ISO dates and day-first dates as written in Spanish locales.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, raw)
}

func unknownFields(rec Record) []string {
	var out []string
	for k := range rec {
		if !fieldmap.Known(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
