package resolve

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dertown/eventscrape/internal/domain"
	"github.com/dertown/eventscrape/internal/logger"
)

// LocationStore lists and creates location rows.
type LocationStore interface {
	List(ctx context.Context) ([]domain.Location, error)
	Create(ctx context.Context, location *domain.Location) error
}

// OrganizationStore lists and creates organization rows.
type OrganizationStore interface {
	List(ctx context.Context) ([]domain.Organization, error)
	Create(ctx context.Context, org *domain.Organization) error
}

// defaultOrganizationRules force a fixed organization for events scraped
// from known domains, bypassing fuzzy resolution. The created row is
// approved, not pending, because the mapping is operator-maintained.
var defaultOrganizationRules = []struct {
	urlSubstring string
	orgName      string
}{
	{urlSubstring: "icicle.org", orgName: "Icicle Creek Center for the Arts"},
}

// Resolver finds or creates Location and Organization rows by fuzzy name
// match. The find-or-create section is serialized so concurrent source
// workers cannot race two creates for the same new entity.
type Resolver struct {
	locations LocationStore
	orgs      OrganizationStore
	threshold int
	log       logger.Interface

	mu sync.Mutex
}

// NewResolver creates a resolver. A non-positive threshold uses
// DefaultThreshold.
func NewResolver(locations LocationStore, orgs OrganizationStore, threshold int, log logger.Interface) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		locations: locations,
		orgs:      orgs,
		threshold: threshold,
		log:       log.WithComponent("resolve"),
	}
}

// Location resolves a free-text venue name to a Location row, creating a
// pending row when no existing row matches. An empty name resolves to nil.
func (r *Resolver) Location(ctx context.Context, name string) (*domain.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	names := make([]string, len(existing))
	for i := range existing {
		names[i] = existing[i].Name
	}
	if idx, score := BestMatch(name, names, r.threshold); idx >= 0 {
		r.log.Debug("Matched existing location", "name", name, "match", existing[idx].Name, "score", score)
		return &existing[idx], nil
	}

	location := &domain.Location{Name: name, Status: domain.StatusPending}
	if createErr := r.locations.Create(ctx, location); createErr != nil {
		return nil, fmt.Errorf("create location %q: %w", name, createErr)
	}
	r.log.Info("Created pending location", "name", name)
	return location, nil
}

// Organization resolves an event's organization. Precedence: a domain rule
// matching the source URL, then a fuzzy match on the extracted name (with
// a pending row created on miss), then the source's default organization.
func (r *Resolver) Organization(
	ctx context.Context,
	name string,
	sourceURL string,
	defaultOrgID *string,
) (*string, error) {
	if org, err := r.ruleOrganization(ctx, sourceURL); err != nil {
		return nil, err
	} else if org != nil {
		return &org.ID, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return defaultOrgID, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	names := make([]string, len(existing))
	for i := range existing {
		names[i] = existing[i].Name
	}
	if idx, score := BestMatch(name, names, r.threshold); idx >= 0 {
		r.log.Debug("Matched existing organization", "name", name, "match", existing[idx].Name, "score", score)
		return &existing[idx].ID, nil
	}

	org := &domain.Organization{Name: name, Status: domain.StatusPending}
	if createErr := r.orgs.Create(ctx, org); createErr != nil {
		return nil, fmt.Errorf("create organization %q: %w", name, createErr)
	}
	r.log.Info("Created pending organization", "name", name)
	return &org.ID, nil
}

// ruleOrganization applies the hard-coded domain rules, creating the named
// organization (exact name, approved) when it does not exist yet.
func (r *Resolver) ruleOrganization(ctx context.Context, sourceURL string) (*domain.Organization, error) {
	var orgName string
	for _, rule := range defaultOrganizationRules {
		if strings.Contains(sourceURL, rule.urlSubstring) {
			orgName = rule.orgName
			break
		}
	}
	if orgName == "" {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	for i := range existing {
		if existing[i].Name == orgName {
			return &existing[i], nil
		}
	}

	org := &domain.Organization{Name: orgName, Status: domain.StatusApproved}
	if createErr := r.orgs.Create(ctx, org); createErr != nil {
		return nil, fmt.Errorf("create organization %q: %w", orgName, createErr)
	}
	return org, nil
}
