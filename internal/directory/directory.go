package directory

import (
	"context"
	"fmt"
	"strings"
)

const (
	// RoleProvider is the role stored by the marketplace for prestataires.
	RoleProvider = "PRESTATAIRE"
)

// Provider is a marketplace account offering paid services.
type Provider struct {
	ID          int64    `json:"id" mapstructure:"id"`
	Name        string   `json:"nom,omitempty" mapstructure:"nom"`
	FirstName   string   `json:"prenom,omitempty" mapstructure:"prenom"`
	Email       string   `json:"email,omitempty" mapstructure:"email"`
	Role        string   `json:"role,omitempty" mapstructure:"role"`
	Skills      string   `json:"competences,omitempty" mapstructure:"competences"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
	HourlyRate  *float64 `json:"tarifHoraire,omitempty" mapstructure:"tarifHoraire"`
}

// Directory returns the current roster of providers.
type Directory interface {
	ListProviders(ctx context.Context) ([]Provider, error)
}

// DisplayName returns "Prenom Nom", falling back to the email.
func (p Provider) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.Name))
	if name == "" {
		return p.Email
	}
	return name
}

// Rate returns the hourly rate and whether it is known.
// A zero or negative rate is treated as unknown.
func (p Provider) Rate() (float64, bool) {
	if p.HourlyRate == nil || *p.HourlyRate <= 0 {
		return 0, false
	}
	return *p.HourlyRate, true
}

// IsProvider reports whether the role designates a prestataire.
// Rosters that do not carry roles at all are considered provider-only.
func IsProvider(role string) bool {
	role = strings.TrimSpace(role)
	return role == "" || strings.EqualFold(role, RoleProvider) || strings.EqualFold(role, "provider")
}

// Static is an in-memory directory.
type Static struct {
	Providers []Provider
}

// NewStatic returns a directory serving a copy of the given providers.
func NewStatic(providers ...Provider) *Static {
	return &Static{Providers: append([]Provider(nil), providers...)}
}

func (s *Static) ListProviders(ctx context.Context) ([]Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roster := make([]Provider, 0, len(s.Providers))
	for _, p := range s.Providers {
		if IsProvider(p.Role) {
			roster = append(roster, p)
		}
	}
	return roster, nil
}

// Func adapts a function to the Directory interface.
type Func func(ctx context.Context) ([]Provider, error)

func (f Func) ListProviders(ctx context.Context) ([]Provider, error) {
	if f == nil {
		return nil, fmt.Errorf("directory func is nil")
	}
	return f(ctx)
}
