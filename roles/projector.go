// Package roles projects a streak count onto the single badge role a
// principal should hold in the external membership system.
package roles

import (
	"context"
	"errors"

	"github.com/daybreakhq/wakeup/utils"
)

// ErrRoleNotProvisioned is returned by a Client when the target system does
// not have the requested role configured.
var ErrRoleNotProvisioned = errors.New("role not provisioned")

// Client manages role membership for principals in the external system.
// Both operations are best-effort from the projector's point of view.
type Client interface {
	RemoveRoles(ctx context.Context, principal string, roleNames []string) error
	GrantRole(ctx context.Context, principal, roleName string) error
}

// Tier maps a streak threshold to a role name.
type Tier struct {
	Threshold int
	Name      string
}

// DefaultTiers is the badge ladder, highest threshold first.
var DefaultTiers = []Tier{
	{100, "Riser LV10"},
	{50, "Riser LV9"},
	{30, "Riser LV8"},
	{21, "Riser LV7"},
	{14, "Riser LV6"},
	{10, "Riser LV5"},
	{7, "Riser LV4"},
	{5, "Riser LV3"},
	{3, "Riser LV2"},
	{1, "Riser LV1"},
}

// Match returns the highest tier whose threshold the streak meets or exceeds.
func Match(tiers []Tier, streak int) (Tier, bool) {
	best := Tier{Threshold: -1}
	for _, t := range tiers {
		if streak >= t.Threshold && t.Threshold > best.Threshold {
			best = t
		}
	}
	if best.Threshold < 0 {
		return Tier{}, false
	}
	return best, true
}

// Projector resynchronizes a principal's badge role from their streak.
type Projector struct {
	client Client
	tiers  []Tier
}

// NewProjector builds a Projector. A nil client disables role sync.
func NewProjector(client Client, tiers []Tier) *Projector {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	return &Projector{client: client, tiers: tiers}
}

// Sync removes every tier role from the principal and grants the one matching
// the streak. It is a full resync, idempotent under repeated application, and
// never fails the caller: errors are logged, a missing role in the external
// system is a warned no-op, and a streak below the lowest tier grants nothing.
func (p *Projector) Sync(ctx context.Context, principal string, streak int) {
	if p.client == nil {
		return
	}

	matched, ok := Match(p.tiers, streak)
	if !ok {
		return
	}

	names := make([]string, len(p.tiers))
	for i, t := range p.tiers {
		names[i] = t.Name
	}
	if err := p.client.RemoveRoles(ctx, principal, names); err != nil {
		warnf("remove tier roles for %s: %v", principal, err)
	}

	if err := p.client.GrantRole(ctx, principal, matched.Name); err != nil {
		if errors.Is(err, ErrRoleNotProvisioned) {
			warnf("role %q not provisioned in membership system, skipping grant for %s", matched.Name, principal)
			return
		}
		errorf("grant role %q to %s: %v", matched.Name, principal, err)
		return
	}
	infof("granted %q to %s (streak %d)", matched.Name, principal, streak)
}

func infof(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Infof(format, args...)
	}
}

func warnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}

func errorf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf(format, args...)
	}
}
