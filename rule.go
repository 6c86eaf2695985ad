package dungeongraph

import (
	"encoding/json"
	"image"

	"github.com/pkg/errors"
)

// RuleKind is the variant of a Rule
type RuleKind int

const (
	RuleMustContainSolid RuleKind = iota
	RuleMustContainAir
	RuleMustContainLiquid
	RuleMustNotContainLiquid
	RuleAllowOverdrawing
	RuleIgnorePartMaximum
	RuleMaxSpawnCount
	RuleDoNotConnectToPart
	RuleDoNotCombineWith
)

// Rule is a placement time check or bookkeeping flag attached to a part or tile.
// Only the fields relevant to Kind are set.
type Rule struct {
	Kind RuleKind

	// MustContainSolid, MustContainAir
	Layer TileLayer

	// MaxSpawnCount
	MaxCount int

	// DoNotConnectToPart, DoNotCombineWith
	Parts []string
}

// ParseRule parses a rule in the form [key, args...].
// Unknown keys are logged and return ok=false with no error; they're simply
// dropped from the part.
func ParseRule(raw json.RawMessage) (*Rule, bool, error) {
	var args []json.RawMessage
	err := json.Unmarshal(raw, &args)
	if err != nil {
		return nil, false, errors.Wrap(err, "rule must be a json array")
	}
	if len(args) == 0 {
		return nil, false, errors.New("rule is empty")
	}

	var key string
	err = json.Unmarshal(args[0], &key)
	if err != nil {
		return nil, false, errors.Wrap(err, "rule key must be a string")
	}

	switch key {
	case "worldGenMustContainSolidForeground":
		return &Rule{Kind: RuleMustContainSolid, Layer: Foreground}, true, nil
	case "worldGenMustContainSolidBackground":
		return &Rule{Kind: RuleMustContainSolid, Layer: Background}, true, nil
	case "worldGenMustContainAirForeground":
		return &Rule{Kind: RuleMustContainAir, Layer: Foreground}, true, nil
	case "worldGenMustContainAirBackground":
		return &Rule{Kind: RuleMustContainAir, Layer: Background}, true, nil
	case "worldGenMustContainSolid", "worldGenMustContainAir":
		layer, err := ruleLayer(args)
		if err != nil {
			return nil, false, errors.Wrapf(err, "rule %s", key)
		}
		kind := RuleMustContainSolid
		if key == "worldGenMustContainAir" {
			kind = RuleMustContainAir
		}
		return &Rule{Kind: kind, Layer: layer}, true, nil
	case "worldGenMustContainLiquid":
		return &Rule{Kind: RuleMustContainLiquid}, true, nil
	case "worldGenMustNotContainLiquid":
		return &Rule{Kind: RuleMustNotContainLiquid}, true, nil
	case "allowOverdrawing":
		return &Rule{Kind: RuleAllowOverdrawing}, true, nil
	case "ignorePartMaximumRule":
		return &Rule{Kind: RuleIgnorePartMaximum}, true, nil
	case "maxSpawnCount":
		count, err := ruleCount(args)
		if err != nil {
			return nil, false, errors.Wrapf(err, "rule %s", key)
		}
		return &Rule{Kind: RuleMaxSpawnCount, MaxCount: count}, true, nil
	case "doNotConnectToPart", "doNotCombineWith":
		parts, err := ruleParts(args)
		if err != nil {
			return nil, false, errors.Wrapf(err, "rule %s", key)
		}
		kind := RuleDoNotConnectToPart
		if key == "doNotCombineWith" {
			kind = RuleDoNotCombineWith
		}
		return &Rule{Kind: kind, Parts: parts}, true, nil
	}

	logger.Printf("unknown dungeon rule %q, ignoring", key)
	return nil, false, nil
}

// parseRules parses a list of rules, dropping unknown ones
func parseRules(raw []json.RawMessage) ([]*Rule, error) {
	rules := []*Rule{}
	for _, r := range raw {
		rule, ok, err := ParseRule(r)
		if err != nil {
			return nil, err
		}
		if ok {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// ruleLayer reads the optional layer argument
func ruleLayer(args []json.RawMessage) (TileLayer, error) {
	if len(args) < 2 {
		return Foreground, nil
	}
	var name string
	err := json.Unmarshal(args[1], &name)
	if err != nil {
		return Foreground, err
	}
	return ParseTileLayer(name)
}

// ruleCount reads either [n] or n
func ruleCount(args []json.RawMessage) (int, error) {
	if len(args) < 2 {
		return 0, errors.New("missing count")
	}
	var count int
	if err := json.Unmarshal(args[1], &count); err == nil {
		return count, nil
	}
	var counts []int
	err := json.Unmarshal(args[1], &counts)
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, errors.New("missing count")
	}
	return counts[0], nil
}

// ruleParts reads a list of part names
func ruleParts(args []json.RawMessage) ([]string, error) {
	if len(args) < 2 {
		return []string{}, nil
	}
	parts := []string{}
	err := json.Unmarshal(args[1], &parts)
	return parts, err
}

// CheckTileCanPlace returns if the tile owning this rule can be placed at pos
func (r *Rule) CheckTileCanPlace(pos image.Point, w *Writer) bool {
	switch r.Kind {
	case RuleMustContainSolid:
		return w.CheckSolid(pos, r.Layer)
	case RuleMustContainAir:
		return w.CheckOpen(pos, r.Layer)
	case RuleMustContainLiquid:
		return w.CheckOceanLiquid(pos)
	case RuleMustNotContainLiquid:
		return !w.CheckOceanLiquid(pos)
	}
	return true
}

// RequiresSolid returns if the owning tile must sit in solid ground
func (r *Rule) RequiresSolid() bool {
	return r.Kind == RuleMustContainSolid
}

// RequiresOpen returns if the owning tile must sit in open air
func (r *Rule) RequiresOpen() bool {
	return r.Kind == RuleMustContainAir
}

// RequiresLiquid returns if the owning tile must sit in liquid
func (r *Rule) RequiresLiquid() bool {
	return r.Kind == RuleMustContainLiquid
}

// Overdrawable returns if the owning tiles don't count as using places
func (r *Rule) Overdrawable() bool {
	return r.Kind == RuleAllowOverdrawing
}

// IgnoresPartMaximum returns if the owning part skips maxParts / maxRadius
func (r *Rule) IgnoresPartMaximum() bool {
	return r.Kind == RuleIgnorePartMaximum
}

// AllowsSpawnCount returns if another part can be placed given `current` already placed
func (r *Rule) AllowsSpawnCount(current int) bool {
	if r.Kind == RuleMaxSpawnCount {
		return current < r.MaxCount
	}
	return true
}

// DoesNotConnectToPart returns if the owning part refuses to connect to the named part
func (r *Rule) DoesNotConnectToPart(name string) bool {
	if r.Kind != RuleDoNotConnectToPart {
		return false
	}
	for _, p := range r.Parts {
		if p == name {
			return true
		}
	}
	return false
}

// CheckPartCombinationsAllowed returns false if any part the owning part cannot be
// combined with has already been placed. Nb. this only looks at what is placed
// right now, placing the named part later is not prevented.
func (r *Rule) CheckPartCombinationsAllowed(counts map[string]int) bool {
	if r.Kind != RuleDoNotCombineWith {
		return true
	}
	for _, p := range r.Parts {
		if counts[p] > 0 {
			return false
		}
	}
	return true
}
