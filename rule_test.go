package dungeongraph

import (
	"encoding/json"
	"testing"
)

func TestParseRule(t *testing.T) {
	cases := []struct {
		raw   string
		kind  RuleKind
		layer TileLayer
		count int
		parts []string
	}{
		{raw: `["worldGenMustContainSolidForeground"]`, kind: RuleMustContainSolid, layer: Foreground},
		{raw: `["worldGenMustContainAirBackground"]`, kind: RuleMustContainAir, layer: Background},
		{raw: `["worldGenMustContainSolid", "background"]`, kind: RuleMustContainSolid, layer: Background},
		{raw: `["worldGenMustContainAir"]`, kind: RuleMustContainAir, layer: Foreground},
		{raw: `["worldGenMustContainLiquid"]`, kind: RuleMustContainLiquid},
		{raw: `["worldGenMustNotContainLiquid"]`, kind: RuleMustNotContainLiquid},
		{raw: `["allowOverdrawing"]`, kind: RuleAllowOverdrawing},
		{raw: `["ignorePartMaximumRule"]`, kind: RuleIgnorePartMaximum},
		{raw: `["maxSpawnCount", [3]]`, kind: RuleMaxSpawnCount, count: 3},
		{raw: `["maxSpawnCount", 2]`, kind: RuleMaxSpawnCount, count: 2},
		{raw: `["doNotConnectToPart", ["a", "b"]]`, kind: RuleDoNotConnectToPart, parts: []string{"a", "b"}},
		{raw: `["doNotCombineWith", ["c"]]`, kind: RuleDoNotCombineWith, parts: []string{"c"}},
	}

	for _, tt := range cases {
		t.Run(tt.raw, func(t *testing.T) {
			r, ok, err := ParseRule(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected rule to be recognised")
			}
			if r.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %d", tt.kind, r.Kind)
			}
			if r.Layer != tt.layer {
				t.Fatalf("expected layer %s, got %s", tt.layer, r.Layer)
			}
			if r.MaxCount != tt.count {
				t.Fatalf("expected count %d, got %d", tt.count, r.MaxCount)
			}
			if len(r.Parts) != len(tt.parts) {
				t.Fatalf("expected parts %v, got %v", tt.parts, r.Parts)
			}
			for i := range tt.parts {
				if r.Parts[i] != tt.parts[i] {
					t.Fatalf("expected parts %v, got %v", tt.parts, r.Parts)
				}
			}
		})
	}
}

func TestParseRule_Unknown(t *testing.T) {
	SetLogger(nil)

	r, ok, err := ParseRule(json.RawMessage(`["worldGenMustContainCheese"]`))
	if err != nil {
		t.Fatalf("expected unknown rules to be skipped, got error %v", err)
	}
	if ok || r != nil {
		t.Fatalf("expected no rule, got %v", r)
	}

	rules, err := parseRules([]json.RawMessage{
		json.RawMessage(`["allowOverdrawing"]`),
		json.RawMessage(`["somethingNew", 1]`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected unknown rule to be dropped, got %d rules", len(rules))
	}
}

func TestParseRule_Malformed(t *testing.T) {
	for _, raw := range []string{`{}`, `[]`, `[1]`, `["maxSpawnCount"]`, `["worldGenMustContainAir", "sideways"]`} {
		_, _, err := ParseRule(json.RawMessage(raw))
		if err == nil {
			t.Errorf("%s: expected error", raw)
		}
	}
}

func TestRule_AllowsSpawnCount(t *testing.T) {
	r := &Rule{Kind: RuleMaxSpawnCount, MaxCount: 2}
	for count, expect := range map[int]bool{0: true, 1: true, 2: false, 3: false} {
		if r.AllowsSpawnCount(count) != expect {
			t.Errorf("count %d: expected %v", count, expect)
		}
	}

	other := &Rule{Kind: RuleAllowOverdrawing}
	if !other.AllowsSpawnCount(100) {
		t.Error("expected non spawn count rules to always allow")
	}
}

func TestRule_CheckPartCombinationsAllowed(t *testing.T) {
	r := &Rule{Kind: RuleDoNotCombineWith, Parts: []string{"shrine"}}

	if !r.CheckPartCombinationsAllowed(map[string]int{"hall": 3}) {
		t.Fatal("expected placement allowed before the shrine is placed")
	}
	if !r.CheckPartCombinationsAllowed(map[string]int{"shrine": 0}) {
		t.Fatal("expected zero counts to allow placement")
	}
	if r.CheckPartCombinationsAllowed(map[string]int{"shrine": 1}) {
		t.Fatal("expected placement blocked once the shrine is placed")
	}
}

func TestRule_DoesNotConnectToPart(t *testing.T) {
	r := &Rule{Kind: RuleDoNotConnectToPart, Parts: []string{"a"}}
	if !r.DoesNotConnectToPart("a") {
		t.Fatal("expected a to be refused")
	}
	if r.DoesNotConnectToPart("b") {
		t.Fatal("expected b to be allowed")
	}
}
