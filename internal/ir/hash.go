package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDefinition prefixes definition hashes.
// The version suffix leaves room for a future algorithm change.
const DomainDefinition = "mechanics/definition/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DefinitionHash returns a stable content hash of an item definition.
// Journal records carry it so that a firing can be tied to the exact
// definition that produced it, even after the item file changes.
func DefinitionHash(def ItemDefinition) (string, error) {
	canonical, err := MarshalCanonical(definitionObject(def))
	if err != nil {
		return "", fmt.Errorf("DefinitionHash: failed to marshal %s: %w", def.ID, err)
	}
	return hashWithDomain(DomainDefinition, canonical), nil
}

// CanonicalDefinition returns the canonical JSON body that DefinitionHash
// hashes.
func CanonicalDefinition(def ItemDefinition) ([]byte, error) {
	canonical, err := MarshalCanonical(definitionObject(def))
	if err != nil {
		return nil, fmt.Errorf("CanonicalDefinition: failed to marshal %s: %w", def.ID, err)
	}
	return canonical, nil
}

// MustDefinitionHash is like DefinitionHash but panics on error.
func MustDefinitionHash(def ItemDefinition) string {
	h, err := DefinitionHash(def)
	if err != nil {
		panic(err)
	}
	return h
}

func definitionObject(def ItemDefinition) map[string]any {
	lore := def.Lore
	if lore == nil {
		lore = []string{}
	}
	mechanics := make(map[string]any, len(def.Mechanics))
	for kind, specs := range def.Mechanics {
		actions := make([]any, len(specs))
		for i, spec := range specs {
			conds := make([]any, len(spec.Conditions))
			for j, c := range spec.Conditions {
				conds[j] = c.String()
			}
			params := map[string]any{}
			for k, v := range spec.Params {
				if v != nil {
					params[k] = v
				}
			}
			actions[i] = map[string]any{
				"kind":       spec.Kind,
				"delay":      spec.DelayTicks,
				"params":     params,
				"conditions": conds,
			}
		}
		mechanics[string(kind)] = actions
	}
	return map[string]any{
		"id":           def.ID,
		"display_name": def.DisplayName,
		"material":     def.Material,
		"lore":         lore,
		"cooldown":     def.CooldownSeconds,
		"consumable":   def.Consumable,
		"permission":   def.Permission,
		"stackable":    def.Stackable,
		"max_stack":    def.MaxStackSize,
		"mechanics":    mechanics,
	}
}
