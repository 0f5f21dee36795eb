package ir

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Built-in condition types understood by the evaluator.
const (
	CondHealthAbove           = "health_above"
	CondHealthBelow           = "health_below"
	CondHealthPercentageAbove = "health_percentage_above"
	CondHealthPercentageBelow = "health_percentage_below"
	CondHungerAbove           = "hunger_above"
	CondHungerBelow           = "hunger_below"
	CondLevelAbove            = "level_above"
	CondLevelBelow            = "level_below"
	CondHasPotionEffect       = "has_potion_effect"
	CondMissingPotionEffect   = "missing_potion_effect"
	CondHasItem               = "has_item"
	CondMissingItem           = "missing_item"
	CondHasPermission         = "has_permission"
	CondMissingPermission     = "missing_permission"
	CondIsDay                 = "is_day"
	CondIsNight               = "is_night"
	CondIsRaining             = "is_raining"
	CondIsClear               = "is_clear"
	CondYAbove                = "y_above"
	CondYBelow                = "y_below"
	CondInBiome               = "in_biome"
	CondIsSneaking            = "is_sneaking"
	CondIsSprinting           = "is_sprinting"
	CondIsFlying              = "is_flying"
	CondIsInWater             = "is_in_water"
	CondIsOnGround            = "is_on_ground"
	CondIsInCombat            = "is_in_combat"
	CondTargetIsPlayer        = "target_is_player"
	CondTargetHealthBelow     = "target_health_below"
)

// ErrEmptyCondition is returned when parsing an empty condition string.
var ErrEmptyCondition = errors.New("empty condition")

// Condition is an immutable predicate descriptor: a type tag, at most one
// operand (numeric or text) and an inversion flag.
//
// The operand presence is tracked explicitly, so "health_below:0" and
// "health_below" are different conditions.
type Condition struct {
	typ       string
	number    float64
	text      string
	hasNumber bool
	hasText   bool
	inverted  bool
}

// NewCondition returns an operand-less condition of the given type.
func NewCondition(typ string) Condition {
	return Condition{typ: normalizeType(typ)}
}

// NumberCondition returns a condition with a numeric operand.
func NumberCondition(typ string, v float64) Condition {
	return Condition{typ: normalizeType(typ), number: v, hasNumber: true}
}

// TextCondition returns a condition with a text operand.
func TextCondition(typ string, s string) Condition {
	return Condition{typ: normalizeType(typ), text: s, hasText: true}
}

// HealthAbove requires the actor's health to exceed v.
func HealthAbove(v float64) Condition { return NumberCondition(CondHealthAbove, v) }

// HealthBelow requires the actor's health to be under v.
func HealthBelow(v float64) Condition { return NumberCondition(CondHealthBelow, v) }

// LevelAbove requires the actor's experience level to exceed v.
func LevelAbove(v int) Condition { return NumberCondition(CondLevelAbove, float64(v)) }

// IsDay requires the actor's world to be in daytime.
func IsDay() Condition { return NewCondition(CondIsDay) }

// IsNight requires the actor's world to be at night.
func IsNight() Condition { return NewCondition(CondIsNight) }

// IsSneaking requires the actor to be sneaking.
func IsSneaking() Condition { return NewCondition(CondIsSneaking) }

// InBiome requires the actor to stand in the named biome.
func InBiome(name string) Condition { return TextCondition(CondInBiome, name) }

// HasPermission requires the actor to hold the permission node.
func HasPermission(node string) Condition {
	return TextCondition(CondHasPermission, node)
}

// HasItem requires at least amount items of the given material.
func HasItem(material string, amount int) Condition {
	return TextCondition(CondHasItem, fmt.Sprintf("%s*%d", material, amount))
}

// Type returns the lower-case type tag.
func (c Condition) Type() string { return c.typ }

// Number returns the numeric operand, if present.
func (c Condition) Number() (float64, bool) { return c.number, c.hasNumber }

// Text returns the text operand, if present.
func (c Condition) Text() (string, bool) { return c.text, c.hasText }

// HasOperand reports whether the condition carries an operand.
func (c Condition) HasOperand() bool { return c.hasNumber || c.hasText }

// Inverted reports whether the predicate result is negated.
func (c Condition) Inverted() bool { return c.inverted }

// Invert returns a copy of c with the inversion flag flipped.
func (c Condition) Invert() Condition {
	c.inverted = !c.inverted
	return c
}

// WithInverted returns a copy of c with the given inversion flag.
func (c Condition) WithInverted(inverted bool) Condition {
	c.inverted = inverted
	return c
}

// Valid reports whether the condition has a non-empty type.
func (c Condition) Valid() bool { return c.typ != "" }

// Equal reports whether two conditions are identical.
func (c Condition) Equal(other Condition) bool { return c == other }

// Operand returns the operand in its serialized form, or "" when absent.
// Text that would otherwise read back as a number, as an empty value or
// with different spacing is wrapped in single quotes.
func (c Condition) Operand() string {
	switch {
	case c.hasNumber:
		return formatNumber(c.number)
	case c.hasText:
		if needsQuotes(c.text) {
			return "'" + c.text + "'"
		}
		return c.text
	default:
		return ""
	}
}

// String returns the canonical form type[:value][:true].
// An inverted operand-less condition serializes as "type::true". A text
// operand whose last segment reads as an inversion flag is always followed
// by an explicit flag so it survives parsing.
func (c Condition) String() string {
	var b strings.Builder
	b.WriteString(c.typ)
	if c.HasOperand() {
		b.WriteByte(':')
		b.WriteString(c.Operand())
	}
	switch {
	case c.inverted:
		if !c.HasOperand() {
			b.WriteByte(':')
		}
		b.WriteString(":true")
	case c.hasText && endsWithFlag(c.Operand()):
		b.WriteString(":false")
	}
	return b.String()
}

// Describe returns a human-readable form such as NOT HEALTH_BELOW 10.
func (c Condition) Describe() string {
	var b strings.Builder
	if c.inverted {
		b.WriteString("NOT ")
	}
	b.WriteString(strings.ToUpper(c.typ))
	switch {
	case c.hasNumber:
		b.WriteByte(' ')
		b.WriteString(formatNumber(c.number))
	case c.hasText:
		b.WriteString(" '")
		b.WriteString(c.text)
		b.WriteByte('\'')
	}
	return b.String()
}

// ParseCondition parses the grammar type[:value[:inverted]].
//
// The value is numeric when it parses as a finite float, otherwise text.
// A value wrapped in single quotes is always text, with the quotes removed.
// An empty value segment means no operand. A trailing "true" or "false"
// segment is taken as the inversion flag when more than two segments are
// present, so text operands may themselves contain colons.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Condition{}, ErrEmptyCondition
	}

	parts := strings.Split(s, ":")
	c := Condition{typ: normalizeType(parts[0])}
	if c.typ == "" {
		return Condition{}, fmt.Errorf("condition %q: missing type", s)
	}
	if len(parts) == 1 {
		return c, nil
	}

	rest := parts[1:]
	if len(rest) > 1 {
		if inverted, ok := parseFlag(rest[len(rest)-1]); ok {
			c.inverted = inverted
			rest = rest[:len(rest)-1]
		}
	}

	value := strings.Join(rest, ":")
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		c.text = value[1 : len(value)-1]
		c.hasText = true
		return c, nil
	}
	if value == "" {
		return c, nil
	}
	if n, ok := parseNumber(value); ok {
		c.number = n
		c.hasNumber = true
	} else {
		c.text = value
		c.hasText = true
	}
	return c, nil
}

// MustParseCondition is like ParseCondition but panics on error.
// Use only in tests or for literals known to be valid.
func MustParseCondition(s string) Condition {
	c, err := ParseCondition(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseConditions parses every entry, returning the valid conditions and
// one error per rejected entry.
func ParseConditions(entries []string) ([]Condition, []error) {
	out := make([]Condition, 0, len(entries))
	var errs []error
	for _, e := range entries {
		c, err := ParseCondition(e)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	return out, errs
}

func parseFlag(seg string) (inverted, ok bool) {
	switch strings.ToLower(strings.TrimSpace(seg)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// endsWithFlag reports whether the last colon segment of operand would be
// taken as the inversion flag.
func endsWithFlag(operand string) bool {
	i := strings.LastIndexByte(operand, ':')
	if i < 0 {
		return false
	}
	_, ok := parseFlag(operand[i+1:])
	return ok
}

func needsQuotes(text string) bool {
	if text == "" || strings.TrimSpace(text) != text {
		return true
	}
	if text[0] == '\'' && text[len(text)-1] == '\'' {
		return true
	}
	_, numeric := parseNumber(text)
	return numeric
}

func normalizeType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
