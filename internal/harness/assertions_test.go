package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mechanics/internal/sim"
)

func intp(n int) *int { return &n }

var sampleEvents = []sim.Event{
	{Subject: "p1", Kind: "health", Detail: "14"},
	{Subject: "p1", Kind: "message", Detail: "healed"},
	{Subject: "zombie", Kind: "fire", Detail: "60 ticks"},
	{Subject: "p1", Kind: "message", Detail: "cooldown"},
}

func TestAssertEventContains(t *testing.T) {
	ok := Assertion{Type: AssertEventContains, Event: &EventMatch{Subject: "zombie", Kind: "fire"}}
	assert.NoError(t, assertEventContains(sampleEvents, ok))

	miss := Assertion{Type: AssertEventContains, Event: &EventMatch{Kind: "sound"}}
	err := assertEventContains(sampleEvents, miss)
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "{kind=sound}", ae.Expected)
	assert.Contains(t, err.Error(), "[2] zombie fire 60 ticks")
}

func TestAssertEventCount(t *testing.T) {
	assert.NoError(t, assertEventCount(sampleEvents, Assertion{Kind: "message", Count: intp(2)}))
	assert.NoError(t, assertEventCount(sampleEvents, Assertion{Kind: "fire", Actor: "p1", Count: intp(0)}))
	assert.Error(t, assertEventCount(sampleEvents, Assertion{Kind: "message", Count: intp(3)}))
}

func TestAssertEventOrder(t *testing.T) {
	inOrder := Assertion{Events: []EventMatch{{Kind: "health"}, {Kind: "fire"}, {Detail: "cooldown"}}}
	assert.NoError(t, assertEventOrder(sampleEvents, inOrder))

	reversed := Assertion{Events: []EventMatch{{Kind: "fire"}, {Kind: "health"}}}
	err := assertEventOrder(sampleEvents, reversed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched up to {kind=health}")
}

func TestEvaluateAssertions_MissingContext(t *testing.T) {
	active := false
	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertCooldown, Actor: "p1", Item: "x", Trigger: "jump", Active: &active},
		{Type: AssertJournalCount, Count: intp(0)},
		{Type: AssertActorState, Actor: "p1", Level: intp(1)},
		{Type: "vibes"},
	}, nil)

	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "requires an engine")
	assert.Contains(t, errs[1], "requires a store")
	assert.Contains(t, errs[2], "requires a server")
	assert.Contains(t, errs[3], `unknown assertion type "vibes"`)
}

func TestAssertActorState(t *testing.T) {
	srv := sim.NewServer()
	a := srv.AddActor("p1", "Alex", "world")
	a.SetHealth(12)
	a.SetLevel(3)

	health := 12.0
	assert.NoError(t, assertActorState(srv, Assertion{Actor: "p1", Health: &health, Level: intp(3)}))
	assert.Error(t, assertActorState(srv, Assertion{Actor: "p1", Level: intp(4)}))
	assert.Error(t, assertActorState(srv, Assertion{Actor: "ghost", Level: intp(0)}))
}
