package protocol

import "testing"

func TestValidateOutboundRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"welcome without seq", Event{Type: EventWelcome}, true},
		{"welcome with seq", Event{Type: EventWelcome, ServerSeq: 1}, false},
		{"pong without seq", Event{Type: EventPong}, true},
		{"snapshot complete", Event{Type: EventTableSnapshot, ServerSeq: 1, Snapshot: &TableSnapshot{}}, true},
		{"snapshot missing body", Event{Type: EventTableSnapshot, ServerSeq: 1}, false},
		{"snapshot missing seq", Event{Type: EventTableSnapshot, Snapshot: &TableSnapshot{}}, false},
		{"discarded complete", Event{Type: EventDiscarded, ServerSeq: 2, Seat: SeatOf(0), Tile: "五萬"}, true},
		{"discarded missing seat", Event{Type: EventDiscarded, ServerSeq: 2, Tile: "五萬"}, false},
		{"discarded missing tile", Event{Type: EventDiscarded, ServerSeq: 2, Seat: SeatOf(0)}, false},
		{"turn start seat zero", Event{Type: EventTurnStart, ServerSeq: 3, Seat: SeatOf(0)}, true},
		{"claim window empty options", Event{Type: EventClaimWindow, ServerSeq: 4}, false},
		{"claim window with options", Event{Type: EventClaimWindow, ServerSeq: 4, OptionsForMe: []ClaimOption{{Claim: ClaimPon}}}, true},
		{"rejected missing code", Event{Type: EventRejected, ServerSeq: 5}, false},
		{"rejected complete", Event{Type: EventRejected, ServerSeq: 5, Code: RejectNotYourTurn}, true},
		{"settled missing body", Event{Type: EventScoreSettled, ServerSeq: 6}, false},
		{"unknown type", Event{Type: "MYSTERY", ServerSeq: 7}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutbound(tc.ev)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateIntent(t *testing.T) {
	if err := ValidateIntent(Intent{Type: IntentDiscard}); err == nil {
		t.Fatalf("discard without tile must fail")
	}
	if err := ValidateIntent(Intent{Type: IntentDiscard, Tile: "五萬"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateIntent(Intent{Type: IntentClaim, Claim: "PUNG"}); err == nil {
		t.Fatalf("unknown claim code must fail")
	}
	if err := ValidateIntent(Intent{Type: IntentClaim, Claim: ClaimPass}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateIntent(Intent{Type: "SOMETHING"}); err == nil {
		t.Fatalf("unknown intent type must fail")
	}
}

func TestParseIntentRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"CLAIM_INTENT","claim":"KAN","tiles":["五萬","五萬","五萬"],"clientSeq":9}`)
	intent, err := ParseIntent(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if intent.Claim != ClaimKan || len(intent.Tiles) != 3 || *intent.ClientSeq != 9 {
		t.Fatalf("unexpected intent: %+v", intent)
	}
}
