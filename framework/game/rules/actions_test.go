package rules

import (
	"fmt"
	"testing"

	"tai16/common/config"
	"tai16/framework/game"
)

func testSettings() config.GameSettings {
	return config.GameSettings{
		TaiCapPolicy:    "UP_TO_8_POINTS",
		DeadlinePolicy:  "SOFT",
		DeadlineSeconds: 10,
	}
}

func buildTable(id string) *game.Table {
	table := &game.Table{
		ID:      id,
		Players: make([]*game.Player, 4),
		Wall:    []string{"一筒", "二筒", "三筒", "九筒"},
		Turn:    0,
		Phase:   game.PhasePlaying,
	}
	for i := 0; i < 4; i++ {
		table.Players[i] = &game.Player{
			ID:   fmt.Sprintf("p%d", i),
			Seat: i,
			Hand: []string{"一萬", "二萬", "三萬"},
		}
	}
	return table
}

func newTestActions(table *game.Table) (*Actions, *game.MemoryTableStore) {
	store := game.NewMemoryTableStore()
	store.Put(table)
	return NewActions(store, testSettings()), store
}

func TestDiscardWithoutClaimsAdvancesTurn(t *testing.T) {
	table := buildTable("r1")
	table.Players[0].Hand = append(table.Players[0].Hand, "九萬")
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r1", "p0", "九萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if table.Phase != game.PhasePlaying || table.Turn != 1 {
		t.Fatalf("expected turn to advance to seat 1, got phase=%s turn=%d", table.Phase, table.Turn)
	}
	if table.TurnDiscarded {
		t.Fatalf("TurnDiscarded must reset for the new turn")
	}
	if len(table.Players[1].Hand) != 4 {
		t.Fatalf("next player must draw, hand size %d", len(table.Players[1].Hand))
	}
	if got := table.Players[0].Discards; len(got) != 1 || got[0] != "九萬" {
		t.Fatalf("discard pile wrong: %v", got)
	}
}

func TestDiscardOpensTieredClaimWindow(t *testing.T) {
	table := buildTable("r2")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	// seat 2 can pong, seat 1 (next seat) can chi, seat 3 can kong
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	table.Players[1].Hand = []string{"四萬", "六萬", "白"}
	table.Players[3].Hand = []string{"五萬", "五萬", "五萬"}
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r2", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if table.Phase != game.PhaseClaiming || table.Claiming == nil {
		t.Fatalf("expected claiming phase, got %s", table.Phase)
	}
	claiming := table.Claiming
	if claiming.CurrentPriority != game.PriorityPong {
		t.Fatalf("expected pong tier first, got %d", claiming.CurrentPriority)
	}
	if !claiming.Pending[2] || !claiming.Pending[3] || claiming.Pending[1] {
		t.Fatalf("pending seats wrong: %v", claiming.Pending)
	}
	if claiming.DeadlineAtMs == 0 {
		t.Fatalf("deadline must be set")
	}
}

func TestHuOutranksPong(t *testing.T) {
	table := buildTable("r3")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	table.Players[3].Waiting = true
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r3", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if table.Claiming.CurrentPriority != game.PriorityHu {
		t.Fatalf("hu tier must arbitrate first, got %d", table.Claiming.CurrentPriority)
	}
	if !table.Claiming.Pending[3] || table.Claiming.Pending[2] {
		t.Fatalf("only the waiting seat is pending at hu tier: %v", table.Claiming.Pending)
	}
}

func TestPassDemotesToNextTier(t *testing.T) {
	table := buildTable("r4")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	table.Players[1].Hand = []string{"四萬", "六萬", "白"}
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r4", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if err := actions.PassClaim("r4", "p2"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	claiming := table.Claiming
	if claiming.Resolved {
		t.Fatalf("chi tier still open, arbitration must not resolve")
	}
	if claiming.CurrentPriority != game.PriorityChi || !claiming.Pending[1] {
		t.Fatalf("expected demotion to chi tier for seat 1, got prio=%d pending=%v", claiming.CurrentPriority, claiming.Pending)
	}
}

func TestAllPassResumesPlay(t *testing.T) {
	table := buildTable("r5")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r5", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if err := actions.PassClaim("r5", "p2"); err != nil {
		t.Fatalf("pass failed: %v", err)
	}
	if table.Phase != game.PhasePlaying || table.Turn != 1 {
		t.Fatalf("play must resume at the next seat, got phase=%s turn=%d", table.Phase, table.Turn)
	}
}

func TestPongTakesDiscardAndTurn(t *testing.T) {
	table := buildTable("r6")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r6", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if err := actions.HandleClaimRequest("r6", "p2", game.LegacyClaimPong, []string{"五萬", "五萬"}); err != nil {
		t.Fatalf("pong failed: %v", err)
	}

	claiming := table.Claiming
	if !claiming.Resolved || claiming.ResolvedSeat != 2 || claiming.ResolvedClaim != game.LegacyClaimPong {
		t.Fatalf("arbitration not resolved as pong by seat 2: %+v", claiming)
	}
	if table.Phase != game.PhasePlaying || table.Turn != 2 || table.TurnDiscarded {
		t.Fatalf("claimant must act next, got phase=%s turn=%d", table.Phase, table.Turn)
	}
	if len(table.Players[0].Discards) != 0 {
		t.Fatalf("claimed tile must leave the discard pile: %v", table.Players[0].Discards)
	}
	melds := table.Players[2].Melds
	if len(melds) != 1 || melds[0].Kind != game.LegacyClaimPong || len(melds[0].Tiles) != 3 {
		t.Fatalf("meld wrong: %+v", melds)
	}
	if melds[0].From != 0 {
		t.Fatalf("meld must record the discarder, got %d", melds[0].From)
	}
}

func TestKongDrawsReplacement(t *testing.T) {
	table := buildTable("r7")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "五萬"}
	actions, _ := newTestActions(table)

	wallBefore := len(table.Wall)
	if err := actions.DiscardTile("r7", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if err := actions.HandleClaimRequest("r7", "p2", game.LegacyClaimKong, []string{"五萬", "五萬", "五萬"}); err != nil {
		t.Fatalf("kong failed: %v", err)
	}
	if len(table.Wall) != wallBefore-1 {
		t.Fatalf("kong must draw a replacement from the wall end")
	}
	if len(table.Players[2].Hand) != 1 {
		t.Fatalf("hand after kong wrong: %v", table.Players[2].Hand)
	}
}

func TestLowerTierClaimRejectedWhileHigherPending(t *testing.T) {
	table := buildTable("r8")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[2].Hand = []string{"五萬", "五萬", "白"}
	table.Players[1].Hand = []string{"四萬", "六萬", "白"}
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r8", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	err := actions.HandleClaimRequest("r8", "p1", game.LegacyClaimChi, []string{"四萬", "六萬"})
	if err == nil {
		t.Fatalf("chi must wait for the pong tier")
	}
	if table.Claiming.Resolved {
		t.Fatalf("rejected claim must not resolve arbitration")
	}
}

func TestHuEndsRound(t *testing.T) {
	table := buildTable("r9")
	table.Players[0].Hand = append(table.Players[0].Hand, "五萬")
	table.Players[3].Waiting = true
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r9", "p0", "五萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if err := actions.HandleClaimRequest("r9", "p3", game.LegacyClaimHu, []string{"五萬"}); err != nil {
		t.Fatalf("hu failed: %v", err)
	}
	if table.Phase != game.PhaseEnded {
		t.Fatalf("expected ended phase, got %s", table.Phase)
	}
	if !table.Claiming.Resolved || table.Claiming.ResolvedClaim != game.LegacyClaimHu {
		t.Fatalf("arbitration must record the hu: %+v", table.Claiming)
	}
}

func TestExhaustedWallEndsRound(t *testing.T) {
	table := buildTable("r10")
	table.Wall = nil
	table.Players[0].Hand = append(table.Players[0].Hand, "九萬")
	actions, _ := newTestActions(table)

	if err := actions.DiscardTile("r10", "p0", "九萬"); err != nil {
		t.Fatalf("discard failed: %v", err)
	}
	if table.Phase != game.PhaseEnded {
		t.Fatalf("empty wall must end the round, got %s", table.Phase)
	}
}
