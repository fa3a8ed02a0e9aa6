package taiwan

import "testing"

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 144 {
		t.Fatalf("expected 144 tiles, got %d", len(deck))
	}
	counts := make(map[string]int)
	for _, tile := range deck {
		counts[tile]++
	}
	if counts["五萬"] != 4 || counts["東"] != 4 || counts["中"] != 4 {
		t.Fatalf("suits and honors must appear four times: %v", counts)
	}
	if counts["春"] != 1 || counts["梅"] != 1 {
		t.Fatalf("flowers must be unique: 春=%d 梅=%d", counts["春"], counts["梅"])
	}
}

func TestSeatWindRotation(t *testing.T) {
	// dealer holds the east wind, following seats take south/west/north
	if SeatWind(0, 0, 0) != WindEast || SeatWind(1, 0, 0) != WindSouth ||
		SeatWind(2, 0, 0) != WindWest || SeatWind(3, 0, 0) != WindNorth {
		t.Fatalf("wind rotation broken with dealer at seat 0")
	}
	// dealer at seat 2: seat 2 is east, seat 3 south, wrap-around
	if SeatWind(2, 2, 0) != WindEast || SeatWind(1, 2, 0) != WindNorth {
		t.Fatalf("wind rotation broken with dealer at seat 2")
	}
}

func TestRankSuitRoundTrip(t *testing.T) {
	rank, suit, ok := RankSuit("五萬")
	if !ok || rank != 5 {
		t.Fatalf("五萬 expected rank 5, got %d ok=%v", rank, ok)
	}
	if NumberTile(rank, suit) != "五萬" {
		t.Fatalf("round trip failed for 五萬")
	}
	if _, _, ok := RankSuit("東"); ok {
		t.Fatalf("honor tiles have no rank")
	}
	if NumberTile(0, suit) != "" || NumberTile(10, suit) != "" {
		t.Fatalf("out-of-range ranks must yield empty")
	}
}

func TestFlowerMatching(t *testing.T) {
	if !FlowerMatchesWind("春", WindEast) || !FlowerMatchesWind("梅", WindEast) {
		t.Fatalf("春/梅 belong to the east seat")
	}
	if FlowerMatchesWind("春", WindSouth) {
		t.Fatalf("春 must not match south")
	}
	if !IsFlower("菊") || IsFlower("五萬") {
		t.Fatalf("flower detection broken")
	}
}
