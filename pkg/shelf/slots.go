package shelf

import "gameshelf/backend/pkg/apiclient"

// HallOfFameSize is the number of showcase positions.
const HallOfFameSize = 5

// Slots is a Hall of Fame: game ids by position, 0 for an empty slot.
// Positions are 1-based in the methods below.
type Slots [HallOfFameSize]uint

// ValidPosition reports whether pos names a slot.
func ValidPosition(pos int) bool {
	return pos >= 1 && pos <= HallOfFameSize
}

// At returns the game at pos.
func (s Slots) At(pos int) uint {
	return s[pos-1]
}

// Position returns where gameID sits, or 0.
func (s Slots) Position(gameID uint) int {
	if gameID == 0 {
		return 0
	}
	for i, id := range s {
		if id == gameID {
			return i + 1
		}
	}
	return 0
}

// Swap moves the game at from to to. A game already at to moves to from, so no
// game ever leaves the showcase.
func (s Slots) Swap(from, to int) Slots {
	s[from-1], s[to-1] = s[to-1], s[from-1]
	return s
}

// Place puts gameID at pos, replacing whatever was there.
func (s Slots) Place(pos int, gameID uint) Slots {
	s[pos-1] = gameID
	return s
}

// Games returns the non-empty ids in position order.
func (s Slots) Games() []uint {
	out := make([]uint, 0, HallOfFameSize)
	for _, id := range s {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// Entries returns the occupied positions in request form.
func (s Slots) Entries() []apiclient.HallOfFameEntry {
	entries := make([]apiclient.HallOfFameEntry, 0, HallOfFameSize)
	for i, id := range s {
		if id != 0 {
			entries = append(entries, apiclient.HallOfFameEntry{ID: id, Position: i + 1})
		}
	}
	return entries
}

// slotsFromGames converts the server's positional array.
func slotsFromGames(games []*apiclient.Game) Slots {
	var s Slots
	for i, g := range games {
		if i >= HallOfFameSize {
			break
		}
		if g != nil {
			s[i] = g.ID
		}
	}
	return s
}
