package service

import "github.com/vogiaan1904/calorieclash/internal/models"

const (
	// forfeitName marks a slot the player gave up; it scores zero.
	forfeitName = "X"
	// cheatPenalty is applied for every submitted item that does not exist
	// in the session's assigned catalog.
	cheatPenalty = -9999
)

// ScoreSubmissions totals each player's picked items against the catalog.
// A nil slot or a forfeited slot contributes zero; an item name that is not
// in the catalog contributes the cheat penalty. The function is pure so the
// same submissions and catalog always produce the same totals.
func ScoreSubmissions(submissions map[string][]*models.PickedItem, catalog []models.CatalogItem) map[string]int {
	calories := make(map[string]int, len(submissions))
	for playerID, items := range submissions {
		calories[playerID] = scorePlayer(items, catalog)
	}
	return calories
}

func scorePlayer(items []*models.PickedItem, catalog []models.CatalogItem) int {
	total := 0
	for _, item := range items {
		if item == nil || item.Name == forfeitName {
			continue
		}

		value, found := lookupCalories(catalog, item.Name)
		if !found {
			total += cheatPenalty
			continue
		}

		total += value
	}
	return total
}

func lookupCalories(catalog []models.CatalogItem, name string) (int, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c.Calories, true
		}
	}
	return 0, false
}

// PickWinner selects the player closest to goal without exceeding it.
// ok is false when every player overshot the goal. Exact score ties break
// toward the lexicographically smaller player id so the result is stable.
func PickWinner(scores map[string]int, goal int) (playerID string, ok bool) {
	best := 0
	for id, score := range scores {
		if score > goal {
			continue
		}
		if !ok || score > best || (score == best && id < playerID) {
			playerID = id
			best = score
			ok = true
		}
	}
	return playerID, ok
}
