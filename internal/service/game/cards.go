package game

import (
	"strconv"

	"casino-service/pkg/utils/random"
)

var (
	suits = []string{"Clubs", "Diamonds", "Hearts", "Spades"}
	ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// Card is a playing card. Rank values are game-specific: pokerValue counts
// the ace high (14), blackjackValue counts it 11 before soft demotion.
type Card struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

// CardView is the card as returned to callers, with the value under the
// rules of the game that dealt it.
type CardView struct {
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Value int    `json:"value"`
}

func (c Card) pokerValue() int {
	switch c.Rank {
	case "J":
		return 11
	case "Q":
		return 12
	case "K":
		return 13
	case "A":
		return 14
	default:
		v, _ := strconv.Atoi(c.Rank)
		return v
	}
}

func (c Card) blackjackValue() int {
	switch c.Rank {
	case "J", "Q", "K":
		return 10
	case "A":
		return 11
	default:
		v, _ := strconv.Atoi(c.Rank)
		return v
	}
}

func orderedDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range suits {
		for _, rank := range ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// newShuffledDeck builds a 52-card deck and Fisher-Yates shuffles it, walking
// from the top index down and swapping with a uniform lower-or-equal index.
func newShuffledDeck(rng random.Source) ([]Card, error) {
	deck := orderedDeck()
	for i := len(deck) - 1; i > 0; i-- {
		j, err := rng.Intn(i + 1)
		if err != nil {
			return nil, err
		}
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck, nil
}

// blackjackHandValue sums the hand with aces at 11, then demotes aces to 1
// one at a time while the total busts.
func blackjackHandValue(cards []Card) int {
	value := 0
	aces := 0
	for _, c := range cards {
		if c.Rank == "A" {
			aces++
		}
		value += c.blackjackValue()
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

func blackjackViews(cards []Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = CardView{Suit: c.Suit, Rank: c.Rank, Value: c.blackjackValue()}
	}
	return views
}

func pokerViews(cards []Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = CardView{Suit: c.Suit, Rank: c.Rank, Value: c.pokerValue()}
	}
	return views
}
