package deck

import (
	"github.com/mcdev12/chartdrill/go/internal/models"
)

// Cursor tracks the position within a deck's card sequence and, within
// a card, the index of the expected-answer sequence. The card index
// wraps modulo deck length; neither index ever exceeds its sequence
// length.
type Cursor struct {
	deck        *models.Deck
	cardIndex   int
	answerIndex int
}

// NewCursor creates a cursor positioned at the first card of the deck.
func NewCursor(d *models.Deck) *Cursor {
	return &Cursor{deck: d}
}

// CardIndex returns the current card position.
func (c *Cursor) CardIndex() int { return c.cardIndex }

// AnswerIndex returns the position within the current card's expected
// answer sequence.
func (c *Cursor) AnswerIndex() int { return c.answerIndex }

// Len returns the deck length.
func (c *Cursor) Len() int {
	if c.deck == nil {
		return 0
	}
	return len(c.deck.Cards)
}

// Current returns the card under the cursor.
func (c *Cursor) Current() (models.Card, bool) {
	if c.Len() == 0 {
		return models.Card{}, false
	}
	return c.deck.Cards[c.cardIndex], true
}

// Expected returns the answer value the current attempt is compared
// against. ok is false when the card carries no usable answer data.
func (c *Cursor) Expected() (int, bool) {
	card, ok := c.Current()
	if !ok || !card.HasAnswers() {
		return 0, false
	}
	if c.answerIndex >= len(card.ExpectedAnswerSequence) {
		return 0, false
	}
	return card.ExpectedAnswerSequence[c.answerIndex], true
}

// Advance moves to the next unanswered slot: the within-card answer
// index increments while answers remain, otherwise it resets and the
// card index advances modulo deck length. wrapped reports that the
// advance moved past the final card, i.e. a full pass over the deck
// finished.
func (c *Cursor) Advance() (wrapped bool) {
	card, ok := c.Current()
	if !ok {
		return false
	}
	if c.answerIndex+1 < len(card.ExpectedAnswerSequence) {
		c.answerIndex++
		return false
	}
	return c.nextCard()
}

// SkipCard jumps to the next card regardless of remaining answers.
// Used for cards with missing chart or answer data.
func (c *Cursor) SkipCard() {
	if c.Len() == 0 {
		return
	}
	c.nextCard()
}

// SeekAfterSymbol positions the cursor at the card following the last
// card named symbol, falling back to index 0 when the symbol cannot be
// located in the deck.
func (c *Cursor) SeekAfterSymbol(symbol string) {
	c.cardIndex = 0
	c.answerIndex = 0
	if c.Len() == 0 || symbol == "" {
		return
	}
	for i := c.Len() - 1; i >= 0; i-- {
		if c.deck.Cards[i].Name == symbol {
			c.cardIndex = (i + 1) % c.Len()
			return
		}
	}
}

func (c *Cursor) nextCard() (wrapped bool) {
	c.answerIndex = 0
	wrapped = c.cardIndex == c.Len()-1
	c.cardIndex = (c.cardIndex + 1) % c.Len()
	return wrapped
}
