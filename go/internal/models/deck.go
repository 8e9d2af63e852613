package models

// Card is one practice item within a deck: a partial chart plus the
// short numeric sequence of expected answers, consumed one value per
// attempt.
type Card struct {
	Name                   string   `json:"name"`
	ChartFiles             []string `json:"chart_files"`
	ExpectedAnswerSequence []int    `json:"expected_answer_sequence"`
	RevealFile             *string  `json:"reveal_file,omitempty"`
}

// HasAnswers reports whether the card carries usable answer data.
// Cards without it are content gaps and are skipped, not surfaced as
// user errors.
func (c Card) HasAnswers() bool {
	return len(c.ExpectedAnswerSequence) > 0
}

// HasReveal reports whether a post-answer reveal chart exists.
func (c Card) HasReveal() bool {
	return c.RevealFile != nil && *c.RevealFile != ""
}

// Deck is the ordered set of cards for a selected dataset. Immutable
// for the lifetime of a session.
type Deck struct {
	DatasetName string `json:"dataset_name"`
	Cards       []Card `json:"cards"`
}
