package arena

import "time"

// Quality grades a choice for scoring.
type Quality string

const (
	QualityOptimal  Quality = "optimal"
	QualityAdequate Quality = "adequate"
	QualityPoor     Quality = "poor"
)

type Choice struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Quality Quality `json:"quality"`
}

// Round is one question as delivered by a scenario source. BestChoice and
// Rationale stay server-side until the round is reviewed.
type Round struct {
	Prompt     string
	Choices    []Choice
	BestChoice string
	Rationale  string
	TimeLimit  time.Duration
}

// PublicChoice is a choice with its grading stripped.
type PublicChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (r Round) PublicChoices() []PublicChoice {
	out := make([]PublicChoice, len(r.Choices))
	for i, c := range r.Choices {
		out[i] = PublicChoice{ID: c.ID, Text: c.Text}
	}
	return out
}

// QualityOf reports the grade of choiceID. The designated best choice is
// always optimal regardless of its listed quality.
func (r Round) QualityOf(choiceID string) (Quality, bool) {
	for _, c := range r.Choices {
		switch {
		case c.ID != choiceID:
			continue
		case c.ID == r.BestChoice:
			return QualityOptimal, true
		case c.Quality == "":
			return QualityPoor, true
		default:
			return c.Quality, true
		}
	}
	return "", false
}

// HasChoice reports whether choiceID is offered in this round.
func (r Round) HasChoice(choiceID string) bool {
	_, ok := r.QualityOf(choiceID)
	return ok
}
