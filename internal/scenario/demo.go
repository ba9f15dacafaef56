package scenario

import "github.com/playperu/quizarena/internal/arena"

const demoScenarioID = "s0000000deadbeef"

func choices(best, adequate, poor1, poor2 string) []arena.Choice {
	return []arena.Choice{
		{ID: "a", Text: best, Quality: arena.QualityOptimal},
		{ID: "b", Text: adequate, Quality: arena.QualityAdequate},
		{ID: "c", Text: poor1, Quality: arena.QualityPoor},
		{ID: "d", Text: poor2, Quality: arena.QualityPoor},
	}
}

// Demo returns the scenario seeded into an empty store.
func Demo() Scenario {
	return Scenario{
		ID:          demoScenarioID,
		Name:        "Launch Week",
		Description: "Steer a small product team through the week of a major release.",
		Rounds: []Round{
			{
				Prompt:     "Two days before launch, QA finds a bug that corrupts data for 1% of users. What do you do?",
				Choices:    choices("Delay the affected feature and ship the rest", "Ship on time with a hotfix planned for day one", "Ship everything and monitor support tickets", "Delay the whole launch by a month"),
				BestChoice: "a",
				Rationale:  "Data loss is not recoverable; isolating the feature keeps the date without risking users.",
			},
			{
				Prompt:     "Your lead engineer asks to rewrite the billing service during launch week. How do you respond?",
				Choices:    choices("Schedule it after launch with a written plan", "Allow a small spike on a branch", "Approve it immediately", "Reject it and never revisit"),
				BestChoice: "a",
				Rationale:  "Large rewrites during a release add risk; capturing the idea keeps morale and momentum.",
			},
			{
				Prompt:     "Marketing wants to announce a feature that is only 70% done. What do you tell them?",
				Choices:    choices("Announce what is finished and tease the rest", "Announce it with a beta label", "Announce it as complete", "Cancel the announcement"),
				BestChoice: "a",
				Rationale:  "Promising only what ships protects trust while keeping the launch story strong.",
			},
			{
				Prompt:     "Launch traffic is three times the forecast and latency is climbing. First move?",
				Choices:    choices("Scale out and turn on the read cache", "Rate limit new signups", "Restart every server", "Wait for traffic to settle"),
				BestChoice: "a",
				Rationale:  "Adding capacity addresses the cause; rate limiting works but costs signups.",
			},
			{
				Prompt:     "The launch succeeded. What is the best use of the following Monday?",
				Choices:    choices("Run a blameless retrospective", "Start the next feature right away", "Give everyone the week off with no review", "Publish individual performance rankings"),
				BestChoice: "a",
				Rationale:  "A retrospective turns the week's lessons into process before they are forgotten.",
			},
		},
	}
}
