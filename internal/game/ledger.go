package game

import (
	"sort"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
)

// recordAnswer appends the outcome of one answered question to a team's
// history and, when correct, credits the difficulty's points. The record's
// question number is taken before the turn counter is incremented, so it is
// the 1-based ordinal of the question just answered.
//
// An unknown team ID is a deliberate no-op: the caller drives the game
// through the coordinator, which only ever passes the current team.
func recordAnswer(g *domain.Game, teamID string, isCorrect bool, difficultyPoints int) {
	for i := range g.Teams {
		t := &g.Teams[i]
		if t.TeamID != teamID {
			continue
		}

		if isCorrect {
			t.Score += difficultyPoints
			t.CorrectAnswers++
		}

		points := 0
		if isCorrect {
			points = difficultyPoints
		}
		t.QuestionHistory = append(t.QuestionHistory, domain.AnswerRecord{
			QuestionNumber: t.QuestionsAnswered + 1,
			IsCorrect:      isCorrect,
			Points:         points,
		})
		return
	}
}

// rank orders teams by score descending, stable by turn order for equal
// scores. Every team sharing the maximum score is a winner; when the winner
// set covers all teams the outcome is a tie.
func rank(g *domain.Game) domain.Ranking {
	teams := make([]domain.Team, len(g.Teams))
	for i, t := range g.Teams {
		teams[i] = cloneTeam(t)
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Score > teams[j].Score
	})

	r := domain.Ranking{
		GameID: g.GameID,
		Teams:  teams,
	}
	if len(teams) == 0 {
		return r
	}

	max := teams[0].Score
	for _, t := range teams {
		if t.Score == max {
			r.Winners = append(r.Winners, t.TeamID)
		}
	}
	r.IsTie = len(r.Winners) == len(teams)

	return r
}

func cloneTeam(t domain.Team) domain.Team {
	if t.QuestionHistory != nil {
		history := make([]domain.AnswerRecord, len(t.QuestionHistory))
		copy(history, t.QuestionHistory)
		t.QuestionHistory = history
	}
	return t
}
