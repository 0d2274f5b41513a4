package game

import (
	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
)

// newState builds the initial state for a game: first team up, difficulty
// selection phase, no progress recorded.
func newState(gameID string, teams []domain.Team, questionsPerTeam int) *domain.Game {
	return &domain.Game{
		GameID:                gameID,
		Teams:                 teams,
		CurrentTeamIndex:      0,
		IsSelectingDifficulty: true,
		QuestionsPerTeam:      questionsPerTeam,
	}
}

// teamDone reports whether a team has nothing left to play: its regular quota
// is finished and, if it earned a bonus question, that question too. The same
// predicate drives both the completion check and the rotation scan.
func teamDone(t *domain.Team, questionsPerTeam int) bool {
	return t.QuestionsAnswered >= questionsPerTeam &&
		(!t.BonusEligible || t.QuestionsAnswered > questionsPerTeam)
}

// isBonusTurn reports whether the current team's next question is its bonus
// question: eligible, and sitting exactly at the regular quota.
func isBonusTurn(g *domain.Game) bool {
	t := &g.Teams[g.CurrentTeamIndex]
	return t.BonusEligible && t.QuestionsAnswered == g.QuestionsPerTeam
}

// setQuestion moves the game into the question-active phase. The question
// must already be validated.
func setQuestion(g *domain.Game, q domain.Question) {
	g.CurrentQuestion = &q
	g.IsSelectingDifficulty = false
	g.ShowAnswer = false
	g.WaitingForNext = false
}

// applyAnswer records the outcome of the active question for the current
// team and reveals the answer. A nil choice is a timeout, scored as an
// incorrect answer worth 0 points.
func applyAnswer(g *domain.Game, chosen *string) {
	q := g.CurrentQuestion
	isCorrect := chosen != nil && *chosen == q.CorrectAnswer
	recordAnswer(g, g.Teams[g.CurrentTeamIndex].TeamID, isCorrect, q.Difficulty.Points())

	g.ShowAnswer = true
	g.WaitingForNext = true
}

// advanceTurn runs the end-of-question bookkeeping as one atomic step:
// count the question, grant bonus eligibility on a perfect regular run,
// detect completion, and rotate to the next team that still has questions
// left. Bonus eligibility is set before either predicate is evaluated, so a
// team that just earned its bonus stays in rotation for one more question.
func advanceTurn(g *domain.Game) {
	cur := &g.Teams[g.CurrentTeamIndex]
	cur.QuestionsAnswered++

	if cur.QuestionsAnswered == g.QuestionsPerTeam &&
		cur.CorrectAnswers == g.QuestionsPerTeam &&
		!cur.BonusEligible {
		cur.BonusEligible = true
	}

	allDone := true
	for i := range g.Teams {
		if !teamDone(&g.Teams[i], g.QuestionsPerTeam) {
			allDone = false
			break
		}
	}
	if allDone {
		g.IsGameComplete = true
		return
	}

	if teamDone(cur, g.QuestionsPerTeam) {
		// The next index in sequence may belong to a team that already
		// finished, so scan forward cyclically, at most one full lap.
		n := len(g.Teams)
		next := (g.CurrentTeamIndex + 1) % n
		attempts := 0
		for teamDone(&g.Teams[next], g.QuestionsPerTeam) && attempts < n {
			next = (next + 1) % n
			attempts++
		}
		if attempts < n {
			g.CurrentTeamIndex = next
		}
	}

	g.CurrentQuestion = nil
	g.IsSelectingDifficulty = true
	g.ShowAnswer = false
	g.WaitingForNext = false
}

// forceComplete ends the game regardless of remaining quotas.
func forceComplete(g *domain.Game) {
	g.IsGameComplete = true
}

// resetState clears all accumulated progress while keeping team identities
// and turn order.
func resetState(g *domain.Game) {
	for i := range g.Teams {
		t := &g.Teams[i]
		t.Score = 0
		t.QuestionsAnswered = 0
		t.CorrectAnswers = 0
		t.BonusEligible = false
		t.QuestionHistory = nil
	}
	g.CurrentTeamIndex = 0
	g.CurrentQuestion = nil
	g.IsSelectingDifficulty = true
	g.ShowAnswer = false
	g.WaitingForNext = false
	g.IsGameComplete = false
}
