package domain

// Difficulty is one of the three selectable question levels. The point value
// per level is fixed and never configurable per game.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Points returns the score awarded for a correct answer at this difficulty,
// or 0 for an unknown level.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	return d.Points() > 0
}

// AnswerRecord is one entry in a team's question history. Records are
// append-only and immutable once written.
type AnswerRecord struct {
	// QuestionNumber is the 1-based ordinal of the question for that team.
	QuestionNumber int  `json:"questionNumber"`
	IsCorrect      bool `json:"isCorrect"`
	// Points is 0 for an incorrect or timed-out answer.
	Points int `json:"points"`
}

// Team holds one team's identity and accumulated progress within a game.
type Team struct {
	TeamID            string         `json:"teamId"`
	Name              string         `json:"name"`
	Score             int            `json:"score"`
	QuestionsAnswered int            `json:"questionsAnswered"`
	CorrectAnswers    int            `json:"correctAnswers"`
	BonusEligible     bool           `json:"bonusEligible"`
	QuestionHistory   []AnswerRecord `json:"questionHistory"`
}

// Question is a generated multiple-choice question.
type Question struct {
	QuestionID    string     `json:"questionId"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Difficulty    Difficulty `json:"difficulty"`
	IsBonus       bool       `json:"isBonus"`
}

// Game is a snapshot of one game's full state. Teams are listed in turn
// order, fixed at game creation.
type Game struct {
	GameID                string    `json:"gameId"`
	Teams                 []Team    `json:"teams"`
	CurrentTeamIndex      int       `json:"currentTeamIndex"`
	CurrentQuestion       *Question `json:"currentQuestion,omitempty"`
	IsSelectingDifficulty bool      `json:"isSelectingDifficulty"`
	QuestionsPerTeam      int       `json:"questionsPerTeam"`
	ShowAnswer            bool      `json:"showAnswer"`
	WaitingForNext        bool      `json:"waitingForNext"`
	IsGameComplete        bool      `json:"isGameComplete"`
}

// Ranking is the results-screen view of a game: teams ordered by score
// descending, stable by turn order for equal scores.
type Ranking struct {
	GameID string `json:"gameId"`
	Teams  []Team `json:"teams"`
	// Winners holds the IDs of every team sharing the maximum score.
	Winners []string `json:"winners"`
	// IsTie is true when the winner set covers all teams.
	IsTie bool `json:"isTie"`
}
