package domain

const (
	EventNameGameUpdated   = "game.updated"
	EventNameGameCompleted = "game.completed"
)

// EventGameUpdated is published after every state mutation of a game,
// carrying the full post-mutation snapshot.
type EventGameUpdated struct {
	Game Game
}

func (EventGameUpdated) Name() string { return EventNameGameUpdated }

// EventGameCompleted is published once when a game reaches its terminal
// state, whether by playing out all questions or by an explicit end.
type EventGameCompleted struct {
	Game    Game
	Ranking Ranking
}

func (EventGameCompleted) Name() string { return EventNameGameCompleted }
