package game

type Status string

const (
	Playing   Status = "PLAYING"
	PlayerWin Status = "PLAYER_WIN"
	DealerWin Status = "DEALER_WIN"
	Tie       Status = "TIE"
)

var statusNames = map[Status]string{
	Playing:   "Game in progress",
	PlayerWin: "Player wins",
	DealerWin: "Dealer wins",
	Tie:       "It's a tie",
}

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) DisplayName() string { return statusNames[s] }

// IsFinished reports a terminal status.
func (s Status) IsFinished() bool { return s.Valid() && s != Playing }

func (s Status) String() string { return string(s) }
