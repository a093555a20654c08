package game

// Frame is the wire envelope for server-to-client events.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Emitter delivers outbound frames to a transport channel. Implementations must
// preserve the order of Emit calls per channel.
type Emitter interface {
	Emit(channelID string, frame Frame)
	// CloseChannel flushes any queued frames and closes the connection from
	// the server side.
	CloseChannel(channelID string)
}

// EndReason is the terminal cause carried by a gameEnd frame.
type EndReason string

const (
	ReasonPathFound            EndReason = "path_found"
	ReasonOutOfStrikes         EndReason = "out_of_strikes"
	ReasonTimeout              EndReason = "timeout"
	ReasonGaveUp               EndReason = "gave_up"
	ReasonOpponentGaveUp       EndReason = "opponent_gave_up"
	ReasonOpponentDisconnected EndReason = "opponent_disconnected"
	ReasonInternalError        EndReason = "internal_error"
)

// PlayerInfo is the client-facing view of a graph player.
type PlayerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

type GameStartData struct {
	SessionID      string     `json:"sessionId"`
	StartPlayer    PlayerInfo `json:"startPlayer"`
	EndPlayer      PlayerInfo `json:"endPlayer"`
	Mode           Mode       `json:"mode"`
	Difficulty     Difficulty `json:"difficulty"`
	OpponentUserID string     `json:"opponentUserId,omitempty"`
}

type InvalidPathData struct {
	PathLength       int `json:"pathLength"`
	StrikesRemaining int `json:"strikesRemaining"`
}

type OpponentAttemptedPathData struct {
	Success    bool `json:"success"`
	PathLength int  `json:"pathLength"`
}

type GameEndData struct {
	WinnerUserID  *string    `json:"winnerUserId"`
	Reason        EndReason  `json:"reason"`
	WinningPath   []string   `json:"winningPath,omitempty"`
	SolutionPaths [][]string `json:"solutionPaths,omitempty"`
	Score         *int       `json:"score,omitempty"`
	Time          *float64   `json:"time,omitempty"`
}

func gameStartFrame(d GameStartData) Frame {
	return Frame{Type: "gameStart", Data: d}
}

// leftQueueFrame acknowledges a server-initiated dequeue.
func leftQueueFrame() Frame {
	return Frame{Type: "leftQueue", Data: struct{}{}}
}

func opponentReadyFrame() Frame {
	return Frame{Type: "opponentReady", Data: struct{}{}}
}

func allPlayersReadyFrame() Frame {
	return Frame{Type: "allPlayersReady", Data: struct{}{}}
}

func invalidPathFrame(d InvalidPathData) Frame {
	return Frame{Type: "invalidPath", Data: d}
}

func opponentAttemptedPathFrame(d OpponentAttemptedPathData) Frame {
	return Frame{Type: "opponentAttemptedPath", Data: d}
}

func gameEndFrame(d GameEndData) Frame {
	return Frame{Type: "gameEnd", Data: d}
}
