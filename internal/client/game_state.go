package client

import (
	"fmt"

	"github.com/palemoky/bingo-hall/internal/game/board"
	"github.com/palemoky/bingo-hall/internal/game/rule"
	"github.com/palemoky/bingo-hall/internal/protocol"
	"github.com/palemoky/bingo-hall/internal/protocol/convert"
)

// GameState manages client-side lobby and round state
type GameState struct {
	// Player data
	PlayerID   string
	PlayerName string
	Balance    float64

	// Lobby
	Rooms []protocol.RoomListItem

	// Current round
	RoomID      string
	BoardNumber int64
	Board       board.Board
	HasBoard    bool
	Status      string
	Timer       int
	PlayerCount int
	Called      *rule.CalledNumbers

	// Round result
	Result *protocol.GameOverPayload

	// Features
	Tracker *CalledTracker
}

// NewGameState creates a new game state
func NewGameState() *GameState {
	return &GameState{
		Called:  &rule.CalledNumbers{},
		Tracker: NewCalledTracker(),
	}
}

// InRound reports whether the player holds a board in some room
func (gs *GameState) InRound() bool {
	return gs.RoomID != ""
}

// ApplyLogin stores identity and balance
func (gs *GameState) ApplyLogin(p protocol.LoginSuccessPayload) {
	gs.PlayerID = p.PlayerID
	gs.PlayerName = p.Name
	gs.Balance = p.Balance
}

// ApplyRoomList replaces the lobby room list
func (gs *GameState) ApplyRoomList(p protocol.RoomListPayload) {
	gs.Rooms = append(gs.Rooms[:0], p.Rooms...)
}

// FindRoom looks a room up in the lobby list
func (gs *GameState) FindRoom(roomID string) (protocol.RoomListItem, bool) {
	for _, r := range gs.Rooms {
		if r.RoomID == roomID {
			return r, true
		}
	}
	return protocol.RoomListItem{}, false
}

// ApplyLobbyUpdate refreshes one room's countdown
func (gs *GameState) ApplyLobbyUpdate(p protocol.LobbyUpdatePayload) {
	for i := range gs.Rooms {
		if gs.Rooms[i].RoomID == p.RoomID {
			gs.Rooms[i].Timer = p.Timer
			gs.Rooms[i].Status = p.Status
			gs.Rooms[i].PlayerCount = p.PlayerCount
		}
	}
	if p.RoomID == gs.RoomID {
		gs.Timer = p.Timer
		gs.Status = p.Status
		gs.PlayerCount = p.PlayerCount
	}
}

// ApplyJoined enters a round; the board arrives separately
func (gs *GameState) ApplyJoined(p protocol.JoinedSuccessPayload) {
	gs.resetRound()
	gs.RoomID = p.RoomID
	gs.BoardNumber = p.BoardNumber
	gs.Balance = p.Balance
	gs.Status = protocol.StatusWaiting
	if r, ok := gs.FindRoom(p.RoomID); ok {
		gs.Timer = r.Timer
		gs.PlayerCount = r.PlayerCount
	}
}

// ApplyLeft leaves the current round
func (gs *GameState) ApplyLeft(p protocol.LeftGamePayload) {
	gs.Balance = p.Balance
	gs.resetRound()
	gs.RoomID = ""
	gs.BoardNumber = 0
}

// SetBoard installs the board of the current board number
func (gs *GameState) SetBoard(p protocol.BoardPayload) error {
	b, err := convert.PayloadToBoard(&p)
	if err != nil {
		return err
	}
	if gs.InRound() && p.BoardNumber != gs.BoardNumber {
		return fmt.Errorf("board %d does not match selected board %d", p.BoardNumber, gs.BoardNumber)
	}
	gs.Board = b
	gs.HasBoard = true
	return nil
}

// ApplyGameStart switches the current room to drawing
func (gs *GameState) ApplyGameStart(p protocol.GameStartPayload) {
	if p.RoomID != gs.RoomID {
		return
	}
	gs.Status = protocol.StatusPlaying
	gs.PlayerCount = p.PlayerCount
	gs.Called.Reset()
	gs.Tracker.Reset()
}

// ApplyNumberCalled records a drawn number of the current room
func (gs *GameState) ApplyNumberCalled(p protocol.NumberCalledPayload) {
	if p.RoomID != gs.RoomID || gs.Called.Has(p.Number) {
		return
	}
	if err := gs.Called.Add(p.Number); err != nil {
		return
	}
	gs.Tracker.Mark(p.Number)
}

// ApplyGameOver ends the round; called numbers stay visible until the next join
func (gs *GameState) ApplyGameOver(p protocol.GameOverPayload) {
	if p.RoomID != gs.RoomID {
		return
	}
	result := p
	gs.Result = &result
	gs.Status = protocol.StatusWaiting
	gs.RoomID = ""
}

// ApplyBalance updates the balance pushed by the server
func (gs *GameState) ApplyBalance(p protocol.BalanceUpdatePayload) {
	gs.Balance = p.Balance
}

// ApplyReconnected restores an in-progress round after reconnect
func (gs *GameState) ApplyReconnected(p protocol.ReconnectedPayload) {
	gs.PlayerID = p.PlayerID
	if p.Name != "" {
		gs.PlayerName = p.Name
	}
	gs.Balance = p.Balance
	if p.Room == nil {
		gs.resetRound()
		gs.RoomID = ""
		return
	}

	gs.resetRound()
	gs.RoomID = p.Room.RoomID
	gs.Status = p.Room.Status
	gs.Timer = p.Room.Timer
	gs.PlayerCount = p.Room.PlayerCount
	for _, n := range p.Room.Called {
		gs.ApplyNumberCalled(protocol.NumberCalledPayload{RoomID: gs.RoomID, Number: n})
	}
	if p.Board != nil {
		gs.BoardNumber = p.Board.BoardNumber
		_ = gs.SetBoard(*p.Board)
	}
}

// Marked reports whether a cell is daubed
func (gs *GameState) Marked(row, col int) bool {
	v := gs.Board[row][col]
	return v == board.Wildcard || gs.Called.Has(v)
}

// Win returns the first completed pattern on the board, nil if none
func (gs *GameState) Win() *rule.WinResult {
	if !gs.HasBoard || gs.Status != protocol.StatusPlaying {
		return nil
	}
	return rule.CheckBoard(gs.Board, gs.Called)
}

// resetRound clears round-scoped data
func (gs *GameState) resetRound() {
	gs.Board = board.Board{}
	gs.HasBoard = false
	gs.Status = ""
	gs.Timer = 0
	gs.PlayerCount = 0
	gs.Called.Reset()
	gs.Tracker.Reset()
	gs.Result = nil
}
