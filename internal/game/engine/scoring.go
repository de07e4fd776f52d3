package engine

import (
	"FriendCall/internal/game/table"
)

// recomputeScores 从已完成的墩和赢家当前阵营重新推导双方总分，
// 不做增量累加，可重复调用。
func (e *Engine) recomputeScores() {
	t := e.Table
	caller, opponent := 0, 0
	for _, tr := range t.CompletedTricks {
		p, ok := t.Player(tr.WinnerID)
		if !ok {
			continue
		}
		switch p.Team {
		case table.TeamCaller:
			caller += tr.Points()
		case table.TeamOpponent:
			opponent += tr.Points()
		}
	}
	t.CallerTeamPoints = caller
	t.OpponentTeamPoints = opponent
}

// finish 第 8 墩结束：定约方分数达到叫分即胜
func (e *Engine) finish() {
	t := e.Table
	winner := table.TeamOpponent
	if t.CallerTeamPoints >= t.WinningBid {
		winner = table.TeamCaller
	}
	t.Winner = &winner
	t.Phase = table.PhaseGameOver
}
