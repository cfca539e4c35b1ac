/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package gomoku

const (
	// BoardSize is the number of rows and columns on every board.
	BoardSize = 20

	// WinLength is the run length that wins.
	WinLength = 5
)

// Symbol is the content of a board cell.
type Symbol string

const (
	Empty   Symbol = ""
	SymbolX Symbol = "X" // first seat
	SymbolO Symbol = "O" // second seat
)

func (s Symbol) valid() bool {
	return s == SymbolX || s == SymbolO
}

func (s Symbol) other() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	return SymbolX
}

// Board is indexed as Board[x][y]. It is an array, so assigning it copies.
type Board [BoardSize][BoardSize]Symbol

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

var directions = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// IsWinningMove reports whether symbol at (x, y) completes a run of at least
// WinLength along some axis that is not blocked by the opposing symbol on
// both ends. Only lines through (x, y) are inspected.
func IsWinningMove(b *Board, x, y int, symbol Symbol) bool {
	if b == nil || !inBounds(x, y) || symbol == Empty {
		return false
	}

	for _, d := range directions {
		count := 1

		fx, fy := x+d[0], y+d[1]
		for inBounds(fx, fy) && b[fx][fy] == symbol {
			count++
			fx += d[0]
			fy += d[1]
		}

		bx, by := x-d[0], y-d[1]
		for inBounds(bx, by) && b[bx][by] == symbol {
			count++
			bx -= d[0]
			by -= d[1]
		}

		if count < WinLength {
			continue
		}

		if blocked(b, fx, fy, symbol) && blocked(b, bx, by, symbol) {
			continue
		}

		return true
	}

	return false
}

// blocked reports whether the cell just past a run holds another symbol.
// Off-board cells are open.
func blocked(b *Board, x, y int, symbol Symbol) bool {
	if !inBounds(x, y) {
		return false
	}
	v := b[x][y]
	return v != Empty && v != symbol
}
