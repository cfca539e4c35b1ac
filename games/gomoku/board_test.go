package gomoku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func place(b *Board, s Symbol, cells ...[2]int) {
	for _, c := range cells {
		b[c[0]][c[1]] = s
	}
}

func row(x, fromY, toY int) [][2]int {
	var cells [][2]int
	for y := fromY; y <= toY; y++ {
		cells = append(cells, [2]int{x, y})
	}
	return cells
}

func TestIsWinningMoveOpenEnds(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)

	assert.True(t, IsWinningMove(&b, 5, 9, SymbolX))
	assert.True(t, IsWinningMove(&b, 5, 7, SymbolX), "middle stone completes the same run")
}

func TestIsWinningMoveBlockedBothEnds(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)
	place(&b, SymbolO, [2]int{5, 4}, [2]int{5, 10})

	assert.False(t, IsWinningMove(&b, 5, 9, SymbolX))
}

func TestIsWinningMoveBlockedOneEnd(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)
	place(&b, SymbolO, [2]int{5, 4})

	assert.True(t, IsWinningMove(&b, 5, 9, SymbolX))
}

func TestIsWinningMoveLongRunBlockedBothEnds(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 10)...)
	place(&b, SymbolO, [2]int{5, 4}, [2]int{5, 11})

	assert.False(t, IsWinningMove(&b, 5, 10, SymbolX))
}

func TestIsWinningMoveFourIsNotEnough(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 8)...)

	assert.False(t, IsWinningMove(&b, 5, 8, SymbolX))
}

func TestIsWinningMoveBoardEdgeIsOpen(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(0, 0, 4)...)
	place(&b, SymbolO, [2]int{0, 5})

	assert.True(t, IsWinningMove(&b, 0, 0, SymbolX))

	var c Board
	place(&c, SymbolX, row(BoardSize-1, BoardSize-5, BoardSize-1)...)

	assert.True(t, IsWinningMove(&c, BoardSize-1, BoardSize-1, SymbolX))
}

func TestIsWinningMoveDiagonals(t *testing.T) {
	var b Board
	for i := 0; i < WinLength; i++ {
		b[3+i][3+i] = SymbolO
	}
	assert.True(t, IsWinningMove(&b, 5, 5, SymbolO))

	var c Board
	for i := 0; i < WinLength; i++ {
		c[10+i][10-i] = SymbolX
	}
	assert.True(t, IsWinningMove(&c, 12, 8, SymbolX))

	c[9][11] = SymbolO
	c[15][5] = SymbolO
	assert.False(t, IsWinningMove(&c, 12, 8, SymbolX))
}

func TestIsWinningMoveVertical(t *testing.T) {
	var b Board
	for x := 7; x < 12; x++ {
		b[x][3] = SymbolX
	}
	b[6][3] = SymbolO

	assert.True(t, IsWinningMove(&b, 11, 3, SymbolX))
}

func TestIsWinningMoveIgnoresOtherSymbol(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)

	assert.False(t, IsWinningMove(&b, 5, 9, SymbolO))
}

func TestIsWinningMoveRejectsBadInput(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)

	assert.False(t, IsWinningMove(&b, -1, 0, SymbolX))
	assert.False(t, IsWinningMove(&b, 0, BoardSize, SymbolX))
	assert.False(t, IsWinningMove(&b, 5, 9, Empty))
	assert.False(t, IsWinningMove(nil, 5, 9, SymbolX))
}

func TestIsWinningMoveDoesNotMutate(t *testing.T) {
	var b Board
	place(&b, SymbolX, row(5, 5, 9)...)
	place(&b, SymbolO, [2]int{5, 4})
	before := b

	IsWinningMove(&b, 5, 9, SymbolX)
	IsWinningMove(&b, 5, 4, SymbolO)

	assert.Equal(t, before, b)
}
