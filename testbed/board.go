package testbed

import "math/rand/v2"

const (
	BoardWidth  = 10
	BoardHeight = 20
)

type cell struct {
	x, y int
}

// Pieces are made of three cells. Rotations are listed clockwise.
var pieces = [][][]cell{
	// I
	{
		{{0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}},
	},
	// L
	{
		{{0, 0}, {0, 1}, {1, 1}},
		{{0, 0}, {1, 0}, {0, 1}},
		{{0, 0}, {1, 0}, {1, 1}},
		{{1, 0}, {0, 1}, {1, 1}},
	},
}

type piece struct {
	kind     int
	rotation int
	x, y     int
}

func (p piece) cells() []cell {
	shape := pieces[p.kind][p.rotation]
	out := make([]cell, len(shape))
	for i, c := range shape {
		out[i] = cell{p.x + c.x, p.y + c.y}
	}
	return out
}

// Board is the playfield. A zero cell is empty, other values are the piece
// kind plus one.
type Board struct {
	cells   [BoardHeight][BoardWidth]uint8
	current piece
	rng     *rand.Rand

	Score    int
	Lines    int
	GameOver bool
}

func NewBoard(seed uint64) *Board {
	b := &Board{rng: rand.New(rand.NewPCG(seed, seed^0x7472697374726973))}
	b.spawn()
	return b
}

// Reset clears the board and starts over with a new piece.
func (b *Board) Reset() {
	b.cells = [BoardHeight][BoardWidth]uint8{}
	b.Score = 0
	b.Lines = 0
	b.GameOver = false
	b.spawn()
}

func (b *Board) spawn() {
	b.current = piece{kind: b.rng.IntN(len(pieces)), x: BoardWidth/2 - 1}
	if !b.fits(b.current) {
		b.GameOver = true
	}
}

func (b *Board) fits(p piece) bool {
	for _, c := range p.cells() {
		if c.x < 0 || c.x >= BoardWidth || c.y < 0 || c.y >= BoardHeight {
			return false
		}
		if b.cells[c.y][c.x] != 0 {
			return false
		}
	}
	return true
}

func (b *Board) try(p piece) bool {
	if b.GameOver || !b.fits(p) {
		return false
	}
	b.current = p
	return true
}

func (b *Board) MoveLeft() bool {
	p := b.current
	p.x--
	return b.try(p)
}

func (b *Board) MoveRight() bool {
	p := b.current
	p.x++
	return b.try(p)
}

// Rotate turns the piece clockwise, nudging it sideways by one cell when it
// would hit a wall.
func (b *Board) Rotate() bool {
	p := b.current
	p.rotation = (p.rotation + 1) % len(pieces[p.kind])
	if b.try(p) {
		return true
	}
	for _, dx := range []int{-1, 1} {
		q := p
		q.x += dx
		if b.try(q) {
			return true
		}
	}
	return false
}

// Step moves the piece down one row, locking it in place when it cannot
// move. It returns the number of rows cleared by the lock.
func (b *Board) Step() int {
	if b.GameOver {
		return 0
	}
	p := b.current
	p.y++
	if b.try(p) {
		return 0
	}
	return b.lock()
}

// Drop moves the piece down as far as it goes and locks it.
func (b *Board) Drop() int {
	if b.GameOver {
		return 0
	}
	for {
		p := b.current
		p.y++
		if !b.try(p) {
			return b.lock()
		}
	}
}

func (b *Board) lock() int {
	for _, c := range b.current.cells() {
		b.cells[c.y][c.x] = uint8(b.current.kind + 1)
	}
	cleared := b.clearRows()
	b.Lines += cleared
	b.Score += 100 * cleared * cleared
	b.spawn()
	return cleared
}

func (b *Board) clearRows() int {
	cleared := 0
	for y := BoardHeight - 1; y >= 0; {
		if !b.full(y) {
			y--
			continue
		}
		copy(b.cells[1:y+1], b.cells[0:y])
		b.cells[0] = [BoardWidth]uint8{}
		cleared++
	}
	return cleared
}

func (b *Board) full(y int) bool {
	for x := 0; x < BoardWidth; x++ {
		if b.cells[y][x] == 0 {
			return false
		}
	}
	return true
}

// At returns the content of a cell, including the falling piece.
func (b *Board) At(x, y int) uint8 {
	for _, c := range b.current.cells() {
		if c.x == x && c.y == y && !b.GameOver {
			return uint8(b.current.kind + 1)
		}
	}
	return b.cells[y][x]
}

// Set fills a locked cell. Used to set up positions.
func (b *Board) Set(x, y int, v uint8) {
	b.cells[y][x] = v
}
