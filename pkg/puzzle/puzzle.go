// Package puzzle implements the 4x4 matching board. Pieces start in a pool;
// dropping a pool piece onto the board consumes the pool original and places
// a board copy, which can then be moved between empty cells. The puzzle is
// complete when every cell holds the piece whose identity equals its index.
package puzzle

import (
	"errors"
	"fmt"
)

const (
	Cols = 4
	Rows = 4
	Size = Cols * Rows

	// NoSource marks a drop that comes from the pool.
	NoSource = -1

	empty = -1
)

var (
	ErrUnknownPiece = errors.New("unknown piece")
	ErrUnknownCell  = errors.New("unknown cell")
	ErrOccupied     = errors.New("cell is occupied")
	ErrConsumed     = errors.New("piece already placed")
	ErrEmptySource  = errors.New("source cell is empty")
)

// Puzzle is single-shot: there is no reset. Not safe for concurrent use.
type Puzzle struct {
	cells      [Size]int
	consumed   [Size]bool
	complete   bool
	onComplete func()
}

// New returns an empty board. onComplete runs once, on the drop that
// completes the board.
func New(onComplete func()) *Puzzle {
	p := &Puzzle{onComplete: onComplete}
	for i := range p.cells {
		p.cells[i] = empty
	}
	return p
}

// PickUp checks whether a pool piece may be dragged.
func (p *Puzzle) PickUp(piece int) error {
	if piece < 0 || piece >= Size {
		return fmt.Errorf("%w: %d", ErrUnknownPiece, piece)
	}
	if p.consumed[piece] {
		return fmt.Errorf("%w: %d", ErrConsumed, piece)
	}
	return nil
}

// Drop places piece onto cell. With a source cell the occupant of source is
// moved and piece is ignored; with NoSource the pool original of piece is
// consumed. Occupied targets are always rejected.
func (p *Puzzle) Drop(cell, piece, source int) error {
	if cell < 0 || cell >= Size {
		return fmt.Errorf("%w: %d", ErrUnknownCell, cell)
	}
	if p.cells[cell] != empty {
		return fmt.Errorf("%w: %d", ErrOccupied, cell)
	}

	if source != NoSource {
		if source < 0 || source >= Size {
			return fmt.Errorf("%w: %d", ErrUnknownCell, source)
		}
		moving := p.cells[source]
		if moving == empty {
			return fmt.Errorf("%w: %d", ErrEmptySource, source)
		}
		p.cells[source] = empty
		p.cells[cell] = moving
		p.CheckComplete()
		return nil
	}

	if err := p.PickUp(piece); err != nil {
		return err
	}
	p.cells[cell] = piece
	p.consumed[piece] = true
	p.CheckComplete()
	return nil
}

// CheckComplete recounts matched cells and enters the complete state the
// first time all of them match.
func (p *Puzzle) CheckComplete() bool {
	if p.Correct() == Size && !p.complete {
		p.complete = true
		if p.onComplete != nil {
			p.onComplete()
		}
	}
	return p.complete
}

// Correct counts cells holding the piece that belongs there.
func (p *Puzzle) Correct() int {
	n := 0
	for cell, piece := range p.cells {
		if piece != empty && Target(piece) == cell {
			n++
		}
	}
	return n
}

func (p *Puzzle) Complete() bool {
	return p.complete
}

// Occupant returns the piece in cell, or false if the cell is empty.
func (p *Puzzle) Occupant(cell int) (int, bool) {
	if cell < 0 || cell >= Size || p.cells[cell] == empty {
		return 0, false
	}
	return p.cells[cell], true
}

// Consumed reports whether the pool original of piece has been placed.
func (p *Puzzle) Consumed(piece int) bool {
	return piece >= 0 && piece < Size && p.consumed[piece]
}

// Target is the cell a piece belongs in.
func Target(piece int) int {
	return piece
}

// Label is the text shown on a piece.
func Label(piece int) string {
	return fmt.Sprintf("%d", piece+1)
}
