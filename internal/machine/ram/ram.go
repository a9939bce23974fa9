// Package ram implements the model machine's word-addressed memory: a
// fixed number of fixed-width words, optional dirty-read protection, and
// monotonic access/write telemetry counters (spec §4.3).
package ram

import (
	"fmt"

	"github.com/modelmachine/modelmachine/internal/cell"
)

// RAM is a 2^addressBits array of wordBits-wide words.
type RAM struct {
	addressBits int
	wordBits    int
	words       []uint64
	written     []bool
	protected   bool

	accessCount uint64
	writeCount  uint64
}

// New builds a RAM of 2^addressBits words, each wordBits wide. When
// protected is true, Fetch fails with ErrUnwritten on any word that was
// never the target of Put.
func New(addressBits, wordBits int, protected bool) *RAM {
	size := uint64(1) << uint(addressBits)
	return &RAM{
		addressBits: addressBits,
		wordBits:    wordBits,
		words:       make([]uint64, size),
		written:     make([]bool, size),
		protected:   protected,
	}
}

// AddressBits returns the configured address width.
func (r *RAM) AddressBits() int { return r.addressBits }

// WordBits returns the configured word width.
func (r *RAM) WordBits() int { return r.wordBits }

// Size returns the number of addressable words, 2^AddressBits.
func (r *RAM) Size() uint64 { return uint64(len(r.words)) }

// AccessCount returns the number of words read via Fetch so far.
func (r *RAM) AccessCount() uint64 { return r.accessCount }

// WriteCount returns the number of words written via Put so far.
func (r *RAM) WriteCount() uint64 { return r.writeCount }

func (r *RAM) wrap(addr uint64) uint64 {
	return addr & (r.Size() - 1)
}

// ErrUnwritten is returned by Fetch when memory protection is enabled and
// the read touches a word that was never written.
var ErrUnwritten = fmt.Errorf("ram: read from unwritten protected memory")

// Fetch reads bits/WordBits consecutive words starting at address
// (addresses wrap modulo the address space) and concatenates them
// most-significant-word-first into a single cell of width bits. bits must
// be a positive multiple of WordBits — a programmer error otherwise, so it
// panics rather than returning an error.
func (r *RAM) Fetch(address uint64, bits int) (cell.Cell, error) {
	if bits <= 0 || bits%r.wordBits != 0 {
		panic(fmt.Sprintf("ram: fetch width %d is not a positive multiple of word width %d", bits, r.wordBits))
	}
	count := bits / r.wordBits
	var acc uint64
	for i := 0; i < count; i++ {
		addr := r.wrap(address + uint64(i))
		if r.protected && !r.written[addr] {
			return cell.Cell{}, ErrUnwritten
		}
		r.accessCount++
		acc = (acc << uint(r.wordBits)) | r.words[addr]
	}
	return cell.New(bits, acc), nil
}

// Put writes value, split into WordBits-wide words most-significant-word
// first, starting at address (wrapping modulo the address space).
// value.Width() must be a positive multiple of WordBits.
func (r *RAM) Put(address uint64, value cell.Cell) error {
	bits := value.Width()
	if bits%r.wordBits != 0 {
		panic(fmt.Sprintf("ram: put width %d is not a multiple of word width %d", bits, r.wordBits))
	}
	count := bits / r.wordBits
	for i := 0; i < count; i++ {
		addr := r.wrap(address + uint64(i))
		shift := bits - (i+1)*r.wordBits
		word := value.Slice(shift, shift+r.wordBits)
		r.words[addr] = word.Value()
		r.written[addr] = true
		r.writeCount++
	}
	return nil
}
