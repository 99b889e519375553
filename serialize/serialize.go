// Package serialize reads and writes the on-disk snapshot of a built
// index: a gzip-wrapped stream of little-endian fixed-width fields,
// framed by hand the way lwch-tokenizer's Vocab.WriteTo/ReadFrom frame a
// vocabulary, rather than through a general-purpose encoding package.
package serialize

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coregx/tokendfa/transitions"
	"github.com/coregx/tokendfa/vocab"
)

// indexTypeDense is the only index representation this package currently
// writes: a dense, token-sorted transition row per state.
const indexTypeDense = 1

// Snapshot is the fully decoded on-disk form of a built index, ready to
// be handed to transitions.LoadFinalized plus whatever state-cursor type
// the caller wraps around it.
type Snapshot struct {
	VocabSize   int
	EOSTokenID  vocab.TokenID
	StartState  transitions.StateID
	FinalStates []transitions.StateID
	Table       *transitions.Table
}

// WriteTo gzip-compresses and writes the index's on-disk layout: four
// little-endian u32 header fields (vocab size, eos id, start state,
// number of final states), the final state ids, a one-byte index-type
// tag, a u32 state count, then for each state a (state_id,
// num_transitions) pair followed by that many (token_id, next_state_id)
// pairs.
func WriteTo(w io.Writer, vocabSize int, eos vocab.TokenID, start transitions.StateID, finalStates []transitions.StateID, table *transitions.Table) (int64, error) {
	gz := gzip.NewWriter(w)
	bw := bufio.NewWriter(gz)
	counter := &countingWriter{w: bw}

	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(vocabSize))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(eos))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(start))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(finalStates)))
	if _, err := counter.Write(hdr[:]); err != nil {
		return counter.n, err
	}

	var buf4 [4]byte
	for _, s := range finalStates {
		binary.LittleEndian.PutUint32(buf4[:], uint32(s))
		if _, err := counter.Write(buf4[:]); err != nil {
			return counter.n, err
		}
	}

	if _, err := counter.Write([]byte{indexTypeDense}); err != nil {
		return counter.n, err
	}

	binary.LittleEndian.PutUint32(buf4[:], uint32(table.NumStates()))
	if _, err := counter.Write(buf4[:]); err != nil {
		return counter.n, err
	}

	for s := 0; s < table.NumStates(); s++ {
		row := table.Transitions(transitions.StateID(s))
		binary.LittleEndian.PutUint32(buf4[:], uint32(s))
		if _, err := counter.Write(buf4[:]); err != nil {
			return counter.n, err
		}
		binary.LittleEndian.PutUint32(buf4[:], uint32(len(row)))
		if _, err := counter.Write(buf4[:]); err != nil {
			return counter.n, err
		}
		for _, tr := range row {
			binary.LittleEndian.PutUint32(buf4[:], uint32(tr.Token))
			if _, err := counter.Write(buf4[:]); err != nil {
				return counter.n, err
			}
			binary.LittleEndian.PutUint32(buf4[:], uint32(tr.Next))
			if _, err := counter.Write(buf4[:]); err != nil {
				return counter.n, err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return counter.n, err
	}
	if err := gz.Close(); err != nil {
		return counter.n, err
	}
	return counter.n, nil
}

// ReadFrom decompresses and decodes a Snapshot previously produced by
// WriteTo.
func ReadFrom(r io.Reader) (*Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("serialize: opening gzip stream: %w", err)
	}
	defer gz.Close()
	br := bufio.NewReader(gz)

	var hdr [16]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("serialize: reading header: %w", err)
	}
	vocabSize := int(binary.LittleEndian.Uint32(hdr[0:4]))
	eos := vocab.TokenID(binary.LittleEndian.Uint32(hdr[4:8]))
	start := transitions.StateID(binary.LittleEndian.Uint32(hdr[8:12]))
	numFinal := binary.LittleEndian.Uint32(hdr[12:16])

	finalStates := make([]transitions.StateID, numFinal)
	var buf4 [4]byte
	for i := range finalStates {
		if _, err := io.ReadFull(br, buf4[:]); err != nil {
			return nil, fmt.Errorf("serialize: reading final state %d: %w", i, err)
		}
		finalStates[i] = transitions.StateID(binary.LittleEndian.Uint32(buf4[:]))
	}

	indexType, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("serialize: reading index type: %w", err)
	}
	if indexType != indexTypeDense {
		return nil, fmt.Errorf("serialize: unsupported index type %d", indexType)
	}

	if _, err := io.ReadFull(br, buf4[:]); err != nil {
		return nil, fmt.Errorf("serialize: reading state count: %w", err)
	}
	stateCount := binary.LittleEndian.Uint32(buf4[:])

	rows := make([][]transitions.Transition, stateCount)
	for i := uint32(0); i < stateCount; i++ {
		if _, err := io.ReadFull(br, buf4[:]); err != nil {
			return nil, fmt.Errorf("serialize: reading state id for row %d: %w", i, err)
		}
		stateID := binary.LittleEndian.Uint32(buf4[:])
		if stateID != i {
			return nil, fmt.Errorf("serialize: state rows must be written in order, got %d at position %d", stateID, i)
		}
		if _, err := io.ReadFull(br, buf4[:]); err != nil {
			return nil, fmt.Errorf("serialize: reading transition count for state %d: %w", stateID, err)
		}
		numTransitions := binary.LittleEndian.Uint32(buf4[:])

		row := make([]transitions.Transition, numTransitions)
		for j := uint32(0); j < numTransitions; j++ {
			if _, err := io.ReadFull(br, buf4[:]); err != nil {
				return nil, fmt.Errorf("serialize: reading token id for state %d transition %d: %w", stateID, j, err)
			}
			tokenID := vocab.TokenID(binary.LittleEndian.Uint32(buf4[:]))
			if _, err := io.ReadFull(br, buf4[:]); err != nil {
				return nil, fmt.Errorf("serialize: reading next state for state %d transition %d: %w", stateID, j, err)
			}
			next := transitions.StateID(binary.LittleEndian.Uint32(buf4[:]))
			row[j] = transitions.Transition{Token: tokenID, Next: next}
		}
		rows[stateID] = row
	}

	return &Snapshot{
		VocabSize:   vocabSize,
		EOSTokenID:  eos,
		StartState:  start,
		FinalStates: finalStates,
		Table:       transitions.LoadFinalized(vocabSize, rows),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
