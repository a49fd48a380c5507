package persist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"embedml/bitset"
	"embedml/fuzzy"
)

// Version is the only binary observation-dump format this package writes.
// Load rejects any other version byte (spec §7: "persistence error ...
// version mismatch").
const Version = 0x01

// saveObservations writes e's entire stored observation set to path in the
// binary format from spec §6.
func saveObservations(e *fuzzy.Engine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	defer f.Close()

	observations := e.AllObservations()
	if len(observations) > 0xFFFF {
		return fmt.Errorf("%w: %d observations exceeds u16 count", fuzzy.ErrPersistence, len(observations))
	}

	if err := writeByte(f, Version); err != nil {
		return err
	}
	if err := writeU16(f, uint16(len(observations))); err != nil {
		return err
	}
	for _, obs := range observations {
		if err := writeObservation(f, obs); err != nil {
			return err
		}
	}
	return nil
}

func writeObservation(w io.Writer, obs *fuzzy.Observation) error {
	if err := writeU16(w, uint16(len(obs.OutputWeights))); err != nil {
		return err
	}
	for _, weights := range obs.OutputWeights {
		if err := writeU16(w, uint16(len(weights))); err != nil {
			return err
		}
		if _, err := w.Write(weights); err != nil {
			return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
		}
	}

	if err := writeU16(w, uint16(len(obs.InputBits))); err != nil {
		return err
	}
	for _, bs := range obs.InputBits {
		if err := writeU16(w, bs.Len()); err != nil {
			return err
		}
		if _, err := w.Write(bs.Bytes()); err != nil {
			return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
		}
	}
	return nil
}

// loadObservations reads path and re-admits every decoded observation into
// e via InsertObservation, validating each against e's current term counts
// (spec's invariant 1, "dimension coherence") before admitting it.
func loadObservations(e *fuzzy.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	defer f.Close()

	version, err := readByte(f)
	if err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: unsupported observation dump version %d", fuzzy.ErrPersistence, version)
	}

	count, err := readU16(f)
	if err != nil {
		return err
	}

	input_counts := e.InputTermCounts()
	output_counts := e.OutputTermCounts()

	for i := uint16(0); i < count; i++ {
		obs, err := readObservation(f)
		if err != nil {
			return err
		}
		if len(obs.OutputWeights) != len(output_counts) || len(obs.InputBits) != len(input_counts) {
			return fmt.Errorf("%w: observation %d has a variable count mismatch", fuzzy.ErrPersistence, i)
		}
		for j, w := range obs.OutputWeights {
			if len(w) != output_counts[j] {
				return fmt.Errorf("%w: observation %d output %d has a term-count mismatch", fuzzy.ErrPersistence, i, j)
			}
		}
		for j, bs := range obs.InputBits {
			if int(bs.Len()) != input_counts[j] {
				return fmt.Errorf("%w: observation %d input %d has a term-count mismatch", fuzzy.ErrPersistence, i, j)
			}
		}
		e.InsertObservation(obs)
	}
	return nil
}

func readObservation(r io.Reader) (*fuzzy.Observation, error) {
	output_count, err := readU16(r)
	if err != nil {
		return nil, err
	}
	weights := make([][]uint8, output_count)
	for i := range weights {
		n, err := readU16(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
		}
		weights[i] = buf
	}

	input_count, err := readU16(r)
	if err != nil {
		return nil, err
	}
	bits := make([]*bitset.BitSet, input_count)
	for i := range bits {
		n, err := readU16(r)
		if err != nil {
			return nil, err
		}
		packed := make([]byte, packedByteSize(n))
		if _, err := io.ReadFull(r, packed); err != nil {
			return nil, fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
		}
		bits[i] = bitset.FromBytes(n, packed)
	}

	return &fuzzy.Observation{InputBits: bits, OutputWeights: weights}, nil
}

func packedByteSize(n uint16) int {
	size := int(n) / 8
	if int(n)%8 != 0 {
		size++
	}
	return size
}

func writeByte(w io.Writer, b byte) error {
	if _, err := w.Write([]byte{b}); err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return buf[0], nil
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return nil
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", fuzzy.ErrPersistence, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}
