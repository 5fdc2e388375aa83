// Package dump writes a generated network to YAML and reads it back.
//
// Species are identified by tag, so a dump taken from one run can be matched
// against the network regenerated from the same rules in another.
package dump

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/plexnet/pkg/config"
	"github.com/dd0wney/plexnet/pkg/network"
)

// magic opens a compressed dump. Plain dumps are bare YAML.
var magic = []byte("PLXZ")

// Frame limits. A header claiming more is treated as corruption.
const (
	maxCompressed = 256 << 20
	maxDecoded    = 1 << 30
)

// ErrCorrupt reports a compressed dump whose checksum or framing is wrong.
var ErrCorrupt = errors.New("corrupt dump")

// Snapshot is the serializable form of a network.
type Snapshot struct {
	RunID     string           `yaml:"run_id"`
	Generated time.Time        `yaml:"generated"`
	Species   []SpeciesRecord  `yaml:"species"`
	Reactions []ReactionRecord `yaml:"reactions"`
}

// SpeciesRecord describes one species.
type SpeciesRecord struct {
	Tag        string   `yaml:"tag"`
	Names      []string `yaml:"names,omitempty"`
	Weight     float64  `yaml:"weight"`
	Population int      `yaml:"population"`
}

// ReactionRecord describes one reaction. Terms refer to species by tag.
type ReactionRecord struct {
	Reactants  []TermRecord `yaml:"reactants"`
	Products   []TermRecord `yaml:"products"`
	Rate       float64      `yaml:"rate"`
	Degeneracy int          `yaml:"degeneracy,omitempty"`
	Generator  string       `yaml:"generator"`
	Rule       string       `yaml:"rule"`
}

// TermRecord is a species tag and multiplicity.
type TermRecord struct {
	Tag  string `yaml:"tag"`
	Mult int    `yaml:"mult"`
}

// Options controls how a snapshot is written.
type Options struct {
	// Compress frames the YAML with snappy.
	Compress bool
}

// OptionsFor derives write options from the dump section of a config.
func OptionsFor(cfg config.DumpConfig) Options {
	return Options{Compress: cfg.Compress}
}

// FromNetwork captures every species and reaction of n.
func FromNetwork(n *network.Network) *Snapshot {
	snap := &Snapshot{
		RunID:     uuid.New().String(),
		Generated: time.Now().UTC(),
	}
	for sp := range n.AllSpecies() {
		snap.Species = append(snap.Species, SpeciesRecord{
			Tag:        sp.Tag,
			Names:      append([]string(nil), sp.Names...),
			Weight:     sp.Weight,
			Population: sp.Population,
		})
	}
	for r := range n.Reactions() {
		snap.Reactions = append(snap.Reactions, ReactionRecord{
			Reactants:  termRecords(r.Reactants),
			Products:   termRecords(r.Products),
			Rate:       r.Rate,
			Degeneracy: r.Degeneracy,
			Generator:  r.Kind.String(),
			Rule:       r.Rule,
		})
	}
	return snap
}

func termRecords(terms []network.Term) []TermRecord {
	out := make([]TermRecord, len(terms))
	for i, t := range terms {
		out[i] = TermRecord{Tag: t.Species.Tag, Mult: t.Mult}
	}
	return out
}

// Write encodes snap to w.
func Write(w io.Writer, snap *Snapshot, opts Options) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	if !opts.Compress {
		_, err = w.Write(data)
		return err
	}

	// Format: [magic:4][len:4][snappy data:N][crc32:4]
	compressed := snappy.Encode(nil, data)
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, uint32(len(compressed))); err != nil {
		return err
	}
	if _, err := bw.Write(compressed); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.BigEndian, crc32.ChecksumIEEE(compressed)); err != nil {
		return err
	}
	return bw.Flush()
}

// Read decodes a snapshot written by Write, compressed or not.
func Read(r io.Reader) (*Snapshot, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(magic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var data []byte
	if bytes.Equal(head, magic) {
		data, err = readFrame(br)
	} else {
		data, err = io.ReadAll(br)
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode dump: %w", err)
	}
	if snap.RunID != "" {
		if _, err := uuid.Parse(snap.RunID); err != nil {
			return nil, fmt.Errorf("decode dump: run_id: %w", err)
		}
	}
	return &snap, nil
}

func readFrame(r *bufio.Reader) ([]byte, error) {
	if _, err := r.Discard(len(magic)); err != nil {
		return nil, err
	}
	var size uint32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if size > maxCompressed {
		return nil, fmt.Errorf("%w: frame of %d bytes", ErrCorrupt, size)
	}
	compressed := make([]byte, size)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var sum uint32
	if err := binary.Read(r, binary.BigEndian, &sum); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if sum != crc32.ChecksumIEEE(compressed) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	if n, err := snappy.DecodedLen(compressed); err != nil || n > maxDecoded {
		return nil, fmt.Errorf("%w: decoded length", ErrCorrupt)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return data, nil
}

// WriteFile writes snap to path, replacing any existing file.
func WriteFile(path string, snap *Snapshot, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump %s: %w", path, err)
	}
	if err := Write(f, snap, opts); err != nil {
		f.Close()
		return fmt.Errorf("write dump %s: %w", path, err)
	}
	return f.Close()
}

// Save writes a snapshot of n to path, compressed when the network's
// configuration asks for it.
func Save(path string, n *network.Network) error {
	return WriteFile(path, FromNetwork(n), OptionsFor(n.Config().Dump))
}

// ReadFile reads the snapshot at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dump %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// SpeciesByTag returns the record with the given tag.
func (s *Snapshot) SpeciesByTag(tag string) (SpeciesRecord, bool) {
	for _, rec := range s.Species {
		if rec.Tag == tag {
			return rec, true
		}
	}
	return SpeciesRecord{}, false
}

// RestorePopulations sets the population of every species of n that the
// snapshot lists. Species the network has not generated are returned by tag.
func RestorePopulations(n *network.Network, snap *Snapshot) ([]string, error) {
	var missing []string
	for _, rec := range snap.Species {
		sp, ok := n.Species(rec.Tag)
		if !ok {
			missing = append(missing, rec.Tag)
			continue
		}
		if err := n.UpdatePopulation(rec.Tag, rec.Population-sp.Population); err != nil {
			return missing, err
		}
	}
	return missing, nil
}
