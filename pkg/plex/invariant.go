package plex

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Invariant is a cheap structural fingerprint. Isomorphic plexes always have
// equal invariants; the converse does not hold.
type Invariant struct {
	MolCount     int
	BindingCount int
	Signature    uint64
}

// InvariantOf computes the invariant of p. The signature is a sum of per-mol
// and per-binding hashes, so it does not depend on the order of either list.
func InvariantOf(p Plex) Invariant {
	inv := Invariant{MolCount: len(p.Mols), BindingCount: len(p.Bindings)}

	var buf [16]byte
	for _, m := range p.Mols {
		binary.LittleEndian.PutUint64(buf[:8], uint64(m))
		inv.Signature += xxhash.Sum64(buf[:8])
	}
	for _, b := range p.Bindings {
		l := siteTypeCode(p, b.Left)
		r := siteTypeCode(p, b.Right)
		if l > r {
			l, r = r, l
		}
		binary.LittleEndian.PutUint64(buf[:8], l)
		binary.LittleEndian.PutUint64(buf[8:], r)
		inv.Signature += xxhash.Sum64(buf[:])
	}
	return inv
}

func siteTypeCode(p Plex, s SiteSpec) uint64 {
	return uint64(p.Mols[s.Mol])<<32 | uint64(uint32(s.Site))
}
