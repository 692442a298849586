// Package tzpack implements the "TZC1" binary artifact that bundles a set
// of compiledtzir.Zone transition histories with the identifier trie
// (tzident) needed to resolve any recognized name, canonical or alias, to
// one of them. It is the interchange format between cmd/tzcompile and the
// tz runtime facade.
package tzpack

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/tzcore/tzcore/internal/tzir"
	"github.com/tzcore/tzcore/tzident"
)

// Magic identifies a tzpack dataset file.
const Magic = "TZC1"

// LocalTimeType is one distinct offset/DST/designation combination used by
// a zone's transitions.
type LocalTimeType struct {
	OffsetSeconds int32
	IsDST         bool
	AbbrIndex     uint16
}

// Zone is a single compiled zone as stored in a dataset: a sorted
// transition-time table, a parallel type-index table, the distinct local
// time types those indices reference, and the designation text they cut
// into.
type Zone struct {
	Transitions   []int64
	TransitionIdx []uint8
	Types         []LocalTimeType
	Designations  []byte
	InitialType   uint8
	PosixTZ       string
}

// Designation returns the NUL-terminated string starting at idx within the
// zone's designation table.
func (z *Zone) Designation(idx uint16) string {
	end := int(idx)
	for end < len(z.Designations) && z.Designations[end] != 0 {
		end++
	}
	if int(idx) > len(z.Designations) {
		return ""
	}
	return string(z.Designations[idx:end])
}

// Dataset is an unpacked tzpack artifact: the compiled zones indexed by
// canonical name, in Names order, plus the trie that resolves both
// canonical names and aliases to an index into Names/Zones.
type Dataset struct {
	Version string
	Zones   []*Zone
	Names   []string
	Trie    *tzident.Trie
}

// ZoneByResolvedId returns the zone at the given index, or false if out of
// range.
func (d *Dataset) ZoneByResolvedId(id tzident.ResolvedId) (*Zone, bool) {
	if int(id) < 0 || int(id) >= len(d.Zones) {
		return nil, false
	}
	return d.Zones[id], true
}

// Pack serializes zones (by canonical name) and links (alias name ->
// canonical name) into a TZC1 dataset.
func Pack(zones map[string]*tzir.Zone, links map[string]string, version string) ([]byte, error) {
	names := make([]string, 0, len(zones))
	for name := range zones {
		names = append(names, name)
	}
	sort.Strings(names)

	trie := tzident.NewTrie()
	var zonesBuf []byte
	for i, name := range names {
		trie.Insert(name, uint32(i))
		encoded, err := encodeZone(zones[name])
		if err != nil {
			return nil, fmt.Errorf("tzpack: encode zone %q: %w", name, err)
		}
		zonesBuf = append(zonesBuf, encoded...)
	}

	aliasNames := make([]string, 0, len(links))
	for alias := range links {
		aliasNames = append(aliasNames, alias)
	}
	sort.Strings(aliasNames)
	for _, alias := range aliasNames {
		canonical := links[alias]
		idx := sort.SearchStrings(names, canonical)
		if idx >= len(names) || names[idx] != canonical {
			return nil, fmt.Errorf("tzpack: link %q -> unknown canonical zone %q", alias, canonical)
		}
		trie.Insert(alias, uint32(idx))
	}

	var nameTable []byte
	for _, name := range names {
		nameTable = appendU16(nameTable, uint16(len(name)))
		nameTable = append(nameTable, name...)
	}

	trieBytes := trie.Serialize()

	headerLen := 4 + 2 + len(version) + 4 + 4 + 4
	nameTableOffset := headerLen + len(zonesBuf)
	trieOffset := nameTableOffset + len(nameTable)

	out := make([]byte, 0, trieOffset+len(trieBytes))
	out = append(out, Magic...)
	out = appendU16(out, uint16(len(version)))
	out = append(out, version...)
	out = appendU32(out, uint32(len(names)))
	out = appendU32(out, uint32(nameTableOffset))
	out = appendU32(out, uint32(trieOffset))
	out = append(out, zonesBuf...)
	out = append(out, nameTable...)
	out = append(out, trieBytes...)
	return out, nil
}

// Unpack parses a TZC1 dataset produced by Pack.
func Unpack(b []byte) (*Dataset, error) {
	if len(b) < 4 || string(b[:4]) != Magic {
		return nil, fmt.Errorf("tzpack: bad magic")
	}
	rest := b[4:]

	versionLen, rest, err := readU16(rest)
	if err != nil {
		return nil, fmt.Errorf("tzpack: version length: %w", err)
	}
	if len(rest) < int(versionLen) {
		return nil, fmt.Errorf("tzpack: truncated version string")
	}
	version := string(rest[:versionLen])
	rest = rest[versionLen:]

	zoneCount, rest, err := readU32(rest)
	if err != nil {
		return nil, fmt.Errorf("tzpack: zone count: %w", err)
	}
	nameTableOffset, rest, err := readU32(rest)
	if err != nil {
		return nil, fmt.Errorf("tzpack: name table offset: %w", err)
	}
	trieOffset, _, err := readU32(rest)
	if err != nil {
		return nil, fmt.Errorf("tzpack: trie offset: %w", err)
	}

	hdrLen := 4 + 2 + int(versionLen) + 4 + 4 + 4
	if int(nameTableOffset) > len(b) || int(trieOffset) > len(b) || int(nameTableOffset) < hdrLen {
		return nil, fmt.Errorf("tzpack: offsets out of range")
	}

	zonesBuf := b[hdrLen:nameTableOffset]
	zones := make([]*Zone, 0, zoneCount)
	cursor := zonesBuf
	for i := uint32(0); i < zoneCount; i++ {
		z, remainder, err := decodeZone(cursor)
		if err != nil {
			return nil, fmt.Errorf("tzpack: zone %d: %w", i, err)
		}
		zones = append(zones, z)
		cursor = remainder
	}

	nameTableBuf := b[nameTableOffset:trieOffset]
	names := make([]string, 0, zoneCount)
	nt := nameTableBuf
	for i := uint32(0); i < zoneCount; i++ {
		l, next, err := readU16(nt)
		if err != nil {
			return nil, fmt.Errorf("tzpack: name %d length: %w", i, err)
		}
		if len(next) < int(l) {
			return nil, fmt.Errorf("tzpack: name %d: truncated", i)
		}
		names = append(names, string(next[:l]))
		nt = next[l:]
	}

	trie, err := tzident.DeserializeTrie(b[trieOffset:])
	if err != nil {
		return nil, fmt.Errorf("tzpack: trie: %w", err)
	}

	return &Dataset{Version: version, Zones: zones, Names: names, Trie: trie}, nil
}

func encodeZone(z *tzir.Zone) ([]byte, error) {
	type localType struct {
		offset int32
		isDST  bool
		desig  string
	}

	types := []localType{{z.InitialOffsetSeconds, z.InitialIsDST, z.InitialDesignation}}
	typeIndex := map[localType]uint8{types[0]: 0}
	indexFor := func(lt localType) (uint8, error) {
		if idx, ok := typeIndex[lt]; ok {
			return idx, nil
		}
		if len(types) >= 1<<8-1 {
			return 0, fmt.Errorf("more than 255 distinct local time types")
		}
		idx := uint8(len(types))
		types = append(types, lt)
		typeIndex[lt] = idx
		return idx, nil
	}

	times := make([]int64, 0, len(z.Transitions))
	typeIdx := make([]uint8, 0, len(z.Transitions))
	for _, tr := range z.Transitions {
		idx, err := indexFor(localType{tr.OffsetSeconds, tr.IsDST, tr.Designation})
		if err != nil {
			return nil, err
		}
		times = append(times, tr.AtUTC)
		typeIdx = append(typeIdx, idx)
	}

	var desig []byte
	desigOffset := make(map[string]int)
	abbrIdx := make([]uint16, len(types))
	for i, lt := range types {
		off, ok := desigOffset[lt.desig]
		if !ok {
			off = len(desig)
			if off > 1<<16-1 {
				return nil, fmt.Errorf("designation table exceeds 65535 bytes")
			}
			desigOffset[lt.desig] = off
			desig = append(desig, lt.desig...)
			desig = append(desig, 0)
		}
		abbrIdx[i] = uint16(off)
	}

	var buf []byte
	buf = appendU32(buf, uint32(len(times)))
	for _, t := range times {
		buf = appendI64(buf, t)
	}
	buf = append(buf, typeIdx...)
	buf = append(buf, byte(len(types)))
	for i, lt := range types {
		buf = appendI32(buf, lt.offset)
		if lt.isDST {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = appendU16(buf, abbrIdx[i])
	}
	buf = appendU32(buf, uint32(len(desig)))
	buf = append(buf, desig...)
	buf = append(buf, 0) // initial_type: the baseline state is always types[0]
	buf = appendU16(buf, 0)
	return buf, nil
}

func decodeZone(b []byte) (*Zone, []byte, error) {
	timecnt, b, err := readU32(b)
	if err != nil {
		return nil, nil, fmt.Errorf("timecnt: %w", err)
	}
	if len(b) < int(timecnt)*8 {
		return nil, nil, fmt.Errorf("truncated transitions")
	}
	times := make([]int64, timecnt)
	for i := range times {
		times[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	b = b[int(timecnt)*8:]

	if len(b) < int(timecnt) {
		return nil, nil, fmt.Errorf("truncated transition types")
	}
	typeIdx := append([]uint8(nil), b[:timecnt]...)
	b = b[timecnt:]

	if len(b) < 1 {
		return nil, nil, fmt.Errorf("truncated typecnt")
	}
	typecnt := int(b[0])
	b = b[1:]

	types := make([]LocalTimeType, typecnt)
	for i := 0; i < typecnt; i++ {
		if len(b) < 7 {
			return nil, nil, fmt.Errorf("truncated local time type %d", i)
		}
		offset := int32(binary.LittleEndian.Uint32(b[0:4]))
		isDST := b[4] != 0
		abbr := binary.LittleEndian.Uint16(b[5:7])
		types[i] = LocalTimeType{OffsetSeconds: offset, IsDST: isDST, AbbrIndex: abbr}
		b = b[7:]
	}

	charcnt, b, err := readU32(b)
	if err != nil {
		return nil, nil, fmt.Errorf("charcnt: %w", err)
	}
	if len(b) < int(charcnt) {
		return nil, nil, fmt.Errorf("truncated designations")
	}
	desig := append([]byte(nil), b[:charcnt]...)
	b = b[charcnt:]

	if len(b) < 1 {
		return nil, nil, fmt.Errorf("truncated initial_type")
	}
	initialType := b[0]
	b = b[1:]

	posixLen, b, err := readU16(b)
	if err != nil {
		return nil, nil, fmt.Errorf("posix_len: %w", err)
	}
	if len(b) < int(posixLen) {
		return nil, nil, fmt.Errorf("truncated posix tz string")
	}
	posix := string(b[:posixLen])
	b = b[posixLen:]

	return &Zone{
		Transitions:   times,
		TransitionIdx: typeIdx,
		Types:         types,
		Designations:  desig,
		InitialType:   initialType,
		PosixTZ:       posix,
	}, b, nil
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendI32(buf []byte, v int32) []byte {
	return appendU32(buf, uint32(v))
}

func appendI64(buf []byte, v int64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v))
	return append(buf, tmp[:]...)
}

func readU16(b []byte) (uint16, []byte, error) {
	if len(b) < 2 {
		return 0, nil, fmt.Errorf("truncated u16")
	}
	return binary.LittleEndian.Uint16(b), b[2:], nil
}

func readU32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, fmt.Errorf("truncated u32")
	}
	return binary.LittleEndian.Uint32(b), b[4:], nil
}
