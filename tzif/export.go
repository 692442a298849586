package tzif

import (
	"fmt"
	"math"

	"github.com/tzcore/tzcore/internal/tzir"
)

// ExportZone renders a single compiled zone's transition history as a TZif
// version 2 file (RFC8536), with a version 1 header and data block derived
// from it for readers that only understand 32-bit transition times.
func ExportZone(z *tzir.Zone) (File, error) {
	type localType struct {
		offset int32
		isDST  bool
		desig  string
	}

	types := []localType{{z.InitialOffsetSeconds, z.InitialIsDST, z.InitialDesignation}}
	typeIndex := map[localType]uint8{types[0]: 0}
	indexFor := func(lt localType) uint8 {
		if idx, ok := typeIndex[lt]; ok {
			return idx
		}
		idx := uint8(len(types))
		types = append(types, lt)
		typeIndex[lt] = idx
		return idx
	}

	times64 := make([]int64, 0, len(z.Transitions))
	ttypes := make([]uint8, 0, len(z.Transitions))
	for _, tr := range z.Transitions {
		times64 = append(times64, tr.AtUTC)
		ttypes = append(ttypes, indexFor(localType{tr.OffsetSeconds, tr.IsDST, tr.Designation}))
	}

	var desigBuf []byte
	desigOffset := make(map[string]int)
	records := make([]LocalTimeTypeRecord, len(types))
	for i, lt := range types {
		off, ok := desigOffset[lt.desig]
		if !ok {
			off = len(desigBuf)
			if off > math.MaxUint8 {
				return File{}, fmt.Errorf("export zone %q: designation table exceeds %d bytes", z.Name, math.MaxUint8)
			}
			desigOffset[lt.desig] = off
			desigBuf = append(desigBuf, []byte(lt.desig)...)
			desigBuf = append(desigBuf, 0)
		}
		records[i] = LocalTimeTypeRecord{Utoff: lt.offset, Dst: lt.isDST, Idx: uint8(off)}
	}

	times32 := make([]int32, len(times64))
	for i, t := range times64 {
		times32[i] = clampInt32(t)
	}

	f := File{
		Version: V2,
		V1Header: Header{
			Version: V1,
			Timecnt: uint32(len(times32)),
			Typecnt: uint32(len(records)),
			Charcnt: uint32(len(desigBuf)),
		},
		V1Data: V1DataBlock{
			TransitionTimes:     times32,
			TransitionTypes:     ttypes,
			LocalTimeTypeRecord: records,
			TimeZoneDesignation: desigBuf,
		},
		V2Header: Header{
			Version: V2,
			Timecnt: uint32(len(times64)),
			Typecnt: uint32(len(records)),
			Charcnt: uint32(len(desigBuf)),
		},
		V2Data: V2DataBlock{
			TransitionTimes:     times64,
			TransitionTypes:     ttypes,
			LocalTimeTypeRecord: records,
			TimeZoneDesignation: desigBuf,
		},
	}
	return f, nil
}

func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
