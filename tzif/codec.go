package tzif

import (
	"errors"
	"fmt"
	"io"
)

// Data is an alias for File, kept for callers that decode a TZif payload
// purely to validate it rather than to round-trip the structure.
type Data = File

type File struct {
	Version Version

	V1Missing bool
	V1Header  Header
	V1Data    V1DataBlock

	V2Header Header
	V2Data   V2DataBlock
	V2Footer Footer
}

// Encode writes the given TZif data to the given writer.
// The V1 header and data are skipped when V1Missing is set. If Version is
// V1, V2Header, V2Data and V2Footer are not written.
func (f File) Encode(w io.Writer) error {
	if !f.V1Missing {
		err := f.V1Header.Write(w)
		if err != nil {
			return fmt.Errorf("write v1 header: %w", err)
		}
		err = f.V1Data.Write(w)
		if err != nil {
			return fmt.Errorf("write v1 data: %w", err)
		}
	}

	if f.V2Header.Version != f.Version {
		return fmt.Errorf("version mismatch: file is %v and v2+ header is %v", f.Version, f.V2Header.Version)
	}

	if f.Version == V2 || f.Version == V3 {
		if err := f.V2Header.Write(w); err != nil {
			return fmt.Errorf("write v2 header: %w", err)
		}
		if err := f.V2Data.Write(w); err != nil {
			return fmt.Errorf("write v2 data: %w", err)
		}
		if err := f.V2Footer.Write(w); err != nil {
			return fmt.Errorf("write v2 footer: %w", err)
		}
	}

	return nil
}

// DecodeFile reads the given TZif data from the given reader.
// Version is the highest version found. If it is V1, V2Header, V2Data and
// V2Footer are empty values. A file whose first header is not V1 is accepted
// with V1Missing set and its V1Header and V1Data left empty.
func DecodeFile(r io.Reader) (File, error) {
	var f File
	h, err := ReadHeader(r)
	if err != nil {
		return f, fmt.Errorf("read header: %w", err)
	}

	// Strictly speaking, each TZif file needs a V1 header, but we are relaxed in what we accept.
	f.V1Missing = h.Version != V1
	if !f.V1Missing {
		f.Version = V1
		f.V1Header = h
		f.V1Data, err = ReadV1DataBlock(r, h)
		if err != nil {
			return f, fmt.Errorf("read v1 data block: %w", err)
		}

		// Look for V2+ header.
		h, err = ReadHeader(r)
		if errors.Is(err, io.EOF) {
			// No V2+ data, we are done.
			return f, nil
		}
	}

	if h.Version != V2 && h.Version != V3 {
		return f, fmt.Errorf("unsupported version: %v", h.Version)
	}
	f.V2Header = h
	f.Version = h.Version // set max version

	f.V2Data, err = ReadV2DataBlock(r, h)
	if err != nil {
		return f, fmt.Errorf("read v2 data block: %w", err)
	}
	f.V2Footer, err = ReadFooter(r)
	if err != nil {
		return f, fmt.Errorf("read footer: %w", err)
	}

	return f, nil
}
