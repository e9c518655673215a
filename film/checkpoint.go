package film

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const dataLayoutVersion = 1

// maxPixels bounds the film size a checkpoint may declare.
const maxPixels = 1 << 26

// The checkpoint format is an 8-byte little-endian header length, a
// serialized structpb.Struct header, then a zlib stream holding the sums
// (three float64 per pixel) followed by the weights.

func header(f *Film) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"cols":                f.Cols,
		"rows":                f.Rows,
		"total_samples":       float64(f.TotalSamples),
		"data_layout_version": dataLayoutVersion,
	})
}

func headerInt(hdr *structpb.Struct, key string) (int64, error) {
	v, ok := hdr.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("header is missing %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("header field %q is not a number", key)
	}
	return int64(n.NumberValue), nil
}

func Write(f *Film, w io.Writer) error {
	hdr, err := header(f)
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}
	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}
	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)
	if err := binary.Write(zipWriter, binary.LittleEndian, f.Sums); err != nil {
		return fmt.Errorf("while writing sums: %w", err)
	}
	if err := binary.Write(zipWriter, binary.LittleEndian, f.Weights); err != nil {
		return fmt.Errorf("while writing weights: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}
	return nil
}

func Read(in io.Reader) (*Film, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > 1<<20 {
		return nil, fmt.Errorf("implausible header length %d", headerLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	version, err := headerInt(hdr, "data_layout_version")
	if err != nil {
		return nil, err
	}
	if version != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", version)
	}
	cols, err := headerInt(hdr, "cols")
	if err != nil {
		return nil, err
	}
	rows, err := headerInt(hdr, "rows")
	if err != nil {
		return nil, err
	}
	if cols <= 0 || rows <= 0 || cols > maxPixels || rows > maxPixels || cols*rows > maxPixels {
		return nil, fmt.Errorf("implausible film size %dx%d", cols, rows)
	}
	total, err := headerInt(hdr, "total_samples")
	if err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, fmt.Errorf("negative sample count %d", total)
	}

	f, err := New(int(cols), int(rows))
	if err != nil {
		return nil, fmt.Errorf("while allocating film: %w", err)
	}
	f.TotalSamples = total

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, f.Sums); err != nil {
		return nil, fmt.Errorf("while reading sums: %w", err)
	}
	if err := binary.Read(zipReader, binary.LittleEndian, f.Weights); err != nil {
		return nil, fmt.Errorf("while reading weights: %w", err)
	}
	f.recomputeMeans()
	return f, nil
}

func ReadFile(name string) (*Film, error) {
	in, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer in.Close()

	return Read(in)
}

// WriteFile writes the checkpoint to a temporary file and renames it into
// place.
func WriteFile(f *Film, name string) error {
	tmp := name + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}
	if err := Write(f, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing file: %w", err)
	}
	if err := os.Rename(tmp, name); err != nil {
		return fmt.Errorf("while renaming checkpoint into place: %w", err)
	}
	return nil
}
