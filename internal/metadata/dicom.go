package metadata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"dicomsort/internal/logging"
	"dicomsort/internal/services"
)

const (
	preambleLength = 128
	magicWord      = "DICM"
	// multiValueSeparator is the DICOM backslash delimiter for multi-valued elements.
	multiValueSeparator = `\`
	// valuePadding is stripped from both ends of string values: NUL and space
	// are the DICOM padding bytes, the rest is stray whitespace.
	valuePadding = "\x00 \t\r\n"
)

// DICOMResolver extracts top level data elements from DICOM Part 10 files.
type DICOMResolver struct {
	logger *slog.Logger
}

// NewDICOMResolver constructs a resolver. A nil logger discards diagnostics.
func NewDICOMResolver(logger *slog.Logger) *DICOMResolver {
	return &DICOMResolver{logger: logging.NewComponentLogger(logger, "metadata")}
}

// Resolve parses the header of path, skipping pixel data. Files without the
// DICM preamble, files that fail to parse, and files without any dataset
// elements are reported as not recognized.
func (r *DICOMResolver) Resolve(ctx context.Context, path string) (mapping TagMapping, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "metadata", "open source", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "metadata", "stat source", path, err)
	}
	if info.IsDir() {
		return nil, notRecognized(path, "is a directory")
	}

	ok, err := hasPreamble(file)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "metadata", "read preamble", path, err)
	}
	if !ok {
		return nil, notRecognized(path, "missing DICM preamble")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, services.Wrap(services.ErrIO, "metadata", "rewind source", path, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.WithContext(ctx, r.logger).Debug("dicom parser panicked",
				logging.String("path", path),
				logging.String("panic", fmt.Sprint(rec)),
			)
			mapping, err = nil, notRecognized(path, "malformed dataset")
		}
	}()

	dataset, err := dicom.Parse(file, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		logging.WithContext(ctx, r.logger).Debug("dicom parse failed",
			logging.String("path", path),
			logging.Error(err),
		)
		return nil, services.Wrap(services.ErrNotRecognized, "metadata", "parse", path, err)
	}

	mapping = make(TagMapping, len(dataset.Elements))
	for _, elem := range dataset.Elements {
		if elem == nil || elem.Tag.Group == 0x0002 {
			continue
		}
		tagInfo, err := tag.Find(elem.Tag)
		if err != nil || tagInfo.Name == "" {
			continue
		}
		value, ok := elementString(elem)
		if !ok {
			continue
		}
		mapping[tagInfo.Name] = value
	}
	if len(mapping) == 0 {
		return nil, notRecognized(path, "no dataset elements")
	}
	return mapping, nil
}

func notRecognized(path, reason string) error {
	return services.Wrap(services.ErrNotRecognized, "metadata", reason, path, nil)
}

func hasPreamble(r io.Reader) (bool, error) {
	header := make([]byte, preambleLength+len(magicWord))
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(header[preambleLength:], []byte(magicWord)), nil
}

// elementString renders string, integer, and float valued elements. Other
// value kinds (bytes, sequences, pixel data) are not addressable by patterns.
func elementString(elem *dicom.Element) (string, bool) {
	if elem.Value == nil {
		return "", false
	}
	var parts []string
	switch v := elem.Value.GetValue().(type) {
	case []string:
		for _, s := range v {
			parts = append(parts, strings.Trim(s, valuePadding))
		}
	case []int:
		for _, n := range v {
			parts = append(parts, strconv.Itoa(n))
		}
	case []float64:
		for _, f := range v {
			parts = append(parts, strconv.FormatFloat(f, 'f', -1, 64))
		}
	default:
		return "", false
	}
	return strings.Join(parts, multiValueSeparator), true
}
