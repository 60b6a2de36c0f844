package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers for the two record types this package reads.
const (
	idxMagicImages = 2051 // 0x00000803: unsigned byte, 3 dimensions
	idxMagicLabels = 2049 // 0x00000801: unsigned byte, 1 dimension
)

// openIDX opens an IDX file, transparently decompressing gzip.
//
// If path does not exist but path+".gz" does, the compressed variant is
// opened instead. Files whose name ends in ".gz" are always wrapped in
// a gzip reader.
func openIDX(path string) (io.ReadCloser, error) {
	actual := path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, gzErr := os.Stat(path + ".gz"); gzErr == nil {
			actual = path + ".gz"
		}
	}

	file, err := os.Open(actual)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(actual, ".gz") {
		return file, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("idx: open gzip %s: %w", actual, err)
	}
	return &gzipReadCloser{gz: gz, file: file}, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// ReadIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Returns the raw pixel rows plus the image geometry.
func ReadIDXImages(path string) (images [][]byte, rows, cols int, err error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, 0, 0, fmt.Errorf("idx: read magic: %w", err)
	}
	if magic != idxMagicImages {
		return nil, 0, 0, fmt.Errorf("idx: invalid image magic: got %d, want %d", magic, idxMagicImages)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, 0, 0, err
	}

	imageSize := int(numRows * numCols)
	images = make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, fmt.Errorf("idx: read image %d: %w", i, err)
		}
	}

	return images, int(numRows), int(numCols), nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(path string) ([]byte, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("idx: read magic: %w", err)
	}
	if magic != idxMagicLabels {
		return nil, fmt.Errorf("idx: invalid label magic: got %d, want %d", magic, idxMagicLabels)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, err
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("idx: read labels: %w", err)
	}

	return labels, nil
}
