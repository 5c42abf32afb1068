package imagegroup

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/corona10/goimagehash"
	"github.com/corona10/goimagehash/etcs"
	"github.com/corona10/goimagehash/transforms"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const bitsPerWord = 64

// Fingerprint is the average hash of one image: hashSize*hashSize bits in
// raster order, bit i stored at word i/64, position 63-i%64.
// The zero value is not a valid fingerprint.
type Fingerprint struct {
	hash *goimagehash.ExtImageHash
	size int
}

func newFingerprint(words []uint64, hashSize int) Fingerprint {
	return Fingerprint{
		hash: goimagehash.NewExtImageHash(words, goimagehash.AHash, hashSize*hashSize),
		size: hashSize,
	}
}

// Size returns the hash grid edge length.
func (f Fingerprint) Size() int { return f.size }

// Bits returns the fingerprint length in bits (Size squared).
func (f Fingerprint) Bits() int {
	if f.hash == nil {
		return 0
	}
	return f.hash.Bits()
}

// IsZero reports whether f was never computed.
func (f Fingerprint) IsZero() bool { return f.hash == nil }

// String returns the hex form, e.g. "a:ffe7c3810000187e".
func (f Fingerprint) String() string {
	if f.hash == nil {
		return ""
	}
	return f.hash.ToString()
}

// Bit reports whether raster cell i was at or above the mean intensity.
func (f Fingerprint) Bit(i int) bool {
	if f.hash == nil || i < 0 || i >= f.hash.Bits() {
		return false
	}
	words := f.hash.GetHash()
	return words[i/bitsPerWord]&(1<<uint(bitsPerWord-1-i%bitsPerWord)) != 0
}

// Distance returns the Hamming distance between f and other. Both must
// have the same bit length.
func (f Fingerprint) Distance(other Fingerprint) (int, error) {
	if f.hash == nil || other.hash == nil {
		return -1, errors.New("imagegroup: distance of an empty fingerprint")
	}
	return f.hash.Distance(other.hash)
}

// ComputeFingerprint downscales img to a hashSize x hashSize grayscale grid
// and sets one bit per cell whose intensity is >= the grid mean.
func ComputeFingerprint(img image.Image, hashSize int) (Fingerprint, error) {
	if img == nil {
		return Fingerprint{}, errors.New("imagegroup: nil image")
	}
	if hashSize <= 0 {
		return Fingerprint{}, ErrInvalidHashSize
	}
	if img.Bounds().Empty() {
		return Fingerprint{}, fmt.Errorf("%w: bounds %v", ErrEmptyImage, img.Bounds())
	}

	resized := resize.Resize(uint(hashSize), uint(hashSize), img, resize.Bilinear)
	pixels := transforms.Rgb2Gray(resized)
	flattens := transforms.FlattenPixels(pixels, hashSize, hashSize)
	avg := etcs.MeanOfPixels(flattens)

	n := hashSize * hashSize
	words := make([]uint64, (n+bitsPerWord-1)/bitsPerWord)
	for idx, p := range flattens {
		if p >= avg {
			words[idx/bitsPerWord] |= 1 << uint(bitsPerWord-1-idx%bitsPerWord)
		}
	}
	return newFingerprint(words, hashSize), nil
}

// FingerprintBytes decodes data and fingerprints the result. Undecodable
// data and images without pixels yield a *DecodeError.
func FingerprintBytes(data []byte, hashSize int) (Fingerprint, error) {
	if hashSize <= 0 {
		return Fingerprint{}, ErrInvalidHashSize
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Fingerprint{}, &DecodeError{Err: err}
	}
	fp, err := ComputeFingerprint(img, hashSize)
	if err != nil {
		return Fingerprint{}, &DecodeError{Err: err}
	}
	return fp, nil
}

// FingerprintFile reads and fingerprints the image at path. Read and decode
// failures both yield a *DecodeError naming the file.
func FingerprintFile(path string, hashSize int) (Fingerprint, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from listing the caller's folder
	if err != nil {
		return Fingerprint{}, &DecodeError{Name: name, Err: err}
	}
	fp, err := FingerprintBytes(data, hashSize)
	var de *DecodeError
	if errors.As(err, &de) {
		de.Name = name
	}
	return fp, err
}
