package overlay

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"cloud.google.com/go/storage"
	"github.com/carbocation/nucleipq"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageFromBytes creates an image from the specified bytes. Must be PNG, GIF,
// BMP, TIFF, or JPEG formatted (based on the decoders we have imported).
func ImageFromBytes(imgBytes []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(imgBytes))

	return img, err
}

// OpenImageFromLocalFileOrGoogleStorage reads and decodes a color-coded
// image. storageClient may be nil for local paths.
func OpenImageFromLocalFileOrGoogleStorage(filePath string, storageClient *storage.Client) (image.Image, error) {
	// The image decoder swallows errors, so we won't see i/o errors if they
	// happen during image decoding. To capture these, we read the full image
	// into memory here, and pass a byte reader to the image decoder.
	imgBytes, err := nucleipq.ReadAllFromPath(filePath, storageClient)
	if err != nil {
		return nil, err
	}

	img, err := ImageFromBytes(imgBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}

	return img, nil
}

// OpenNaryFromLocalFileOrGoogleStorage reads a .nary.json mask.
func OpenNaryFromLocalFileOrGoogleStorage(filePath string, storageClient *storage.Client) (Nary, error) {
	b, err := nucleipq.ReadAllFromPath(filePath, storageClient)
	if err != nil {
		return Nary{}, err
	}

	n, err := ReadNary(bytes.NewReader(b))
	if err != nil {
		return Nary{}, fmt.Errorf("%s: %w", filePath, err)
	}

	return n, nil
}
