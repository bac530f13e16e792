package images

import (
	"crypto/md5"
	"fmt"
)

// Checksum generates a deterministic checksum of the raster dimensions and pixels.
// It is used to verify idempotency and lossless round trips.
//
// Arguments:
// - r: The raster to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
//
// Example:
//
// ```go
//
//	before := Checksum(img)
//	out, _ := codec.Decode(encoded.Bytes)
//	fmt.Println(before == Checksum(out))
//
// ```
func Checksum(r *RasterImage) string {
	if r == nil || len(r.Pix) == 0 {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%d:", r.Width, r.Height)
	hash.Write(r.Pix)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
