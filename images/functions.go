// Package images - provides the raster buffer, format and color primitives shared
// by the geometry, filter, overlay and codec stages.
package images

import (
	"math"
	"sync"
)

// Clamp restricts a value to the specified range [min, max].
// This is used to prevent overflow in color calculations.
//
// Arguments:
// - value: The value to Clamp.
// - min: Minimum allowed value.
// - max: Maximum allowed value.
//
// Returns:
// - The clamped value within [min, max].
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
// clamped := Clamp(-10.0, 0, 255) // Returns 0
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampByte rounds a channel value to the nearest integer and clamps it to [0, 255].
func ClampByte(value float64) uint8 {
	if value <= 0 || math.IsNaN(value) {
		return 0
	}
	if value >= 255 {
		return 255
	}
	return uint8(value + 0.5)
}

// Parallel splits [0, dataSize) into contiguous partitions and runs fn on each.
//
// Every partition covers a disjoint range, so callers that write only the rows
// or columns of their own partition need no further synchronization. With
// workers <= 1 the work runs serially on the calling goroutine, which is the
// default for the transform stages.
//
// Arguments:
// - workers: The maximum number of goroutines to use.
// - dataSize: The size of the data to process.
// - fn: Function to execute for each partition (receives start and end indices).
//
// @example
//
//	Parallel(4, height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Parallel(workers, dataSize int, fn func(partStart, partEnd int)) {
	if dataSize <= 0 {
		return
	}

	// For small data sizes, parallel processing overhead isn't worth it.
	if workers <= 1 || dataSize < workers*2 {
		fn(0, dataSize)
		return
	}

	partSize := dataSize / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		partStart := i * partSize
		partEnd := partStart + partSize

		// Last partition gets any remaining data.
		if i == workers-1 {
			partEnd = dataSize
		}

		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(partStart, partEnd)
	}

	wg.Wait()
}
