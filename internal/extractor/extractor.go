// Package extractor decodes typed values out of incoming requests.
//
// Path and query helpers convert raw segments into typed values, and
// ReadAllBounded accumulates request bodies chunk by chunk while
// enforcing a byte ceiling. All failures come back as *errs.HTTPError
// 400s so handlers can return them unchanged.
package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/hollmark/staffd/internal/errs"

	"github.com/labstack/echo/v4"
)

// MaxPayloadBytes is the default request body ceiling (256 KiB).
const MaxPayloadBytes int64 = 262144

// readChunkSize keeps accumulation incremental so oversized bodies fail
// before they are fully buffered.
const readChunkSize = 4096

// PathInt32 parses the named path parameter as an int32.
func PathInt32(c echo.Context, name string) (int32, error) {
	raw := c.Param(name)

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errs.NewBadRequestError(
			fmt.Sprintf("Invalid value for path parameter %q", name),
			false, nil, nil,
		)
	}

	return int32(value), nil
}

// PathUint32 parses the named path parameter as a uint32.
func PathUint32(c echo.Context, name string) (uint32, error) {
	raw := c.Param(name)

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errs.NewBadRequestError(
			fmt.Sprintf("Invalid value for path parameter %q", name),
			false, nil, nil,
		)
	}

	return uint32(value), nil
}

// QueryParam returns the named query parameter, failing with a 400 when
// it is absent or empty.
func QueryParam(c echo.Context, name string) (string, error) {
	value := c.QueryParam(name)
	if value == "" {
		return "", errs.NewBadRequestError(
			fmt.Sprintf("Missing required query parameter %q", name),
			false, nil, nil,
		)
	}

	return value, nil
}

// ReadAllBounded consumes r in chunks, summing byte length as it goes.
// The moment the running total exceeds limit it stops reading and fails,
// so the caller never sees a partially decoded oversized body.
func ReadAllBounded(r io.Reader, limit int64) ([]byte, error) {
	var body bytes.Buffer
	chunk := make([]byte, readChunkSize)
	var total int64

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > limit {
				return nil, errs.NewPayloadTooLargeError(limit)
			}
			body.Write(chunk[:n])
		}

		if err == io.EOF {
			return body.Bytes(), nil
		}
		if err != nil {
			return nil, errs.NewBadRequestError("Failed to read request body", false, nil, nil)
		}
	}
}
