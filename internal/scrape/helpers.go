package scrape

import (
	"fmt"
	"io"
)

// maxBodyBytes caps response bodies; government sites occasionally serve
// large PDFs and we never need more than this.
const maxBodyBytes = 10 << 20

func readBounded(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}
	return body, nil
}
