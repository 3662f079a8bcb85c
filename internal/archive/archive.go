// Package archive exports result history as zstd-compressed JSON lines.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/verte-zerg/typecert/internal/model"
)

// Export writes one JSON object per result to w through a zstd encoder.
func Export(w io.Writer, results []model.ResultRecord) error {
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	enc := json.NewEncoder(encoder)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			encoder.Close()
			return fmt.Errorf("encode result %d: %w", r.ID, err)
		}
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}
	return nil
}

// Import reads results written by Export.
func Import(r io.Reader) ([]model.ResultRecord, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var results []model.ResultRecord
	scanner := bufio.NewScanner(decoder)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec model.ResultRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("decode result line %d: %w", len(results)+1, err)
		}
		results = append(results, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return results, nil
}
