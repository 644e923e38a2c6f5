package polars

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// parseNDJSON 解析 NDJSON 格式（每行一个 JSON 对象）
// Numbers are kept as json.Number so 64-bit integers survive.
func parseNDJSON(ndjson string) ([]map[string]interface{}, error) {
	result := []map[string]interface{}{}
	scanner := bufio.NewScanner(strings.NewReader(ndjson))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		var row map[string]interface{}
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		result = append(result, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// encodeColumnJSON renders values as a JSON array for rust_series_from_json.
func encodeColumnJSON(values []interface{}) ([]byte, error) {
	return json.Marshal(values)
}
