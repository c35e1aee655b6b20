package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseTensor reads a tensor literal of the form "v1,v2,...[:d0xd1...]".
// Without a shape the values form a rank-1 tensor; an empty shape after
// the colon makes a 0-d tensor.
func parseTensor(s string) ([]float32, []int64, error) {
	values, dims, hasShape := strings.Cut(s, ":")
	if strings.TrimSpace(values) == "" {
		return nil, nil, fmt.Errorf("tensor %q has no values", s)
	}

	var data []float32
	for _, field := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", s, err)
		}
		data = append(data, float32(v))
	}

	if !hasShape {
		return data, []int64{int64(len(data))}, nil
	}

	shape := []int64{}
	if dims = strings.TrimSpace(dims); dims != "" {
		for _, field := range strings.Split(dims, "x") {
			d, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("tensor %q: %w", s, err)
			}
			shape = append(shape, d)
		}
	}
	return data, shape, nil
}

func formatShape(sizes []int64) string {
	parts := make([]string, len(sizes))
	for i, d := range sizes {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return "[" + strings.Join(parts, "x") + "]"
}

func formatValues(data []float32) string {
	parts := make([]string, len(data))
	for i, v := range data {
		parts[i] = strconv.FormatFloat(float64(v), 'g', 6, 32)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
