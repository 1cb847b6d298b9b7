package strutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONStringsEqual compares two JSON documents, ignoring whitespace and key order
func JSONStringsEqual(a, b []byte) (bool, error) {
	var dataA, dataB any
	err := json.Unmarshal(a, &dataA)
	if err != nil {
		return false, err
	}

	err = json.Unmarshal(b, &dataB)
	if err != nil {
		return false, err
	}

	return reflect.DeepEqual(dataA, dataB), nil
}

// JSONLinesEqual compares two line-delimited JSON documents line by line.
//
// Line order is significant. Blank lines are not allowed.
func JSONLinesEqual(a, b []byte) (bool, error) {
	linesA := bytes.Split(a, []byte("\n"))
	linesB := bytes.Split(b, []byte("\n"))
	if len(linesA) != len(linesB) {
		return false, nil
	}

	for i := range linesA {
		equal, err := JSONStringsEqual(linesA[i], linesB[i])
		if err != nil {
			return false, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !equal {
			return false, nil
		}
	}
	return true, nil
}
