package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoInput = errors.New("no review text: pass it as arguments or pipe it on stdin")

// readInput joins args, or reads all of stdin when no args are given.
func readInput(args []string, stdin io.Reader) (string, error) {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errNoInput
	}
	return text, nil
}
