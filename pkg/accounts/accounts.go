// Package accounts loads the plain-text account list files, one
// account name per line.
package accounts

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadInstagram reads an Instagram account list. Blank lines are
// ignored and a leading "@" is stripped from each name.
func LoadInstagram(path string) ([]string, error) {
	return load(path, func(line string) (string, bool) {
		return strings.TrimPrefix(line, "@"), true
	})
}

// LoadYouTube reads a YouTube channel list. Blank lines are ignored
// and lines starting with "@" are excluded entirely. The rule differs
// from the Instagram one on purpose: existing channel lists use "@"
// to comment out handles rather than to prefix them.
func LoadYouTube(path string) ([]string, error) {
	return load(path, func(line string) (string, bool) {
		if strings.HasPrefix(line, "@") {
			return "", false
		}
		return line, true
	})
}

func load(path string, accept func(string) (string, bool)) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open account list: %w", err)
	}
	defer file.Close()

	var accounts []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if name, ok := accept(line); ok && name != "" {
			accounts = append(accounts, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account list: %w", err)
	}

	return accounts, nil
}
