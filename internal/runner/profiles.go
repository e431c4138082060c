package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fastats/pkg/config"
)

// ResolveProfiles merges the names given as flags with those read from
// nameFile. Flag names come first; order is preserved and duplicates are
// kept.
func ResolveProfiles(flagProfiles []string, nameFile string) ([]string, error) {
	profiles := append([]string(nil), flagProfiles...)
	if nameFile == "" {
		return profiles, nil
	}

	names, err := ReadNameFile(nameFile)
	if err != nil {
		return nil, err
	}
	return append(profiles, names...), nil
}

// ReadNameFile reads a newline separated list of profile names
func ReadNameFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: cannot find name file at %s", config.ErrConfiguration, path)
		}
		return nil, fmt.Errorf("%w: failed to open name file: %v", config.ErrConfiguration, err)
	}
	defer f.Close()

	return ReadNames(f)
}

// ReadNames returns one name per non-blank line, surrounding whitespace trimmed.
func ReadNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read names: %v", config.ErrConfiguration, err)
	}
	return names, nil
}
