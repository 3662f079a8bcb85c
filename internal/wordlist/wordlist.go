// Package wordlist loads practice word lists from files.
package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
)

// LoadWords reads one word per line, keeping unique words accepted by keep.
// A nil keep accepts every non-empty line.
func LoadWords(path string, keep FilterFunc) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if keep != nil && !keep(line) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	words = lo.Uniq(words)
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}
