package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Entry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Cache holds the question/answer dataset, keyed by normalized question
// text. Loaded once at startup and read-only afterwards, so concurrent
// lookups need no locking.
type Cache struct {
	answers map[string]string
	size    int
}

// Load reads the YAML dataset at path. An empty dataset or any
// malformed entry (missing or blank question/answer) fails the whole
// load: serving with a partial dataset is worse than refusing to start.
func Load(logger *logrus.Logger, path string) (*Cache, error) {
	log := logger.WithFields(logrus.Fields{
		"component": "dataset",
		"path":      path,
	})

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset read failed: %w", err)
	}

	var entries []Entry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("dataset parse failed: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("dataset %s contains no entries", path)
	}

	answers := make(map[string]string, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
			return nil, fmt.Errorf("dataset entry %d is missing question or answer text", i)
		}
		answers[Normalize(entry.Question)] = entry.Answer
	}

	log.WithField("entries", len(entries)).Info("Dataset loaded")
	return &Cache{answers: answers, size: len(entries)}, nil
}

// Lookup returns the stored answer for a question, matching exactly on
// the normalized text. No substring or fuzzy matching.
func (c *Cache) Lookup(question string) (string, bool) {
	answer, ok := c.answers[Normalize(question)]
	return answer, ok
}

func (c *Cache) Size() int {
	return c.size
}

// Normalize trims, case-folds and collapses internal whitespace so that
// lookups are insensitive to spacing and (where the script has it) case.
func Normalize(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}
