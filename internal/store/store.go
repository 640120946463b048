// Package store persists session state between CLI invocations: the
// canonical transaction table as CSV and the stash goal definitions as YAML,
// both under the configured data directory.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"pisopatrol/dashboard/internal/logging"
	"pisopatrol/dashboard/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

const (
	transactionsFile = "transactions.csv"
	goalsFile        = "stash_goals.yaml"

	permDirectory = 0750
	permDataFile  = 0600
)

// SessionStore reads and writes one session's state under a data directory.
type SessionStore struct {
	Dir       string
	Delimiter rune

	log logging.Logger
}

// New creates a SessionStore rooted at dir.
func New(dir string, delimiter rune, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.GetLogger()
	}
	return &SessionStore{Dir: dir, Delimiter: delimiter, log: log}
}

// SaveTransactions writes the canonical table to the data directory.
func (s *SessionStore) SaveTransactions(txs []models.Transaction) error {
	if txs == nil {
		return fmt.Errorf("cannot write nil transactions")
	}
	if err := os.MkdirAll(s.Dir, permDirectory); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	path := filepath.Join(s.Dir, transactionsFile)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, permDataFile)
	if err != nil {
		return fmt.Errorf("error creating transactions file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close file")
		}
	}()

	writer := csv.NewWriter(file)
	writer.Comma = s.Delimiter
	if err := gocsv.MarshalCSV(&txs, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("error writing transactions: %w", err)
	}

	s.log.Info("Saved canonical table",
		logging.F("file", path),
		logging.F("rows", len(txs)))
	return nil
}

// LoadTransactions reads the canonical table back. A missing file is an
// empty table, not an error.
func (s *SessionStore) LoadTransactions() ([]models.Transaction, error) {
	path := filepath.Join(s.Dir, transactionsFile)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error opening transactions file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = s.Delimiter

	var txs []models.Transaction
	if err := gocsv.UnmarshalCSV(reader, &txs); err != nil {
		return nil, fmt.Errorf("error parsing transactions file: %w", err)
	}
	return txs, nil
}

// SaveGoals writes the stash goal definitions as YAML, sorted by
// subcategory for a stable file.
func (s *SessionStore) SaveGoals(goals models.StashGoalSet) error {
	if err := os.MkdirAll(s.Dir, permDirectory); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	list := make([]models.StashGoal, 0, len(goals))
	for _, g := range goals {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Subcategory < list[j].Subcategory })

	data, err := yaml.Marshal(list)
	if err != nil {
		return fmt.Errorf("error marshaling goals: %w", err)
	}

	path := filepath.Join(s.Dir, goalsFile)
	if err := os.WriteFile(path, data, permDataFile); err != nil {
		return fmt.Errorf("error writing goals file: %w", err)
	}

	s.log.Info("Saved stash goals",
		logging.F("file", path),
		logging.F("count", len(list)))
	return nil
}

// LoadGoals reads the stash goal definitions. A missing file is an empty
// set, not an error.
func (s *SessionStore) LoadGoals() (models.StashGoalSet, error) {
	path := filepath.Join(s.Dir, goalsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.StashGoalSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading goals file: %w", err)
	}

	var list []models.StashGoal
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("error parsing goals file: %w", err)
	}

	goals := make(models.StashGoalSet, len(list))
	for _, g := range list {
		goals[g.Subcategory] = g
	}
	return goals, nil
}

// Clear removes both persisted files. Goal definitions have no existence
// apart from the canonical table, so they always go together.
func (s *SessionStore) Clear() error {
	for _, name := range []string{transactionsFile, goalsFile} {
		path := filepath.Join(s.Dir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing %s: %w", name, err)
		}
	}
	s.log.Info("Cleared persisted session state", logging.F("dir", s.Dir))
	return nil
}
