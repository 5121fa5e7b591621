package memory

import (
	"encoding/json"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/litetable"
	"github.com/rs/zerolog/log"
	"os"
	"time"
)

// load distributes the rows of the data file to the shards. A missing file is an empty store.
// Every family found in the file is allowed.
func (s *Store) load() error {
	start := time.Now()
	dataBytes, err := os.ReadFile(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Msgf("No data file at %s, starting empty", s.dataFile)
			return nil
		}
		return fmt.Errorf("failed to read data file %s: %w", s.dataFile, err)
	}

	var loadedData litetable.Data
	if err = json.Unmarshal(dataBytes, &loadedData); err != nil {
		return fmt.Errorf("failed to parse data file %s: %w", s.dataFile, err)
	}

	var families []string
	for rowKey, row := range loadedData {
		sh := s.shardMap[s.getShardIndex(rowKey)]
		sh.data[rowKey] = row
		for family := range row {
			families = append(families, family)
		}
	}
	s.CreateFamilies(families...)

	log.Debug().Str("duration", time.Since(start).String()).
		Msgf("Loaded %d rows from %s", len(loadedData), s.dataFile)
	return nil
}

// save writes every shard to the data file. The file is replaced atomically.
func (s *Store) save() error {
	start := time.Now()
	data := make(litetable.Data)
	for _, sh := range s.shardMap {
		sh.mutex.RLock()
		for rowKey, row := range sh.data {
			data[rowKey] = row
		}
		sh.mutex.RUnlock()
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to serialize rows: %w", err)
	}

	tmp := s.dataFile + ".tmp"
	if err = os.WriteFile(tmp, dataBytes, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err = os.Rename(tmp, s.dataFile); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	log.Debug().Str("duration", time.Since(start).String()).
		Msgf("Saved %d rows to %s", len(data), s.dataFile)
	return nil
}
