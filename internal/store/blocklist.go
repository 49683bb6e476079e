package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/law-makers/linkclean/internal/sanitize"
)

// BlockListKey is the single well-known key the custom block list lives under
const BlockListKey = "custom_tracking_params"

// ErrCorrupt signals a stored list that could not be decoded
var ErrCorrupt = errors.New("stored block list is corrupt")

// BlockListStore loads and saves the full block list as a JSON array
type BlockListStore struct {
	kv KV
}

// NewBlockListStore wraps a key-value store
func NewBlockListStore(kv KV) *BlockListStore {
	return &BlockListStore{kv: kv}
}

// Load returns the stored list, or the defaults when nothing was saved yet.
// A corrupt entry yields the defaults together with an ErrCorrupt error.
func (s *BlockListStore) Load() (sanitize.BlockList, error) {
	raw, err := s.kv.Get(BlockListKey)
	if errors.Is(err, ErrNotFound) {
		return sanitize.DefaultBlockList(), nil
	}
	if err != nil {
		return sanitize.DefaultBlockList(), err
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return sanitize.DefaultBlockList(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return sanitize.NewBlockList(names...), nil
}

// Save writes the full list
func (s *BlockListStore) Save(list sanitize.BlockList) error {
	data, err := json.Marshal(list.Names())
	if err != nil {
		return fmt.Errorf("failed to serialize block list: %w", err)
	}
	return s.kv.Set(BlockListKey, string(data))
}

// Clear removes the stored list so the defaults apply again
func (s *BlockListStore) Clear() error {
	return s.kv.Delete(BlockListKey)
}
