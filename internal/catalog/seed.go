package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/witsml-explorer/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// SeedLog is one log of a seed file together with its curves.
type SeedLog struct {
	models.LogObject `yaml:",inline"`
	Curves           []models.LogCurveInfo `yaml:"curves"`
}

// Seed is the document loaded into the catalog on start.
//
//	logs:
//	  - wellUid: W-1
//	    wellboreUid: B-1
//	    uid: L-1
//	    indexType: depth
//	    curves:
//	      - mnemonic: GR
//	        unit: gAPI
//	        minIndex: "100"
//	        maxIndex: "200"
type Seed struct {
	Logs []SeedLog `yaml:"logs"`
}

// LoadSeedFile parses a seed file from disk.
func LoadSeedFile(path string) (*Seed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadSeed(file)
}

// LoadSeed parses a seed document.
func LoadSeed(r io.Reader) (*Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	for i, lg := range seed.Logs {
		if err := lg.Ref().Validate(); err != nil {
			return nil, fmt.Errorf("seed log %d: %w", i, err)
		}
		if _, err := lg.Kind(); err != nil {
			return nil, fmt.Errorf("seed log %s: %w", lg.Ref(), err)
		}
	}
	return &seed, nil
}

// Apply writes the seed logs that are not in the store yet and returns how many were
// written. Logs already present are left as they are.
func (s *Seed) Apply(ctx context.Context, store Store) (int, error) {
	written := 0
	for _, lg := range s.Logs {
		_, err := store.GetLog(ctx, lg.Ref())
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrLogNotFound) {
			return written, fmt.Errorf("checking %s: %w", lg.Ref(), err)
		}
		if err := store.PutLog(ctx, lg.LogObject, lg.Curves); err != nil {
			return written, fmt.Errorf("seeding %s: %w", lg.Ref(), err)
		}
		written++
	}
	return written, nil
}
