package storage

import (
	"fmt"
	"strings"

	"github.com/amba-hq/amba/pkg/domain"
)

// Package storage keeps a local catalog of genes the user chose to save.

// Store persists looked-up genes.
type Store interface {
	Close() error
	SaveGene(g domain.Gene) error
	GeneByID(id int) (domain.Gene, bool, error)
	GeneByAcronym(acronym string) (domain.Gene, bool, error)
	Genes() ([]domain.Gene, error)
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                                    { return nil }
func (noopStore) SaveGene(domain.Gene) error                      { return nil }
func (noopStore) GeneByID(int) (domain.Gene, bool, error)         { return domain.Gene{}, false, nil }
func (noopStore) GeneByAcronym(string) (domain.Gene, bool, error) { return domain.Gene{}, false, nil }
func (noopStore) Genes() ([]domain.Gene, error)                   { return nil, nil }
