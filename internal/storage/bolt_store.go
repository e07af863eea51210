package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/amba-hq/amba/pkg/domain"
	json "github.com/goccy/go-json"
	bolt "go.etcd.io/bbolt"
)

const (
	geneBucket    = "genes"
	acronymBucket = "acronyms"
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{geneBucket, acronymBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SaveGene stores g, replacing any earlier record with the same id.
func (b *boltStore) SaveGene(g domain.Gene) error {
	if b == nil || b.db == nil {
		return nil
	}
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode gene %d: %w", g.ID(), err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		genes, acronyms, err := buckets(tx)
		if err != nil {
			return err
		}
		key := idKey(g.ID())

		// drop the index entry of a previous acronym for this id
		if prev := genes.Get(key); prev != nil {
			var old domain.Gene
			if err := json.Unmarshal(prev, &old); err == nil {
				a := acronymKey(old.Acronym())
				if len(a) > 0 && string(acronyms.Get(a)) == string(key) {
					if err := acronyms.Delete(a); err != nil {
						return err
					}
				}
			}
		}

		if err := genes.Put(key, raw); err != nil {
			return err
		}
		if a := acronymKey(g.Acronym()); len(a) > 0 {
			return acronyms.Put(a, key)
		}
		return nil
	})
}

// GeneByID returns the saved gene with the given id.
func (b *boltStore) GeneByID(id int) (domain.Gene, bool, error) {
	if b == nil || b.db == nil {
		return domain.Gene{}, false, nil
	}

	var (
		gene  domain.Gene
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		genes, _, err := buckets(tx)
		if err != nil {
			return err
		}
		gene, found, err = decodeGene(genes.Get(idKey(id)))
		return err
	})
	return gene, found, err
}

// GeneByAcronym returns the saved gene with the given acronym, ignoring case.
func (b *boltStore) GeneByAcronym(acronym string) (domain.Gene, bool, error) {
	if b == nil || b.db == nil {
		return domain.Gene{}, false, nil
	}
	key := acronymKey(acronym)
	if len(key) == 0 {
		return domain.Gene{}, false, nil
	}

	var (
		gene  domain.Gene
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		genes, acronyms, err := buckets(tx)
		if err != nil {
			return err
		}
		id := acronyms.Get(key)
		if id == nil {
			return nil
		}
		gene, found, err = decodeGene(genes.Get(id))
		return err
	})
	return gene, found, err
}

// Genes returns every saved gene ordered by id.
func (b *boltStore) Genes() ([]domain.Gene, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	var out []domain.Gene
	err := b.db.View(func(tx *bolt.Tx) error {
		genes, _, err := buckets(tx)
		if err != nil {
			return err
		}
		return genes.ForEach(func(_, v []byte) error {
			g, ok, err := decodeGene(v)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, g)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func buckets(tx *bolt.Tx) (*bolt.Bucket, *bolt.Bucket, error) {
	genes := tx.Bucket([]byte(geneBucket))
	acronyms := tx.Bucket([]byte(acronymBucket))
	if genes == nil || acronyms == nil {
		return nil, nil, fmt.Errorf("gene buckets missing")
	}
	return genes, acronyms, nil
}

func decodeGene(raw []byte) (domain.Gene, bool, error) {
	if raw == nil {
		return domain.Gene{}, false, nil
	}
	var g domain.Gene
	if err := json.Unmarshal(raw, &g); err != nil {
		return domain.Gene{}, false, fmt.Errorf("decode stored gene: %w", err)
	}
	return g, true, nil
}

func idKey(id int) []byte {
	return []byte(strconv.Itoa(id))
}

func acronymKey(acronym string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(acronym)))
}
