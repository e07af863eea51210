package storage

import (
	"path/filepath"
	"testing"

	"github.com/amba-hq/amba/pkg/domain"
)

func TestBoltStoreSavesAndFindsGenes(t *testing.T) {
	dir := t.TempDir()
	store, err := openBolt(filepath.Join(dir, "nested", "genes.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	if _, found, err := store.GeneByID(18376); err != nil || found {
		t.Fatalf("expected empty store, found=%v err=%v", found, err)
	}

	if err := store.SaveGene(domain.NewGene(18376, "prodynorphin", "Pdyn")); err != nil {
		t.Fatalf("SaveGene: %v", err)
	}
	if err := store.SaveGene(domain.NewGene(14, "glutamate decarboxylase 1", "Gad1")); err != nil {
		t.Fatalf("SaveGene: %v", err)
	}

	g, found, err := store.GeneByID(18376)
	if err != nil || !found {
		t.Fatalf("GeneByID: found=%v err=%v", found, err)
	}
	if g.Name() != "prodynorphin" {
		t.Fatalf("unexpected gene %v", g)
	}

	g, found, err = store.GeneByAcronym("PDYN")
	if err != nil || !found || g.ID() != 18376 {
		t.Fatalf("GeneByAcronym: gene=%v found=%v err=%v", g, found, err)
	}

	all, err := store.Genes()
	if err != nil {
		t.Fatalf("Genes: %v", err)
	}
	if len(all) != 2 || all[0].ID() != 14 || all[1].ID() != 18376 {
		t.Fatalf("unexpected listing %v", all)
	}
}

func TestBoltStoreReplacesAcronymIndex(t *testing.T) {
	store, err := openBolt(filepath.Join(t.TempDir(), "genes.db"))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	defer store.Close()

	if err := store.SaveGene(domain.NewGene(1, "old", "OLD")); err != nil {
		t.Fatalf("SaveGene: %v", err)
	}
	if err := store.SaveGene(domain.NewGene(1, "renamed", "NEW")); err != nil {
		t.Fatalf("SaveGene: %v", err)
	}

	if _, found, _ := store.GeneByAcronym("old"); found {
		t.Fatalf("stale acronym entry should be removed")
	}
	g, found, err := store.GeneByAcronym("new")
	if err != nil || !found || g.Name() != "renamed" {
		t.Fatalf("GeneByAcronym: gene=%v found=%v err=%v", g, found, err)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genes.db")
	store, err := NewStore("bbolt", path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SaveGene(domain.NewGene(7, "seven", "S7")); err != nil {
		t.Fatalf("SaveGene: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err = NewStore("bbolt", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if _, found, err := store.GeneByID(7); err != nil || !found {
		t.Fatalf("expected gene after reopen, found=%v err=%v", found, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "")
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SaveGene(domain.NewGene(1, "x", "X")); err != nil {
		t.Fatalf("noop store SaveGene: %v", err)
	}
	if _, found, _ := store.GeneByID(1); found {
		t.Fatalf("noop store must not find anything")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "x"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " "); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
