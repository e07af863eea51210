package domain

import (
	"encoding/json"
	"testing"
)

func TestGeneJSONUsesServiceFieldNames(t *testing.T) {
	raw, err := json.Marshal(NewGene(18376, "prodynorphin", "Pdyn"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":18376,"name":"prodynorphin","acronym":"Pdyn"}`
	if string(raw) != want {
		t.Fatalf("Marshal = %s want %s", raw, want)
	}

	var g Gene
	if err := json.Unmarshal(raw, &g); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if g.ID() != 18376 || g.Name() != "prodynorphin" || g.Acronym() != "Pdyn" {
		t.Fatalf("unexpected gene %+v", g)
	}
}

func TestGeneIsZero(t *testing.T) {
	if !(Gene{}).IsZero() {
		t.Fatalf("zero gene must report IsZero")
	}
	if NewGene(1, "", "").IsZero() {
		t.Fatalf("gene with id must not be zero")
	}
}
