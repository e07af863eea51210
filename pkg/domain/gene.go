package domain

import "encoding/json"

// Gene is an immutable gene record as returned by the atlas service.
type Gene struct {
	id      int
	name    string
	acronym string
}

// NewGene builds a Gene. The id is assigned by the remote service.
func NewGene(id int, name, acronym string) Gene {
	return Gene{id: id, name: name, acronym: acronym}
}

func (g Gene) ID() int         { return g.id }
func (g Gene) Name() string    { return g.name }
func (g Gene) Acronym() string { return g.acronym }
func (g Gene) IsZero() bool    { return g == Gene{} }
func (g Gene) String() string  { return g.acronym + " (" + g.name + ")" }

type geneJSON struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
}

// MarshalJSON encodes the gene using the service's field names.
func (g Gene) MarshalJSON() ([]byte, error) {
	return json.Marshal(geneJSON{ID: g.id, Name: g.name, Acronym: g.acronym})
}

// UnmarshalJSON decodes a gene previously written by MarshalJSON.
func (g *Gene) UnmarshalJSON(data []byte) error {
	var raw geneJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = NewGene(raw.ID, raw.Name, raw.Acronym)
	return nil
}
