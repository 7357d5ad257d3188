package hypothesis

import (
	"context"

	"hypotest/domain/analysis"
	"hypotest/domain/dataset"
	"hypotest/internal/errors"
)

// Test is one hypothesis test offered by the service
type Test interface {
	Name() string
	DisplayName() string
	ResultPrefix() string
	Run(ctx context.Context, frame *dataset.Frame) (*analysis.Result, error)
}

// Catalog is the fixed set of tests, keyed by name
type Catalog struct {
	tests  []Test
	byName map[string]Test
}

// NewCatalog creates the catalog of every supported test
func NewCatalog() *Catalog {
	c := &Catalog{
		tests: []Test{
			NewIndependentTTest(),
			NewPairedTTest(),
			NewANOVA(),
		},
	}
	c.byName = make(map[string]Test, len(c.tests))
	for _, t := range c.tests {
		c.byName[t.Name()] = t
	}
	return c
}

// Lookup returns the test registered under name
func (c *Catalog) Lookup(name string) (Test, error) {
	t, ok := c.byName[name]
	if !ok {
		return nil, errors.UnknownTest(name)
	}
	return t, nil
}

// All returns the tests in catalog order
func (c *Catalog) All() []Test {
	return append([]Test(nil), c.tests...)
}

// Entry is the serializable description of a test
type Entry struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	ResultPrefix string `json:"result_prefix"`
}

// Entries lists the catalog for clients
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, len(c.tests))
	for i, t := range c.tests {
		entries[i] = Entry{Name: t.Name(), DisplayName: t.DisplayName(), ResultPrefix: t.ResultPrefix()}
	}
	return entries
}
