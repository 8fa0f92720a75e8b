// Package schema describes store tables and migrates them with atlas.
package schema

import (
	"fmt"

	atlas "ariga.io/atlas/sql/schema"
)

// Default size of string columns.
const DefaultStringSize = 255

// Column describes a string column of a store table.
type Column struct {
	Name     string
	Size     int
	Nullable bool
}

// Table describes a store table.
type Table struct {
	Name        string
	Columns     []*Column
	PrimaryKey  []*Column
	ForeignKeys []*ForeignKey
	Indexes     []*Index
}

// ForeignKey describes a foreign key from Columns to RefColumns of RefTable.
type ForeignKey struct {
	Symbol     string
	Columns    []*Column
	RefTable   *Table
	RefColumns []*Column
	// OnDelete is applied when the referenced row is deleted.
	OnDelete atlas.ReferenceOption
}

// Index describes a secondary index.
type Index struct {
	Name    string
	Unique  bool
	Columns []*Column
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// realm converts the tables into an atlas schema named name.
func realm(name string, tables []*Table) (*atlas.Schema, error) {
	s := &atlas.Schema{Name: name}
	converted := make(map[string]*atlas.Table, len(tables))
	columns := make(map[*Column]*atlas.Column)
	for _, t := range tables {
		at := &atlas.Table{Name: t.Name, Schema: s}
		for _, c := range t.Columns {
			size := c.Size
			if size == 0 {
				size = DefaultStringSize
			}
			ac := &atlas.Column{
				Name: c.Name,
				Type: &atlas.ColumnType{
					Type: &atlas.StringType{T: "varchar", Size: size},
					Null: c.Nullable,
				},
			}
			at.Columns = append(at.Columns, ac)
			columns[c] = ac
		}
		if len(t.PrimaryKey) > 0 {
			pk := &atlas.Index{Unique: true, Table: at}
			for i, c := range t.PrimaryKey {
				ac, ok := columns[c]
				if !ok {
					return nil, fmt.Errorf("schema: primary key column %q is not a column of %q", c.Name, t.Name)
				}
				pk.Parts = append(pk.Parts, &atlas.IndexPart{SeqNo: i, C: ac})
			}
			at.PrimaryKey = pk
		}
		for _, idx := range t.Indexes {
			ai := &atlas.Index{Name: idx.Name, Unique: idx.Unique, Table: at}
			for i, c := range idx.Columns {
				ac, ok := columns[c]
				if !ok {
					return nil, fmt.Errorf("schema: index %q references unknown column %q", idx.Name, c.Name)
				}
				ai.Parts = append(ai.Parts, &atlas.IndexPart{SeqNo: i, C: ac})
				ac.Indexes = append(ac.Indexes, ai)
			}
			at.Indexes = append(at.Indexes, ai)
		}
		s.Tables = append(s.Tables, at)
		converted[t.Name] = at
	}
	// Foreign keys are resolved after every table exists.
	for _, t := range tables {
		at := converted[t.Name]
		for _, fk := range t.ForeignKeys {
			ref, ok := converted[fk.RefTable.Name]
			if !ok {
				return nil, fmt.Errorf("schema: foreign key %q references unknown table %q", fk.Symbol, fk.RefTable.Name)
			}
			afk := &atlas.ForeignKey{
				Symbol:   fk.Symbol,
				Table:    at,
				RefTable: ref,
				OnDelete: fk.OnDelete,
			}
			for _, c := range fk.Columns {
				ac, ok := columns[c]
				if !ok {
					return nil, fmt.Errorf("schema: foreign key %q references unknown column %q", fk.Symbol, c.Name)
				}
				afk.Columns = append(afk.Columns, ac)
				ac.ForeignKeys = append(ac.ForeignKeys, afk)
			}
			for _, c := range fk.RefColumns {
				ac, ok := columns[c]
				if !ok {
					return nil, fmt.Errorf("schema: foreign key %q references unknown column %q", fk.Symbol, c.Name)
				}
				afk.RefColumns = append(afk.RefColumns, ac)
			}
			at.ForeignKeys = append(at.ForeignKeys, afk)
		}
	}
	return s, nil
}
