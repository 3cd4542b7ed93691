// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"encoding/json"

	"github.com/luxfi/anoncred/statement"
)

type schemaJSON struct {
	ID         string            `json:"id"`
	Statements []json.RawMessage `json:"statements"`
}

// MarshalJSON renders the schema with its statements in insertion
// order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := schemaJSON{ID: s.ID}
	for _, id := range s.order {
		raw, err := statement.EncodeJSON(s.statements[id])
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var in schemaJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	statements := make([]statement.Statement, 0, len(in.Statements))
	for _, raw := range in.Statements {
		st, err := statement.DecodeJSON(raw)
		if err != nil {
			return err
		}
		statements = append(statements, st)
	}
	rebuilt, err := NewSchemaWithID(in.ID, statements...)
	if err != nil {
		return err
	}
	*s = *rebuilt
	return nil
}
