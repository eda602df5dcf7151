// Package quota implements the per-client task quota ledger and the
// contract plan tables that grant it.
package quota

import (
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
)

var ErrInsufficientQuota = errors.New("insufficient quota")

// Allowance is the granted/unused pair for one task type.
type Allowance struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// Map is a quota ledger: task-type key -> allowance. Absent keys mean no
// entitlement ({0,0}).
type Map map[string]Allowance

// Get returns the allowance for key, zero-valued when absent.
func (m Map) Get(key string) Allowance {
	return m[key]
}

// Debit removes n units of remaining quota under key. Total is untouched.
func (m Map) Debit(key string, n int) error {
	a := m[key]
	if a.Remaining < n {
		return ErrInsufficientQuota
	}
	a.Remaining -= n
	m[key] = a
	return nil
}

// Credit returns n units of remaining quota under key. Remaining is not
// clamped to Total: if counts were hand-edited out of sync the restored
// value may exceed the grant, which matches how manual edits are treated
// elsewhere.
func (m Map) Credit(key string, n int) {
	a := m[key]
	a.Remaining += n
	m[key] = a
}

// SumRemaining is the aggregate unused quota across all keys.
func (m Map) SumRemaining() int {
	sum := 0
	for _, a := range m {
		sum += a.Remaining
	}
	return sum
}

// Clone returns a deep copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, a := range m {
		out[k] = a
	}
	return out
}

// Merge adds incoming to existing per key, on both total and remaining.
// Used for contract renewal; it never replaces, only adds.
func Merge(existing, incoming Map) Map {
	out := existing.Clone()
	for k, in := range incoming {
		a := out[k]
		a.Total += in.Total
		a.Remaining += in.Remaining
		out[k] = a
	}
	return out
}

// FromJSON decodes a ledger from its stored JSON column. A null or empty
// column yields an empty ledger.
func FromJSON(data datatypes.JSON) (Map, error) {
	if len(data) == 0 {
		return Map{}, nil
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// ToJSON encodes the ledger for storage.
func (m Map) ToJSON() (datatypes.JSON, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
