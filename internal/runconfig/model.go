package runconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Profile is the profile of every run configuration document.
const Profile = "run-configuration"

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrVariableNotFound = errors.New("variable not found")
)

// VariableState is the current state of one declared variable. Value is kept
// as raw JSON and only decoded against the declared type when needed.
type VariableState struct {
	Name       string          `json:"name"`
	Value      json.RawMessage `json:"value"`
	Disabled   bool            `json:"disabled"`
	Resource   string          `json:"resource,omitempty"`
	Metaschema string          `json:"metaschema,omitempty"`
}

// RunConfiguration is one concrete instantiation of a signature.
type RunConfiguration struct {
	Name      string           `json:"name"`
	Title     string           `json:"title"`
	Profile   string           `json:"profile"`
	Algorithm string           `json:"algorithm"`
	Container string           `json:"container"`
	Data      []*VariableState `json:"data"`
}

// Variable returns the state of a variable or ErrVariableNotFound.
func (rc *RunConfiguration) Variable(name string) (*VariableState, error) {
	for _, v := range rc.Data {
		if v.Name == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q in run %q", ErrVariableNotFound, name, rc.Name)
}

// Clone returns a deep copy that can be mutated independently.
func (rc *RunConfiguration) Clone() *RunConfiguration {
	out := *rc
	out.Data = make([]*VariableState, len(rc.Data))
	for i, v := range rc.Data {
		state := *v
		state.Value = bytes.Clone(v.Value)
		out.Data[i] = &state
	}
	return &out
}
