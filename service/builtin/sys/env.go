package sys

import "context"

// EnvInput defines parameters for the env method
type EnvInput struct {
	Name string `json:"name,omitempty" description:"Variable to look up; empty lists all keys"`
}

// EnvOutput contains the environment lookup result
type EnvOutput struct {
	Value string   `json:"value,omitempty" description:"Value of the requested variable"`
	Found bool     `json:"found" description:"Whether the requested variable exists"`
	Keys  []string `json:"keys,omitempty" description:"All variable names (when no name was given)"`
}

// Env looks up a variable in the effective environment table
func (s *Service) Env(ctx context.Context, input *EnvInput, output *EnvOutput) error {
	if input.Name == "" {
		output.Keys = s.runtime.EnvironKeys()
		return nil
	}
	value, ok := s.runtime.EnvironLookup(input.Name)
	output.Value = value
	output.Found = ok
	return nil
}
