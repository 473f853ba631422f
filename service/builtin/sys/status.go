package sys

import "context"

// StatusInput defines parameters for the status method
type StatusInput struct {
	IncludeProtected bool `json:"includeProtected,omitempty" description:"Include protected module names in the response"`
}

// StatusOutput describes the current runtime state
type StatusOutput struct {
	Modules      []string `json:"modules,omitempty" description:"Names of loaded modules"`
	Protected    []string `json:"protected,omitempty" description:"Names of protected modules"`
	SearchPath   []string `json:"searchPath,omitempty" description:"Effective manifest search path"`
	SessionDepth int      `json:"sessionDepth" description:"Number of active isolation sessions"`
}

// Status reports loaded modules, the search path and session nesting
func (s *Service) Status(ctx context.Context, input *StatusInput, output *StatusOutput) error {
	output.Modules = s.runtime.ModuleNames()
	if input.IncludeProtected {
		output.Protected = s.runtime.ProtectedNames()
	}
	output.SearchPath = s.runtime.SearchPath()
	output.SessionDepth = s.runtime.SessionDepth()
	return nil
}
