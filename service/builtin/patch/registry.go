package patch

import (
	"context"
	"reflect"
	"strings"

	"github.com/modscope/modscope/model/types"
)

const Name = "patch"

func (s *Service) Name() string {
	return Name
}

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "apply",
			Description: "Applies a unified-diff patch to stored module definitions within a changeset (auto-created on first use).",
			Input:       reflect.TypeOf(&ApplyInput{}),
			Output:      reflect.TypeOf(&ApplyOutput{}),
		},
		{
			Name:        "diff",
			Description: "Generates a unified diff (and statistics) from two text blobs.",
			Input:       reflect.TypeOf(&DiffInput{}),
			Output:      reflect.TypeOf(&DiffOutput{}),
		},
		{
			Name:        "commit",
			Description: "Commits a changeset, discarding its rollback information.",
			Input:       reflect.TypeOf(&ChangesetInput{}),
			Output:      reflect.TypeOf(&ChangesetOutput{}),
		},
		{
			Name:        "rollback",
			Description: "Rolls back every edit recorded in a changeset.",
			Input:       reflect.TypeOf(&ChangesetInput{}),
			Output:      reflect.TypeOf(&ChangesetOutput{}),
		},
	}
}

func (s *Service) apply(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ApplyInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ApplyOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Apply(ctx, input, output)
}

func (s *Service) diff(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DiffInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DiffOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Diff(ctx, input, output)
}

func (s *Service) commit(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ChangesetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ChangesetOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Commit(ctx, input, output)
}

func (s *Service) rollback(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ChangesetInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ChangesetOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Rollback(ctx, input, output)
}

// Method returns method by name
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "apply":
		return s.apply, nil
	case "diff":
		return s.diff, nil
	case "commit":
		return s.commit, nil
	case "rollback":
		return s.rollback, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
