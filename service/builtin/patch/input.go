package patch

// ApplyInput applies a unified diff to stored module definitions.
type ApplyInput struct {
	// Changeset joins an open changeset; empty opens a new one.
	Changeset string `json:"changeset,omitempty" description:"changeset id to join; a new changeset is opened when empty"`
	// BaseURL resolves relative file names from the patch headers.
	BaseURL string `json:"baseURL,omitempty" description:"base URL relative patch file names are resolved against"`
	// Patch holds the unified diff text (---/+++ headers, @@ hunks).
	Patch string `json:"patch" required:"true" description:"GNU unified diff to apply"`
}

// ApplyOutput reports the changeset the edits were recorded in.
type ApplyOutput struct {
	Changeset string `json:"changeset"`
	Applied   int    `json:"applied" description:"number of files touched"`
}

// DiffInput generates a unified diff between two text blobs.
type DiffInput struct {
	Old     string `json:"old" description:"original content"`
	New     string `json:"new" description:"modified content"`
	Path    string `json:"path,omitempty" description:"label used in the diff headers"`
	Context int    `json:"context,omitempty" description:"context lines per hunk, default 3"`
}

// DiffOutput carries the generated patch and its statistics.
type DiffOutput struct {
	Patch      string `json:"patch,omitempty"`
	NoChange   bool   `json:"noChange,omitempty"`
	Hunks      int    `json:"hunks"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// ChangesetInput addresses an open changeset.
type ChangesetInput struct {
	Changeset string `json:"changeset" required:"true" description:"changeset id"`
}

// ChangesetOutput reports the changeset's final state.
type ChangesetOutput struct {
	Changeset string `json:"changeset"`
	Status    string `json:"status"`
}
