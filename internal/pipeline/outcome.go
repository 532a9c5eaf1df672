package pipeline

// Kind names the outcome of a Pick call, one per spec.md §7 error kind plus
// the success case, BINARY_CONFLICT (see DESIGN.md's Open Question
// decisions), and the rollback-error case behind exit code 5.
type Kind string

const (
	KindSuccess Kind = "SUCCESS"

	// KindPatchFailedNoLLM is reached when the patch stage leaves rejects
	// and LLMEnabled is false; exit code 2 per spec.md §6.
	KindPatchFailedNoLLM Kind = "PATCH_FAILED_NO_LLM"

	// KindPatchUnresolvable is a structural patch-stage failure: malformed
	// diff, or a deletion hunk whose removed lines are absent from the
	// destination.
	KindPatchUnresolvable Kind = "PATCH_UNRESOLVABLE"

	// KindBinaryConflict is the conservative choice from spec.md §9's open
	// question: a commit touching both binary and textual files fails fast
	// before any textual hunk is applied.
	KindBinaryConflict Kind = "BINARY_CONFLICT"

	KindLLMUnavailable Kind = "LLM_UNAVAILABLE"
	KindLLMParseFailed Kind = "LLM_PARSE_FAILED"
	KindLLMRefused     Kind = "LLM_REFUSED"

	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindDependencyLimit  Kind = "DEPENDENCY_LIMIT"
	KindCancelled        Kind = "CANCELLED"
	KindWorkingTreeDirty Kind = "WORKING_TREE_DIRTY"

	// KindRollbackError means the working tree was left inconsistent while
	// trying to roll back; this must be rare and loud.
	KindRollbackError Kind = "ROLLBACK_ERROR"
)

// ExitCode maps a Kind to the process exit code spec.md §6 defines.
func (k Kind) ExitCode() int {
	switch k {
	case KindSuccess:
		return 0
	case KindPatchFailedNoLLM:
		return 2
	case KindLLMUnavailable, KindLLMParseFailed, KindLLMRefused:
		return 3
	case KindValidationFailed:
		return 4
	case KindRollbackError:
		return 5
	default:
		return 1
	}
}

// Outcome is the Pipeline's public result type: spec.md §3's PickOutcome.
type Outcome struct {
	Kind Kind

	// SucceededVia names the attempt that applied the commit: "native
	// cherry-pick", "patch tool (fuzz=N)", "patch tool (rename/mode
	// change)", or "LLM repair (K hunks)".
	SucceededVia string

	// Annotations are the commit-message trailer lines appended, in the
	// order spec.md §6 requires.
	Annotations []string

	RejectsResolved int
	ValidationResult *validationSummary

	// Reason is a human-readable explanation for a non-success Kind.
	Reason string

	CommitID string
}

// validationSummary is the subset of validate.Result the CLI reports.
type validationSummary struct {
	Passed   bool
	ExitCode int
	Stdout   string
	Stderr   string
}
