package contract

import "fmt"

// ArtifactError reports an artifact bundle that cannot be loaded. Fatal for
// inference: nothing can be scored without the contract.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact unavailable at %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// SkewError reports component parts of an artifact bundle that disagree in
// shape, e.g. a scaler from one run paired with a column list from another.
// Fatal; scoring must not proceed.
type SkewError struct {
	Reason string
}

func (e *SkewError) Error() string {
	return fmt.Sprintf("artifact version skew: %s", e.Reason)
}
