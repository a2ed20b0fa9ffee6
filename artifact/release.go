package artifact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ocm.software/open-component-model/bindings/go/artifactory/digest"
	"ocm.software/open-component-model/bindings/go/artifactory/version"
)

// State is the processing state of a release.
type State string

const (
	// StatePending releases are waiting to be processed.
	StatePending State = "pending"
	// StateReleased releases were processed and their metadata is available.
	StateReleased State = "released"
	// StateFailed releases could not be processed. The reasons are kept in Release.Errors.
	StateFailed State = "failed"
)

func (s State) Valid() bool {
	switch s {
	case StatePending, StateReleased, StateFailed:
		return true
	default:
		return false
	}
}

func (s State) String() string {
	return string(s)
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown release state %q", string(s))
	}
	return []byte(s), nil
}

func (s *State) UnmarshalText(text []byte) error {
	state := State(strings.ToLower(string(text)))
	if !state.Valid() {
		return fmt.Errorf("unknown release state %q", string(text))
	}
	*s = state
	return nil
}

// Release tracks the processing of an artifact release.
type Release struct {
	Artifact    Artifact      `json:"artifact"`
	State       State         `json:"state"`
	Checksum    digest.Digest `json:"checksum,omitzero"`
	ReleaseDate time.Time     `json:"release_date,omitzero"`
	Errors      []string      `json:"errors,omitempty"`
	Latest      bool          `json:"latest,omitempty"`
}

// NewRelease creates a pending release for the artifact.
func NewRelease(a Artifact) *Release {
	return &Release{Artifact: a, State: StatePending}
}

func (r *Release) Version() version.Version {
	return r.Artifact.Coordinate.Version()
}

// AddError records a processing error. Blank messages are ignored.
func (r *Release) AddError(msg string) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	r.Errors = append(r.Errors, msg)
}

// MarkReleased moves the release into the released state.
func (r *Release) MarkReleased(checksum digest.Digest, at time.Time) {
	r.State = StateReleased
	r.Checksum = checksum
	r.ReleaseDate = at
	r.Errors = nil
}

// MarkFailed moves the release into the failed state and records the errors.
func (r *Release) MarkFailed(at time.Time, errs ...string) {
	r.State = StateFailed
	r.ReleaseDate = at
	for _, msg := range errs {
		r.AddError(msg)
	}
}

// Validate checks the consistency of the release with its state.
func (r *Release) Validate() error {
	if err := r.Artifact.Validate(); err != nil {
		return err
	}
	switch r.State {
	case StatePending:
	case StateReleased:
		if r.Checksum.IsZero() {
			return errors.New("released artifact must have a checksum")
		}
		if r.ReleaseDate.IsZero() {
			return errors.New("released artifact must have a release date")
		}
	case StateFailed:
		return nil
	default:
		return fmt.Errorf("unknown release state %q", string(r.State))
	}
	if len(r.Errors) > 0 {
		return fmt.Errorf("%s release must not have errors", r.State)
	}
	return nil
}

// CompareReleases orders releases by version.
func CompareReleases(a, b *Release) int {
	return version.Compare(a.Version(), b.Version())
}
