package vfs

import (
	"time"

	"github.com/ink-feather-org/neat-fs/pkg/encoding"
)

const (
	// defaultCommitDelayMilliseconds is the idle window after the last
	// operation before an automatic commit is performed.
	defaultCommitDelayMilliseconds = 500
	// defaultForceCommitAfterMilliseconds is the maximum staleness since the
	// last commit before an operation triggers an immediate commit.
	defaultForceCommitAfterMilliseconds = 5000
)

// Configuration holds the filesystem's tunable parameters. Its zero value
// requests defaults for every parameter.
type Configuration struct {
	// CommitDelayMilliseconds is the idle window, in milliseconds, after the
	// last operation before an automatic commit is performed. A nil value
	// requests the default (500); a negative value disables the idle
	// trigger.
	CommitDelayMilliseconds *int64 `yaml:"commitDelay"`
	// ForceCommitAfterMilliseconds is the maximum time, in milliseconds,
	// allowed to pass since the last commit before the next completed
	// operation triggers an immediate commit. A nil value requests the
	// default (5000); a negative value disables the staleness trigger.
	ForceCommitAfterMilliseconds *int64 `yaml:"forceCommitAfter"`
}

// LoadConfiguration loads a YAML-based configuration file from the specified
// path.
func LoadConfiguration(path string) (*Configuration, error) {
	result := &Configuration{}
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Save writes the configuration to the specified path in YAML format.
func (c *Configuration) Save(path string) error {
	return encoding.MarshalAndSaveYAML(path, c)
}

// commitDelay returns the effective idle-commit delay and whether or not the
// idle trigger is enabled.
func (c *Configuration) commitDelay() (time.Duration, bool) {
	milliseconds := int64(defaultCommitDelayMilliseconds)
	if c != nil && c.CommitDelayMilliseconds != nil {
		milliseconds = *c.CommitDelayMilliseconds
	}
	if milliseconds < 0 {
		return 0, false
	}
	return time.Duration(milliseconds) * time.Millisecond, true
}

// forceCommitAfter returns the effective staleness bound and whether or not
// the staleness trigger is enabled.
func (c *Configuration) forceCommitAfter() (time.Duration, bool) {
	milliseconds := int64(defaultForceCommitAfterMilliseconds)
	if c != nil && c.ForceCommitAfterMilliseconds != nil {
		milliseconds = *c.ForceCommitAfterMilliseconds
	}
	if milliseconds < 0 {
		return 0, false
	}
	return time.Duration(milliseconds) * time.Millisecond, true
}
