package loadtest

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Spec is a loadtest scenario description, loaded from a YAML file. Exactly
// one of the scenario sections must be present.
//
// Example:
//
//	target:
//	  eventId: 3471e132-69f2-4764-ac79-e5ad57111483
//	  sessionId: 293bed3f-c670-42f6-9e28-628cd6fec57a
//	  organizationId: 22a67f04-b918-44ac-9b63-49efe8d34356
//	  seatIds: [79cd17f8-e160-4e8b-9c8a-aefb59ee287a]
//	race:
//	  actors: 100
//	stress:
//	  stages:
//	    - duration: 30s
//	      target: 50
//	    - duration: 1m
//	      target: 50
type Spec struct {
	Target Target      `yaml:"target"`
	Race   *RaceSpec   `yaml:"race,omitempty"`
	Stress *StressSpec `yaml:"stress,omitempty"`
	// Classification overrides the default status-code table, e.g.
	// {409: conflict, 423: conflict}.
	Classification map[int]string `yaml:"classification,omitempty"`
}

// Target names the remote contended resources every actor races for.
type Target struct {
	EventID        string   `yaml:"eventId"`
	SessionID      string   `yaml:"sessionId"`
	OrganizationID string   `yaml:"organizationId"`
	SeatIDs        []string `yaml:"seatIds"`
}

type RaceSpec struct {
	Actors int `yaml:"actors"`
}

// Duration exists because yaml.v2 has no native support for Go duration
// strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Stage struct {
	Duration Duration `yaml:"duration"`
	Target   int      `yaml:"target"`
}

type StressSpec struct {
	Stages []Stage `yaml:"stages"`
	// ExpectedRateThreshold is the minimum acceptable fraction of expected
	// responses (successes plus contention rejections).
	ExpectedRateThreshold float64 `yaml:"expectedRateThreshold"`
	// ServerErrorCap is the maximum tolerated number of 5xx responses.
	ServerErrorCap int64 `yaml:"serverErrorCap"`
	// ThinkTime is an optional pause between attempts per actor.
	ThinkTime Duration `yaml:"thinkTime"`
}

// DefaultStressStages mirrors the original ramp shape: ramp to the base
// target, hold, increase by 50%, hold, double, hold, ramp down.
func DefaultStressStages(base int) []Stage {
	return []Stage{
		{Duration: Duration(30 * time.Second), Target: base},
		{Duration: Duration(time.Minute), Target: base},
		{Duration: Duration(30 * time.Second), Target: base * 3 / 2},
		{Duration: Duration(time.Minute), Target: base * 3 / 2},
		{Duration: Duration(30 * time.Second), Target: base * 2},
		{Duration: Duration(time.Minute), Target: base * 2},
		{Duration: Duration(time.Minute), Target: 0},
	}
}

func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read loadtest spec %s", path)
	}
	spec := &Spec{}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, errors.Wrapf(err, "failed to parse loadtest spec %s", path)
	}
	if err := spec.validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid loadtest spec %s", path)
	}
	return spec, nil
}

func (s *Spec) validate() error {
	if s.Race == nil && s.Stress == nil {
		return errors.New("spec must contain a race or stress section")
	}
	if s.Race != nil && s.Stress != nil {
		return errors.New("spec must contain only one of race or stress")
	}
	if len(s.Target.SeatIDs) == 0 {
		return errors.New("target.seatIds must not be empty")
	}
	if s.Race != nil && s.Race.Actors <= 0 {
		return errors.New("race.actors must be positive")
	}
	if s.Stress != nil && len(s.Stress.Stages) == 0 {
		return errors.New("stress.stages must not be empty")
	}
	return nil
}

// Classifier builds the outcome table for the run: defaults overlaid with
// any per-spec overrides.
func (s *Spec) Classifier() (Classifier, error) {
	classifier := DefaultClassifier()
	for status, name := range s.Classification {
		switch name {
		case "success":
			classifier[status] = ClassSuccess
		case "expected":
			classifier[status] = ClassExpected
		case "conflict":
			classifier[status] = ClassConflict
		case "server_error":
			classifier[status] = ClassServerError
		case "other":
			classifier[status] = ClassOther
		default:
			return nil, errors.Errorf("unknown outcome class %q for status %d", name, status)
		}
	}
	return classifier, nil
}
