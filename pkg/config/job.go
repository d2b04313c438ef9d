package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/user/mixrender/pkg/mixer"
	"github.com/user/mixrender/pkg/pipeline"
	"github.com/user/mixrender/pkg/soundstore"
	"gopkg.in/yaml.v3"
)

// ErrInvalidJob is returned for job files missing required fields.
var ErrInvalidJob = errors.New("invalid job")

// Job describes one render: the sound timeline, the music beds and where
// the video comes from.
type Job struct {
	Output   string
	Duration float64 // seconds

	Sounds []soundstore.Asset
	Events []mixer.Event
	Music  []pipeline.AudioInput

	// Video source. VideoInput reuses an encoded file, ProducerURL is a
	// page driven by the headless browser, TestPattern streams generated
	// frames. Without any of them the server waits for an external producer.
	VideoInput  string
	ProducerURL string
	TestPattern bool

	Resolution  string
	FPS         int
	VFlip       bool
	VideoOutput string
	MixOutput   string

	KeepIntermediate bool
}

// rawJob is the file form of Job. Volume and rate are pointers so an
// omitted value defaults to 1 while an explicit 0 volume stays silent.
type rawJob struct {
	Output           string                `yaml:"output"`
	Duration         float64               `yaml:"duration"`
	Sounds           []soundstore.Asset    `yaml:"sounds"`
	Events           []rawEvent            `yaml:"events"`
	Music            []pipeline.AudioInput `yaml:"music"`
	VideoInput       string                `yaml:"video"`
	ProducerURL      string                `yaml:"producer_url"`
	TestPattern      bool                  `yaml:"test_pattern"`
	Resolution       string                `yaml:"resolution"`
	FPS              int                   `yaml:"fps"`
	VFlip            bool                  `yaml:"vflip"`
	VideoOutput      string                `yaml:"video_output"`
	MixOutput        string                `yaml:"mix_output"`
	KeepIntermediate bool                  `yaml:"keep_intermediate"`
}

type rawEvent struct {
	Sound  string   `yaml:"sound"`
	Offset float64  `yaml:"offset"`
	Volume *float64 `yaml:"volume"`
	Rate   *float64 `yaml:"rate"`
}

func (r rawEvent) event() mixer.Event {
	e := mixer.Event{Sound: r.Sound, Offset: r.Offset, Volume: 1, Rate: 1}
	if r.Volume != nil {
		e.Volume = *r.Volume
	}
	if r.Rate != nil {
		e.Rate = *r.Rate
	}
	return e
}

// LoadJob loads a render job from a YAML or JSON file.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, err
	}
	return ParseJob(data)
}

// ParseJob parses a render job. JSON is accepted as YAML.
func ParseJob(data []byte) (Job, error) {
	var raw rawJob
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Job{}, fmt.Errorf("parse job: %w", err)
	}

	job := Job{
		Output:           raw.Output,
		Duration:         raw.Duration,
		Sounds:           raw.Sounds,
		Music:            raw.Music,
		VideoInput:       raw.VideoInput,
		ProducerURL:      raw.ProducerURL,
		TestPattern:      raw.TestPattern,
		Resolution:       raw.Resolution,
		FPS:              raw.FPS,
		VFlip:            raw.VFlip,
		VideoOutput:      raw.VideoOutput,
		MixOutput:        raw.MixOutput,
		KeepIntermediate: raw.KeepIntermediate,
	}
	for _, e := range raw.Events {
		job.Events = append(job.Events, e.event())
	}

	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Validate checks the fields every job needs.
func (j Job) Validate() error {
	switch {
	case j.Output == "":
		return fmt.Errorf("%w: output is required", ErrInvalidJob)
	case math.IsNaN(j.Duration) || math.IsInf(j.Duration, 0):
		return fmt.Errorf("%w: duration must be finite", ErrInvalidJob)
	case j.Duration <= 0 && j.VideoInput == "":
		return fmt.Errorf("%w: duration must be positive", ErrInvalidJob)
	case j.ProducerURL != "" && j.TestPattern:
		return fmt.Errorf("%w: producer_url and test_pattern are exclusive", ErrInvalidJob)
	}
	for i, s := range j.Sounds {
		if s.Key == "" {
			return fmt.Errorf("%w: sound %d has no key", ErrInvalidJob, i)
		}
	}
	return nil
}
