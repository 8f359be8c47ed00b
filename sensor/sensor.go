// Package sensor abstracts the point-cloud frame source and accumulates
// successive frames into one scene cloud.
package sensor

import (
	"context"
	"errors"
	"fmt"

	"github.com/seqsense/pcgol/pc"

	"objrecon/cloud"
)

// ErrExhausted is returned by a Source that has no more frames to deliver.
var ErrExhausted = errors.New("sensor: frame source exhausted")

// Source delivers point-cloud frames in arrival order. Next blocks until a
// frame is available or the context is done.
type Source interface {
	Next(ctx context.Context) (*pc.PointCloud, error)
}

// Accumulator concatenates successive frames from a Source. Frames are
// assumed co-registered; no deduplication or alignment is done.
type Accumulator struct {
	Source Source
}

// Accumulate pulls exactly frames frames and merges them in arrival
// order. frames <= 0 returns an empty cloud without touching the source.
// A source failure, including exhaustion, fails the whole call.
func (a *Accumulator) Accumulate(ctx context.Context, frames int) (*pc.PointCloud, error) {
	if frames <= 0 {
		return cloud.New(0), nil
	}
	pps := make([]*pc.PointCloud, 0, frames)
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pp, err := a.Source.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("accumulate frame %d/%d: %w", i+1, frames, err)
		}
		pps = append(pps, pp)
	}
	return cloud.Merge(pps...), nil
}

// SliceSource replays a fixed sequence of clouds and then reports
// ErrExhausted, optionally rewinding instead.
type SliceSource struct {
	Clouds []*pc.PointCloud
	// Loop rewinds to the first frame after the last one, turning the
	// source into an endless replay.
	Loop bool

	pos int
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (*pc.PointCloud, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.Clouds) {
		if !s.Loop || len(s.Clouds) == 0 {
			return nil, ErrExhausted
		}
		s.pos = 0
	}
	pp := s.Clouds[s.pos]
	s.pos++
	return pp, nil
}
