package domain

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Span struct {
	Name    string    `json:"name"`
	startTs time.Time `json:"-"`
	Elapsed *int64    `json:"elapsedMs"`
}

func (s *Span) End() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

type profileKey struct{}

// Profile records how long each pipeline stage took. safe for
// concurrent batch rows
type Profile struct {
	mu      sync.Mutex
	Spans   []*Span `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

func (p *Profile) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.TotalMs == nil {
		t := time.Since(p.startTs).Milliseconds()
		p.TotalMs = &t
	}
}

func (p *Profile) StartSpan(name string) (*Span, func()) {
	s := &Span{
		Name:    name,
		startTs: time.Now(),
	}
	p.mu.Lock()
	p.Spans = append(p.Spans, s)
	p.mu.Unlock()
	return s, s.End
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return json.Marshal(p.Spans)
}

func NewCtxWithProfile(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// StartSpan starts a span on the ctx profile. without a profile the
// returned end func is a no-op
func StartSpan(ctx context.Context, name string) func() {
	p, ok := ctx.Value(profileKey{}).(*Profile)
	if !ok || p == nil {
		return func() {}
	}
	_, end := p.StartSpan(name)
	return end
}
