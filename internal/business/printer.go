package business

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/openkcm/profile-session/internal/profile"
	"github.com/openkcm/profile-session/pkg/callback"
)

type printedEvent struct {
	Event   string           `yaml:"event"`
	Success *bool            `yaml:"success,omitempty"`
	Error   string           `yaml:"error,omitempty"`
	Profile *profile.Profile `yaml:"profile,omitempty"`
}

// EventPrinter writes every event of a repository as a YAML document.
type EventPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	failed bool
	err    error
}

func NewEventPrinter(out io.Writer) *EventPrinter {
	return &EventPrinter{out: out}
}

// Attach subscribes the printer to every kind of event of repo.
func (p *EventPrinter) Attach(repo *profile.Repository) error {
	for _, kind := range profile.ResultKinds {
		h := callback.NewHandle("printer-"+kind.String(), func(_ context.Context, res profile.Result) {
			p.printResult(kind, res)
		})
		if err := repo.SubscribeResult(kind, h); err != nil {
			return fmt.Errorf("subscribing to %s: %w", kind, err)
		}
	}

	repo.SubscribeProfile(callback.NewHandle("printer-"+profile.ProfileChanged.String(), func(_ context.Context, pr profile.Profile) {
		p.write(printedEvent{Event: profile.ProfileChanged.String(), Profile: &pr})
	}))

	return nil
}

// Failed reports whether a failed Result was printed.
func (p *EventPrinter) Failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

// Err returns the first write error.
func (p *EventPrinter) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *EventPrinter) printResult(kind profile.Kind, res profile.Result) {
	success := res.Success
	if !success {
		p.mu.Lock()
		p.failed = true
		p.mu.Unlock()
	}

	p.write(printedEvent{Event: kind.String(), Success: &success, Error: res.ErrorMessage})
}

func (p *EventPrinter) write(ev printedEvent) {
	b, err := yaml.Marshal(ev)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err == nil {
		_, err = fmt.Fprintf(p.out, "---\n%s", b)
	}
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("writing %s event: %w", ev.Event, err)
	}
}
