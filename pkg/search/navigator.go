package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/districtviz/pkg/errors"
	"github.com/matzehuels/districtviz/pkg/memo"
	"github.com/matzehuels/districtviz/pkg/observability"
	"github.com/matzehuels/districtviz/pkg/schedule"
)

// Result is published to subscribers whenever the address list changes.
type Result struct {
	Terms      string
	Generation uint64   // debounce generation; zero for a cleared search
	Options    []Option // districts followed by addresses
	Err        error
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithClock sets the clock driving the debounce window.
func WithClock(c schedule.Clock) NavigatorOption {
	return func(n *Navigator) { n.clock = c }
}

// WithDebounce overrides the 200ms settle window.
func WithDebounce(d time.Duration) NavigatorOption {
	return func(n *Navigator) { n.wait = d }
}

// WithBaseContext sets the parent context of every address query.
func WithBaseContext(ctx context.Context) NavigatorOption {
	return func(n *Navigator) { n.base = ctx }
}

// Navigator drives the navigation dropdown.
//
// Subscribers are called one result at a time, in publish order, without
// any navigator lock held.
type Navigator struct {
	districts []Option
	source    AddressSource
	clock     schedule.Clock
	wait      time.Duration
	base      context.Context
	debounce  *schedule.Debouncer[string]
	combined  memo.Cell[[]Option]

	mu        sync.Mutex
	terms     string
	addresses []Option
	version   uint64 // bumped on every publish
	err       error
	cancel    context.CancelFunc
	subs      []func(Result)
	pending   []Result
	notifying bool
	wg        sync.WaitGroup
}

// NewNavigator creates a navigator over a fixed district list and an address
// source.
func NewNavigator(districts []Option, src AddressSource, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		districts: append([]Option(nil), districts...),
		source:    src,
		wait:      schedule.DefaultSearchDebounce,
		base:      context.Background(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.debounce = schedule.NewDebouncer(n.clock, n.wait, n.query)
	return n
}

// Subscribe registers fn for every published result.
func (n *Navigator) Subscribe(fn func(Result)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// HandleSearch accepts the latest text from the search box. Each call
// restarts the debounce window and cancels any in-flight query. Blank terms
// cancel everything and clear the addresses immediately.
func (n *Navigator) HandleSearch(terms string) error {
	if err := errors.ValidateSearchTerms(terms); err != nil {
		return err
	}

	n.mu.Lock()
	n.cancelInflightLocked()
	if strings.TrimSpace(terms) == "" {
		n.debounce.Cancel()
		n.terms, n.addresses, n.err = "", nil, nil
		n.publishLocked(Result{Options: n.districtsCopy()})
		return nil
	}
	n.debounce.Trigger(terms)
	n.mu.Unlock()
	return nil
}

// query runs when the debounce window settles.
func (n *Navigator) query(gen uint64, terms string) {
	n.mu.Lock()
	if !n.debounce.Current(gen) {
		n.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(n.base)
	n.cancel = cancel
	n.wg.Add(1)
	n.mu.Unlock()

	hooks := observability.Search()
	hooks.OnQuery(ctx, terms, gen)

	go func() {
		defer n.wg.Done()
		defer cancel()

		start := time.Now()
		addrs, err := n.source.Query(ctx, terms)

		n.mu.Lock()
		if !n.debounce.Current(gen) {
			n.mu.Unlock()
			hooks.OnStale(ctx, terms, gen)
			return
		}
		hooks.OnResults(ctx, terms, gen, len(addrs), time.Since(start), err)

		n.terms, n.err = terms, err
		n.addresses = nil
		if err == nil {
			n.addresses = addrs
		}
		n.publishLocked(Result{
			Terms:      terms,
			Generation: gen,
			Options:    Combine(n.districts, n.addresses),
			Err:        err,
		})
	}()
}

// publishLocked queues r for subscribers. It is entered with n.mu held and
// returns with it released. Whichever goroutine finds no delivery in
// progress drains the queue, so results reach subscribers in publish order.
func (n *Navigator) publishLocked(r Result) {
	n.version++
	n.pending = append(n.pending, r)
	if n.notifying {
		n.mu.Unlock()
		return
	}
	n.notifying = true
	for len(n.pending) > 0 {
		batch, subs := n.pending, append(([]func(Result))(nil), n.subs...)
		n.pending = nil
		n.mu.Unlock()
		for _, res := range batch {
			for _, fn := range subs {
				fn(res)
			}
		}
		n.mu.Lock()
	}
	n.notifying = false
	n.mu.Unlock()
}

func (n *Navigator) cancelInflightLocked() {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

func (n *Navigator) districtsCopy() []Option {
	return append([]Option(nil), n.districts...)
}

// Terms returns the terms of the last published search.
func (n *Navigator) Terms() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.terms
}

// Err returns the error of the last published search.
func (n *Navigator) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Options returns the districts followed by the addresses of the last
// published search.
func (n *Navigator) Options() []Option {
	n.mu.Lock()
	version, addrs := n.version, n.addresses
	n.mu.Unlock()

	opts, _ := n.combined.Get(func() ([]Option, error) {
		return Combine(n.districts, addrs), nil
	}, version)
	return append([]Option(nil), opts...)
}

// Filter applies Matcher to Options.
func (n *Navigator) Filter(term string) []Option {
	return Filter(n.Options(), term)
}

// Close cancels pending and in-flight searches and waits for them to end.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.debounce.Cancel()
	n.cancelInflightLocked()
	n.mu.Unlock()
	n.wg.Wait()
}
