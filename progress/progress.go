package progress

import (
	"context"
	"sync"
)

// Progress coordinates the flow of progress events between collectors and
// reporters.
//
// Events flow: Collector -> Progress.collectorChan -> reporter channels ->
// Reporters. Every reporter is driven by its own worker goroutine, so a
// reporter handles one event at a time, in the order Progress received them.
//
// Lifecycle:
//  1. Create with New() and options (WithContext, WithReporters, WithCollectors)
//  2. Progress subscribes to the collectors and starts reporter workers
//  3. Close drains every subscribed collector and waits for the reporters to
//     handle the drained events. Cancelling the context stops everything
//     without draining.
//
// Progress is safe for concurrent use.
type Progress struct {
	ctx                context.Context
	reporters          []Reporter
	reporterChannels   []chan Event
	collectors         []Collector
	collectorChan      chan Event
	collecterCancelMap map[int]context.CancelFunc
	subscribeMutex     sync.Mutex

	closed      bool
	closeOnce   sync.Once
	subscribers sync.WaitGroup
	workers     sync.WaitGroup
}

// ProgressOption configures a Progress instance during creation.
type ProgressOption func(p *Progress)

// WithContext sets the context controlling the background goroutines.
func WithContext(ctx context.Context) ProgressOption {
	return func(p *Progress) {
		p.ctx = ctx
	}
}

// WithReporters adds one or more reporters. Every reporter receives every
// event.
func WithReporters(reporters ...Reporter) ProgressOption {
	return func(p *Progress) {
		p.reporters = append(p.reporters, reporters...)
	}
}

// WithCollectors adds one or more collectors that Progress subscribes to on
// creation.
func WithCollectors(collectors ...Collector) ProgressOption {
	return func(p *Progress) {
		p.collectors = append(p.collectors, collectors...)
	}
}

// New creates a new Progress instance with the provided options.
//
// If no reporters are specified a NoopReporter is used. If no context is
// provided the Progress runs until Close is called.
func New(opts ...ProgressOption) (*Progress, error) {
	pg := &Progress{
		collectorChan:      make(chan Event, 100),
		collecterCancelMap: map[int]context.CancelFunc{},
	}
	for _, opt := range opts {
		opt(pg)
	}
	if pg.ctx == nil {
		pg.ctx = context.Background()
	}

	if len(pg.reporters) == 0 {
		pg.reporters = append(pg.reporters, &NoopReporter{})
	}

	for _, reporter := range pg.reporters {
		reporterChannel := make(chan Event, 100)
		pg.reporterChannels = append(pg.reporterChannels, reporterChannel)
		pg.workers.Add(1)
		go pg.reporterWorker(reporter, reporterChannel)
	}

	go pg.fanOut()

	for _, collector := range pg.collectors {
		pg.Subscribe(collector)
	}

	return pg, nil
}

// fanOut copies every collected event to each reporter channel. It closes the
// reporter channels once the collector channel is closed.
func (p *Progress) fanOut() {
	for {
		select {
		case event, ok := <-p.collectorChan:
			if !ok {
				for _, ch := range p.reporterChannels {
					close(ch)
				}
				return
			}
			for _, ch := range p.reporterChannels {
				select {
				case ch <- event:
				case <-p.ctx.Done():
					return
				}
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Unsubscribe stops receiving events from the specified collector. Events
// still buffered in the collector are forwarded first.
func (p *Progress) Unsubscribe(collector Collector) {
	p.subscribeMutex.Lock()
	subscribeCancel, ok := p.collecterCancelMap[collector.ID()]
	delete(p.collecterCancelMap, collector.ID())
	p.subscribeMutex.Unlock()
	if ok {
		subscribeCancel()
	}
}

// Subscribe starts receiving events from the specified collector. It is a
// no-op once Close has been called, and for a collector whose ID is already
// subscribed.
func (p *Progress) Subscribe(collector Collector) {
	subscribeContext, subscribeCancel := context.WithCancel(p.ctx)
	p.subscribeMutex.Lock()
	_, subscribed := p.collecterCancelMap[collector.ID()]
	if p.closed || subscribed {
		p.subscribeMutex.Unlock()
		subscribeCancel()
		return
	}
	p.collecterCancelMap[collector.ID()] = subscribeCancel
	p.subscribers.Add(1)
	p.subscribeMutex.Unlock()

	go func() {
		defer p.subscribers.Done()
		for {
			select {
			case event := <-collector.CollectChannel():
				if !p.forward(event) {
					return
				}
			case <-subscribeContext.Done():
				p.drain(collector)
				return
			}
		}
	}()
}

// Close unsubscribes every collector after forwarding the events they still
// buffer, then waits until the reporters have handled everything. Reports
// made to a collector after Close are not delivered.
func (p *Progress) Close() {
	p.closeOnce.Do(func() {
		p.subscribeMutex.Lock()
		p.closed = true
		for id, cancel := range p.collecterCancelMap {
			cancel()
			delete(p.collecterCancelMap, id)
		}
		p.subscribeMutex.Unlock()

		p.subscribers.Wait()
		close(p.collectorChan)
		p.workers.Wait()
	})
}

// forward hands an event to the fan-out loop. It returns false once the
// Progress context is done.
func (p *Progress) forward(event Event) bool {
	select {
	case p.collectorChan <- event:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// drain forwards whatever is currently buffered in the collector.
func (p *Progress) drain(collector Collector) {
	for {
		select {
		case event := <-collector.CollectChannel():
			if !p.forward(event) {
				return
			}
		default:
			return
		}
	}
}

// reporterWorker forwards events to a reporter until its channel is closed or
// the Progress context is done.
func (p *Progress) reporterWorker(reporter Reporter, events chan Event) {
	defer p.workers.Done()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			reporter.Report(event)
		case <-p.ctx.Done():
			return
		}
	}
}
