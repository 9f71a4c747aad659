package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, cfg Config, prompt string, opts RequestOptions) (*Completion, error) {
	args := m.Called(ctx, cfg, prompt, opts)
	if c := args.Get(0); c != nil {
		return c.(*Completion), args.Error(1)
	}
	return nil, args.Error(1)
}

// fakeCompleter records dispatch order and times. When gate is set the first
// call blocks until it is closed so tests can build up a queue behind it.
type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	times   []time.Time
	latency map[string]time.Duration
	gate    chan struct{}
}

func (f *fakeCompleter) Complete(_ context.Context, _ Config, prompt string, opts RequestOptions) (*Completion, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.times = append(f.times, time.Now())
	first := len(f.prompts) == 1
	f.mu.Unlock()

	if first && f.gate != nil {
		<-f.gate
	}
	time.Sleep(f.latency[prompt])
	return &Completion{Content: "re: " + prompt, Model: opts.Model}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGateway(delay time.Duration, c Completer) *Gateway {
	g := New(Config{APIKey: "sk-test", Model: "gpt-test", BaseURL: "http://unused"}, delay, 0, testLogger())
	g.Register(ProviderOpenAI, c)
	return g
}

type outcome struct {
	prompt     string
	completion *Completion
	err        error
}

func submit(ctx context.Context, g *Gateway, prompt string, out chan<- outcome) {
	go func() {
		c, err := g.Request(ctx, prompt, RequestOptions{})
		out <- outcome{prompt: prompt, completion: c, err: err}
	}()
}

func waitQueued(t *testing.T, g *Gateway, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return g.Status().QueueLength == n }, time.Second, 5*time.Millisecond)
}

func TestGateway_SpacesConsecutiveDispatches(t *testing.T) {
	const delay = 100 * time.Millisecond
	fake := &fakeCompleter{gate: make(chan struct{})}
	g := newTestGateway(delay, fake)
	out := make(chan outcome, 3)
	ctx := context.Background()

	submit(ctx, g, "A", out)
	require.Eventually(t, func() bool { return fake.calls() == 1 }, time.Second, 5*time.Millisecond)
	submit(ctx, g, "B", out)
	waitQueued(t, g, 1)
	submit(ctx, g, "C", out)
	waitQueued(t, g, 2)
	close(fake.gate)

	for i := 0; i < 3; i++ {
		res := <-out
		require.NoError(t, res.err)
	}

	require.Len(t, fake.times, 3)
	assert.GreaterOrEqual(t, fake.times[2].Sub(fake.times[0]), 2*delay)
	assert.GreaterOrEqual(t, fake.times[2].Sub(fake.times[1]), delay)
}

func TestGateway_DispatchesInSubmissionOrder(t *testing.T) {
	fake := &fakeCompleter{
		gate: make(chan struct{}),
		latency: map[string]time.Duration{
			"A": 40 * time.Millisecond,
			"B": 0,
			"C": 10 * time.Millisecond,
		},
	}
	g := newTestGateway(0, fake)
	out := make(chan outcome, 3)
	ctx := context.Background()

	submit(ctx, g, "A", out)
	require.Eventually(t, func() bool { return fake.calls() == 1 }, time.Second, 5*time.Millisecond)
	submit(ctx, g, "B", out)
	waitQueued(t, g, 1)
	submit(ctx, g, "C", out)
	waitQueued(t, g, 2)
	close(fake.gate)

	var resolved []string
	for i := 0; i < 3; i++ {
		res := <-out
		require.NoError(t, res.err)
		assert.Equal(t, "re: "+res.prompt, res.completion.Content)
		resolved = append(resolved, res.prompt)
	}

	assert.Equal(t, []string{"A", "B", "C"}, fake.prompts)
	assert.Equal(t, []string{"A", "B", "C"}, resolved)
}

func TestGateway_NotConfiguredSkipsNetwork(t *testing.T) {
	m := &mockCompleter{}
	g := New(Config{Model: "gpt-test"}, 0, 0, testLogger())
	g.Register(ProviderOpenAI, m)

	assert.False(t, g.IsConfigured())

	_, err := g.Request(context.Background(), "hello", RequestOptions{MaxTokens: 10})
	assert.ErrorIs(t, err, ErrNotConfigured)
	m.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGateway_UsesConfigSnapshotPerDispatch(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.MatchedBy(func(c Config) bool { return c.APIKey == "key-1" }), "first",
		mock.MatchedBy(func(o RequestOptions) bool { return o.Model == "model-1" && o.MaxTokens == 2000 })).
		Return(&Completion{Content: "one", Model: "model-1"}, nil).Once()
	m.On("Complete", mock.Anything, mock.MatchedBy(func(c Config) bool { return c.APIKey == "key-2" }), "second",
		mock.MatchedBy(func(o RequestOptions) bool { return o.Model == "override" })).
		Return(&Completion{Content: "two", Model: "override"}, nil).Once()

	g := New(Config{APIKey: "key-1", Model: "model-1"}, 0, 0, testLogger())
	g.Register(ProviderOpenAI, m)
	ctx := context.Background()

	c, err := g.Request(ctx, "first", RequestOptions{MaxTokens: 2000, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "one", c.Content)

	g.Configure(Config{APIKey: "key-2", Model: "model-2"})
	assert.Equal(t, "model-2", g.Config().Model)
	assert.Equal(t, ProviderOpenAI, g.Config().Provider)

	c, err = g.Request(ctx, "second", RequestOptions{Model: "override"})
	require.NoError(t, err)
	assert.Equal(t, "two", c.Content)

	m.AssertExpectations(t)
}

func TestGateway_PropagatesUpstreamErrors(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", mock.Anything, mock.Anything, "boom", mock.Anything).
		Return(nil, &UpstreamError{Status: 429, Message: "Rate limit reached"})
	m.On("Complete", mock.Anything, mock.Anything, "next", mock.Anything).
		Return(&Completion{Content: "fine"}, nil)

	g := newTestGateway(0, m)
	ctx := context.Background()

	_, err := g.Request(ctx, "boom", RequestOptions{})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 429, upstream.Status)
	assert.Equal(t, "Rate limit reached", upstream.Message)

	c, err := g.Request(ctx, "next", RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fine", c.Content)
}

func TestGateway_UnknownProvider(t *testing.T) {
	g := New(Config{APIKey: "k", Provider: "nope"}, 0, 0, testLogger())
	_, err := g.Request(context.Background(), "x", RequestOptions{})
	assert.ErrorContains(t, err, `provider "nope"`)
}

func TestGateway_StatusReflectsQueue(t *testing.T) {
	fake := &fakeCompleter{gate: make(chan struct{})}
	g := newTestGateway(0, fake)
	out := make(chan outcome, 2)
	ctx := context.Background()

	idle := g.Status()
	assert.Equal(t, Status{Configured: true, Provider: ProviderOpenAI, Model: "gpt-test"}, idle)

	submit(ctx, g, "A", out)
	require.Eventually(t, func() bool { return fake.calls() == 1 }, time.Second, 5*time.Millisecond)
	submit(ctx, g, "B", out)
	waitQueued(t, g, 1)

	busy := g.Status()
	assert.True(t, busy.Processing)
	assert.Equal(t, 1, busy.QueueLength)

	close(fake.gate)
	<-out
	<-out
	require.Eventually(t, func() bool { return !g.Status().Processing }, time.Second, 5*time.Millisecond)
}

func TestGateway_AbandonedRequestIsDropped(t *testing.T) {
	fake := &fakeCompleter{gate: make(chan struct{})}
	g := newTestGateway(0, fake)
	out := make(chan outcome, 2)

	submit(context.Background(), g, "A", out)
	require.Eventually(t, func() bool { return fake.calls() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	submit(ctx, g, "B", out)
	waitQueued(t, g, 1)
	cancel()

	res := <-out
	assert.Equal(t, "B", res.prompt)
	assert.True(t, errors.Is(res.err, context.Canceled))

	close(fake.gate)
	res = <-out
	require.NoError(t, res.err)

	require.Eventually(t, func() bool { return !g.Status().Processing }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, fake.calls())
}
