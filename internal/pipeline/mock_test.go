package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/pkg/anthropic"
	"github.com/scopify/benchmark-agent/pkg/tavily"
)

// --- Tavily Mock ---

type mockSearchClient struct {
	mock.Mock
}

func (m *mockSearchClient) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tavily.SearchResponse), args.Error(1)
}

// --- Anthropic Mock ---

type mockGenClient struct {
	mock.Mock
}

func (m *mockGenClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func (m *mockGenClient) StreamMessage(ctx context.Context, req anthropic.MessageRequest, onChunk func(string) error) (string, error) {
	args := m.Called(ctx, req, onChunk)
	return args.String(0), args.Error(1)
}

// --- Instrumented fakes ---

// fakeSearch returns a fixed number of documents per query. URLs are derived
// from the query text unless sharedURL forces cross-query duplicates.
type fakeSearch struct {
	mu           sync.Mutex
	calls        int
	docsPerQuery int
	contentLen   int
	sharedURL    string
	err          error
}

func (f *fakeSearch) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	contentLen := f.contentLen
	if contentLen == 0 {
		contentLen = 400
	}
	content := strings.Repeat("x", contentLen)

	resp := &tavily.SearchResponse{Query: req.Query}
	for i := 0; i < f.docsPerQuery; i++ {
		u := fmt.Sprintf("https://example.com/%x/%d", hashString(req.Query), i)
		if f.sharedURL != "" && i == 0 {
			u = f.sharedURL
		}
		resp.Results = append(resp.Results, tavily.SearchResult{
			Title:   fmt.Sprintf("Result %d for %s", i, req.Query),
			URL:     u,
			Content: content,
			Score:   1.0 - float64(i)*0.1,
		})
	}
	return resp, nil
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h = (h ^ uint32(s[i])) * 16777619
	}
	return h
}

// fakeGenerator serves CreateMessage with canned text per call kind and
// tracks peak in-flight concurrency. Compile prompts are recognized by their
// fixed preamble; everything else is treated as a briefing call.
type fakeGenerator struct {
	mu         sync.Mutex
	inFlight   int
	peak       int
	calls      int
	delay      time.Duration
	briefText  string
	compileTxt string
	createErr  error

	streamText string
	streamErr  error
}

func (f *fakeGenerator) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	text := f.briefText
	if strings.HasPrefix(req.Prompt, "Compile benchmark analysis") {
		text = f.compileTxt
	}
	return &anthropic.MessageResponse{Text: text}, nil
}

func (f *fakeGenerator) StreamMessage(ctx context.Context, req anthropic.MessageRequest, onChunk func(string) error) (string, error) {
	if f.streamErr != nil {
		return "", f.streamErr
	}
	for _, line := range strings.SplitAfter(f.streamText, "\n") {
		if line == "" {
			continue
		}
		if err := onChunk(line); err != nil {
			return "", err
		}
	}
	return f.streamText, nil
}

func (f *fakeGenerator) peakConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peak
}

// recordingPublisher captures every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []broadcast.Event
}

func (r *recordingPublisher) Publish(ev broadcast.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) byStatus(status string) []broadcast.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []broadcast.Event
	for _, ev := range r.events {
		if ev.Status == status {
			out = append(out, ev)
		}
	}
	return out
}
