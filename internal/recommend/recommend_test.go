package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/bookrec/internal/catalog"
	apperrors "github.com/edgard/bookrec/internal/errors"
	"github.com/edgard/bookrec/internal/llm"
	"github.com/edgard/bookrec/internal/logger"
	"github.com/edgard/bookrec/internal/metrics"
	"github.com/edgard/bookrec/internal/prompt"
	"github.com/edgard/bookrec/internal/ranking"
	"github.com/edgard/bookrec/internal/recommend"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
	opts    []llm.Options
}

func (f *fakeGenerator) Generate(_ context.Context, p string, opts llm.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, p)
	f.opts = append(f.opts, opts)
	return f.reply, f.err
}

func (f *fakeGenerator) Ping(context.Context) error { return nil }

func (f *fakeGenerator) Name() string { return "fake/model" }

type fakeFetcher struct {
	entries []catalog.Entry
	err     error
	calls   int
	genre   string
	max     int
}

func (f *fakeFetcher) Fetch(_ context.Context, genre string, maxResults int) ([]catalog.Entry, error) {
	f.calls++
	f.genre = genre
	f.max = maxResults
	return f.entries, f.err
}

func ptr[T any](v T) *T { return &v }

func book(title string, rating float64, count int) catalog.Entry {
	return catalog.Entry{Title: title, AverageRating: ptr(rating), RatingsCount: ptr(count)}
}

func newEngine(gen llm.Generator) *recommend.Engine {
	return recommend.NewEngine(gen, recommend.EngineConfig{MaxTokens: 300}, metrics.New(), logger.Discard())
}

func TestExtractClaim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"after cue", "list\n\nRecommendation: Good Omens\nMore text", "Good Omens"},
		{"first cue wins", "Recommendation: A\nRecommendation: B", "A"},
		{"no cue", "  Dune  \nOther", "Dune"},
		{"empty after cue", "Recommendation:\nDune", ""},
		{"crlf", "Recommendation: Emma\r\nx", "Emma"},
		{"nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, recommend.ExtractClaim(tt.text))
		})
	}
}

func TestStripControlMarkers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " Dune", recommend.StripControlMarkers("<s> Dune<|endoftext|></s><pad>"))
	assert.Equal(t, "a <b>bold</b>", recommend.StripControlMarkers("a <b>bold</b><unk>"))
}

func TestResolve(t *testing.T) {
	t.Parallel()

	shortlist := ranking.Shortlist{
		{Title: "The Hound of the Baskervilles"},
		{Title: "Good Omens"},
		{Title: "Good Omens: The Graphic Novel"},
	}

	tests := []struct {
		name    string
		claim   string
		wantIdx int
		matched bool
	}{
		{"exact", "Good Omens", 1, true},
		{"case insensitive", "GOOD OMENS", 1, true},
		{"substring", "hound", 0, true},
		{"first substring match wins", "omens", 1, true},
		{"hallucinated", "War and Peace", 0, false},
		{"empty claim matches first", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, idx, matched := recommend.Resolve(shortlist, tt.claim)
			assert.Equal(t, tt.wantIdx, idx)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, shortlist[tt.wantIdx], got)
		})
	}
}

func TestEngine_EmptyShortlistSkipsModel(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: " anything"}
	_, err := newEngine(gen).Recommend(context.Background(), ranking.Rank(nil), "short")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyShortlist)
	assert.Equal(t, 0, gen.calls)
}

func TestEngine_ExactMatchReturnsThatEntry(t *testing.T) {
	t.Parallel()

	shortlist := ranking.Shortlist{book("Dune", 4.9, 10), book("Emma", 4.5, 10), book("Ulysses", 4.0, 10)}
	for k, entry := range shortlist {
		gen := &fakeGenerator{reply: " " + entry.Title + "\n2. something else"}
		got, err := newEngine(gen).Recommend(context.Background(), shortlist, "anything")
		require.NoError(t, err)
		assert.Equal(t, shortlist[k].Title, got.Title)
	}
}

func TestEngine_PromptAndTokenCap(t *testing.T) {
	t.Parallel()

	shortlist := ranking.Shortlist{{Title: "Dune", Authors: []string{"Frank Herbert"}}}
	gen := &fakeGenerator{reply: " Dune"}
	_, err := newEngine(gen).Recommend(context.Background(), shortlist, "sand")
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, prompt.Build(shortlist, "sand"), gen.prompts[0])
	assert.Equal(t, 300, gen.opts[0].MaxTokens)
}

func TestEngine_FallbackToTopEntry(t *testing.T) {
	t.Parallel()

	shortlist := ranking.Shortlist{book("Dune", 4.9, 10), book("Emma", 4.5, 10)}
	for _, reply := range []string{" The Silmarillion", "<|endoftext|>", "\n\n\n", " ???"} {
		gen := &fakeGenerator{reply: reply}
		got, err := newEngine(gen).Recommend(context.Background(), shortlist, "anything")
		require.NoError(t, err, reply)
		assert.Equal(t, "Dune", got.Title, reply)
	}
}

func TestEngine_GeneratorErrorIsGenerationFailed(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("model exploded")}
	_, err := newEngine(gen).Recommend(context.Background(), ranking.Shortlist{book("Dune", 1, 1)}, "x")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationFailed, apperrors.Code(err))
	assert.Contains(t, err.Error(), "model exploded")
}

func TestEngine_CancelledWhileWaitingForModel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &fakeGenerator{reply: " Dune"}
	_, err := newEngine(gen).Recommend(ctx, ranking.Shortlist{book("Dune", 1, 1)}, "x")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGenerationFailed, apperrors.Code(err))
	assert.Equal(t, 0, gen.calls)
}

func TestEngine_ResultIsAlwaysAShortlistMember(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	words := []string{"dune", "emma", "omens", "the", "", "zzz", "Recommendation:", "\n"}

	for range 200 {
		n := 1 + rng.IntN(10)
		shortlist := make(ranking.Shortlist, n)
		for i := range shortlist {
			shortlist[i] = catalog.Entry{ID: fmt.Sprintf("id-%d", i), Title: words[rng.IntN(len(words))] + fmt.Sprint(i)}
		}
		reply := words[rng.IntN(len(words))] + words[rng.IntN(len(words))]

		got, err := newEngine(&fakeGenerator{reply: reply}).Recommend(context.Background(), shortlist, "p")
		require.NoError(t, err)
		assert.Contains(t, shortlist, got)
	}
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req, err := recommend.NewRequest("  mystery ", "short and funny")
	require.NoError(t, err)
	assert.Equal(t, recommend.Request{Genre: "mystery", Preferences: "short and funny"}, req)

	for _, tt := range []struct{ genre, prefs, field string }{
		{"", "x", "genre"},
		{"x", "", "preferences"},
		{"   ", "\t", "genre, preferences"},
	} {
		_, err := recommend.NewRequest(tt.genre, tt.prefs)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), tt.field)
	}
}

func TestPipeline_MysteryScenario(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{entries: []catalog.Entry{
		book("Popular Mystery", 4.5, 120),
		book("Acclaimed Mystery", 4.8, 10),
	}}
	gen := &fakeGenerator{reply: " Nothing on the list\n"}
	p := recommend.NewPipeline(fetcher, newEngine(gen), 40, nil, logger.Discard())

	rec, err := p.Recommend(context.Background(), recommend.Request{Genre: "mystery", Preferences: "short and funny"})
	require.NoError(t, err)

	assert.Equal(t, "mystery", fetcher.genre)
	assert.Equal(t, 40, fetcher.max)
	// Rating dominates count, so the fallback is the 4.8 entry.
	assert.Equal(t, "Acclaimed Mystery", rec.Book.Title)
	assert.Equal(t, recommend.ThankYouMessage, rec.Message)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "1. Acclaimed Mystery by \n2. Popular Mystery by \n")
}

func TestPipeline_UpstreamFailureSkipsModel(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: apperrors.NewUpstreamUnavailableError("error fetching books from API", &catalog.StatusError{StatusCode: 403, Status: "403 Forbidden"})}
	gen := &fakeGenerator{reply: " Dune"}
	m := metrics.New()
	p := recommend.NewPipeline(fetcher, newEngine(gen), 40, m, logger.Discard())

	_, err := p.Recommend(context.Background(), recommend.Request{Genre: "mystery", Preferences: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	assert.Equal(t, 0, gen.calls)
}

func TestPipeline_EmptyCatalog(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	gen := &fakeGenerator{reply: " Dune"}
	p := recommend.NewPipeline(fetcher, newEngine(gen), 40, nil, logger.Discard())

	_, err := p.Recommend(context.Background(), recommend.Request{Genre: "nothing", Preferences: "x"})
	assert.ErrorIs(t, err, apperrors.ErrEmptyShortlist)
	assert.Equal(t, 0, gen.calls)
}

func TestPipeline_InvalidRequestSkipsCatalog(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{entries: []catalog.Entry{book("Dune", 1, 1)}}
	p := recommend.NewPipeline(fetcher, newEngine(&fakeGenerator{}), 40, nil, logger.Discard())

	_, err := p.Recommend(context.Background(), recommend.Request{Genre: "", Preferences: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 0, fetcher.calls)
}
