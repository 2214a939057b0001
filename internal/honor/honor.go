package honor

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"campaign-server/internal/shared/errors"
)

// DefaultMinPool is the smallest number of matching threads a draw accepts.
const DefaultMinPool = 3

// MaxKeywords is how many keywords one draw may combine.
const MaxKeywords = 6

const (
	CodeNotEnoughHonors errors.Code = "not_enough_honors"
	CodeInvalidKeywords errors.Code = "invalid_keywords"
)

var (
	ErrNotEnoughHonors = errors.New(errors.ErrorTypeNotFound, CodeNotEnoughHonors, "not enough honors match the keywords")
	ErrInvalidKeywords = errors.New(errors.ErrorTypeValidation, CodeInvalidKeywords, "between one and six keywords are required")
)

// MatchMode decides when a thread's tags satisfy the requested keywords.
type MatchMode string

const (
	// MatchSubset accepts a thread when every one of its tags is among the
	// keywords. Untagged threads never match.
	MatchSubset MatchMode = "subset"
	// MatchAny accepts a thread carrying at least one of the keywords.
	MatchAny MatchMode = "any"
)

// Thread is a tagged discussion thread supplied by the chat platform.
type Thread struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	URL   string   `json:"url,omitempty"`
	Tags  []string `json:"tags"`
}

type Result struct {
	Thread   Thread   `json:"thread"`
	PoolSize int      `json:"pool_size"`
	Keywords []string `json:"keywords"`
}

// Matches reports whether the thread qualifies for the keywords. Tag
// comparison ignores case.
func Matches(t Thread, keywords []string, mode MatchMode) bool {
	if len(t.Tags) == 0 {
		return false
	}
	wanted := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		wanted[strings.ToLower(k)] = true
	}

	if mode == MatchAny {
		for _, tag := range t.Tags {
			if wanted[strings.ToLower(tag)] {
				return true
			}
		}
		return false
	}

	for _, tag := range t.Tags {
		if !wanted[strings.ToLower(tag)] {
			return false
		}
	}
	return true
}

func Filter(threads []Thread, keywords []string, mode MatchMode) []Thread {
	var matched []Thread
	for _, t := range threads {
		if Matches(t, keywords, mode) {
			matched = append(matched, t)
		}
	}
	return matched
}

// CollectTags merges tag lists into the sorted, de-duplicated keyword
// catalogue.
func CollectTags(tagSets ...[]string) []string {
	var tags []string
	for _, set := range tagSets {
		for _, tag := range set {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// Drawer picks one random honor among the matching threads.
type Drawer struct {
	mu      sync.Mutex
	rng     *rand.Rand
	mode    MatchMode
	minPool int
	logger  *slog.Logger
}

// NewDrawer creates a drawer. A nil source seeds from the runtime's random
// generator.
func NewDrawer(mode MatchMode, minPool int, src rand.Source, logger *slog.Logger) *Drawer {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	if mode != MatchAny {
		mode = MatchSubset
	}
	if minPool < 1 {
		minPool = DefaultMinPool
	}
	return &Drawer{
		rng:     rand.New(src),
		mode:    mode,
		minPool: minPool,
		logger:  logger,
	}
}

func (d *Drawer) Mode() MatchMode {
	return d.mode
}

func (d *Drawer) Draw(keywords []string, threads []Thread) (*Result, error) {
	logger := d.logger.With("component", "honor_drawer", "operation", "draw", "mode", d.mode)

	keywords = CollectTags(keywords)
	if len(keywords) == 0 || len(keywords) > MaxKeywords {
		return nil, errors.Newf(ErrInvalidKeywords.Type, CodeInvalidKeywords,
			"between 1 and %d keywords are required, got %d", MaxKeywords, len(keywords))
	}

	pool := Filter(threads, keywords, d.mode)
	if len(pool) < d.minPool {
		logger.Debug("Honor pool too small", "pool_size", len(pool), "min_pool", d.minPool)
		return nil, errors.Newf(ErrNotEnoughHonors.Type, CodeNotEnoughHonors,
			"only %d honors match, at least %d are required", len(pool), d.minPool)
	}

	d.mu.Lock()
	chosen := pool[d.rng.IntN(len(pool))]
	d.mu.Unlock()

	logger.Info("Honor drawn", "thread_id", chosen.ID, "pool_size", len(pool))
	return &Result{Thread: chosen, PoolSize: len(pool), Keywords: keywords}, nil
}
