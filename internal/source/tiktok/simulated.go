package tiktok

import (
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"premise_fetcher/internal/domain"
)

// SimulatedLister generates synthetic videos for a profile. Output is a pure
// function of the handle and the current day, so ids and links are stable
// across runs and re-ingesting a profile inserts nothing new. Every item is
// flagged Synthetic.
type SimulatedLister struct {
	now func() time.Time
}

func NewSimulatedLister() *SimulatedLister {
	return &SimulatedLister{now: time.Now}
}

func (l *SimulatedLister) List(ctx context.Context, handle, sort string, limit int) ([]domain.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(handle)))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	today := l.now().UTC().Truncate(24 * time.Hour)
	items := make([]domain.RawItem, 0, limit)
	for i := range limit {
		id := strconv.FormatUint(7_000_000_000_000_000_000+rng.Uint64N(1_000_000_000_000_000_000), 10)
		likes := 100 + rng.Int64N(10_000)
		comments := 10 + rng.Int64N(1_000)
		age := rng.IntN(30)

		items = append(items, domain.RawItem{
			ExternalID: id,
			Link:       fmt.Sprintf("%s/video/%s", profileURL(canonicalBase, handle), id),
			Body: fmt.Sprintf("Vídeo #%d do perfil @%s. Conteúdo simulado, gerado sem acesso ao TikTok.",
				i+1, handle),
			Author:      handle,
			PublishedAt: today.AddDate(0, 0, -age),
			Likes:       likes,
			Comments:    comments,
			Synthetic:   true,
		})
	}

	switch sort {
	case sortLikes:
		slices.SortStableFunc(items, func(a, b domain.RawItem) int { return cmp.Compare(b.Likes, a.Likes) })
	case sortDate:
		slices.SortStableFunc(items, func(a, b domain.RawItem) int { return b.PublishedAt.Compare(a.PublishedAt) })
	}

	return items, nil
}
