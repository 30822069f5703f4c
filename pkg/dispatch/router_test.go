package dispatch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/botarmy/switchboard/pkg/dispatch"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type orderedHandler struct {
	mu   sync.Mutex
	seen map[string][]string
	busy map[string]bool
	race bool
}

func (h *orderedHandler) Dispatch(_ context.Context, u domain.Update) (domain.Result, error) {
	h.mu.Lock()
	if h.busy[u.Party] {
		h.race = true
	}
	h.busy[u.Party] = true
	h.mu.Unlock()

	time.Sleep(time.Millisecond)

	h.mu.Lock()
	h.seen[u.Party] = append(h.seen[u.Party], u.Text)
	h.busy[u.Party] = false
	h.mu.Unlock()
	return domain.Result{Handled: true}, nil
}

func TestRouter_PerPartyOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &orderedHandler{seen: map[string][]string{}, busy: map[string]bool{}}
	r := dispatch.NewRouter(h)
	ctx := context.Background()

	parties := []string{"a", "b", "c"}
	const perParty = 20
	for i := 0; i < perParty; i++ {
		for _, p := range parties {
			require.NoError(t, r.Route(ctx, domain.Update{Party: p, Text: fmt.Sprint(i)}))
		}
	}
	require.NoError(t, r.Close(ctx))

	assert.False(t, h.race, "a party must never be handled concurrently")
	for _, p := range parties {
		require.Len(t, h.seen[p], perParty)
		for i, text := range h.seen[p] {
			assert.Equal(t, fmt.Sprint(i), text)
		}
	}
}

func TestRouter_RejectsAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := dispatch.NewRouter(&orderedHandler{seen: map[string][]string{}, busy: map[string]bool{}})
	require.NoError(t, r.Close(context.Background()))
	assert.ErrorIs(t, r.Route(context.Background(), domain.Update{Party: "a"}), dispatch.ErrRouterClosed)
}

func TestRouter_WorkSurvivesCallerCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := &orderedHandler{seen: map[string][]string{}, busy: map[string]bool{}}
	r := dispatch.NewRouter(h)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Route(ctx, domain.Update{Party: "a", Text: "x"}))
	cancel()

	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, []string{"x"}, h.seen["a"])
}
