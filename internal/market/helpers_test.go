package market

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/lotbot/core/telegram/state"
	"github.com/m3rciful/lotbot/internal/domain"
	"github.com/m3rciful/lotbot/internal/storage/memory"
)

const (
	adminID      int64 = 1
	otherAdminID int64 = 2
	userID       int64 = 100
	strangerID   int64 = 200
	channelID    int64 = -100500
	miniAppURL         = "https://example.org/app"
)

type sentMessage struct {
	To    int64
	Text  string
	Photo string
	Opts  SendOptions
}

type recorder struct {
	mu   sync.Mutex
	msgs []sentMessage
}

func (r *recorder) SendText(_ context.Context, to int64, text string, opts ...SendOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sentMessage{To: to, Text: text, Opts: ApplySendOptions(opts...)})
	return nil
}

func (r *recorder) SendPhoto(_ context.Context, to int64, photoID, caption string, opts ...SendOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sentMessage{To: to, Text: caption, Photo: photoID, Opts: ApplySendOptions(opts...)})
	return nil
}

func (r *recorder) to(id int64) []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentMessage
	for _, m := range r.msgs {
		if m.To == id {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) last(t *testing.T, id int64) sentMessage {
	t.Helper()
	msgs := r.to(id)
	require.NotEmpty(t, msgs, "no messages sent to %d", id)
	return msgs[len(msgs)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

type harness struct {
	t       *testing.T
	router  *Router
	lots    *memory.LotStore
	sellers *memory.SellerStore
	states  *state.MemoryStore[Phase]
	out     *recorder
}

type harnessOption func(*Options)

func withIDs(ids ...int64) harnessOption {
	return func(o *Options) {
		var mu sync.Mutex
		o.IDs = func() int64 {
			mu.Lock()
			defer mu.Unlock()
			id := ids[0]
			if len(ids) > 1 {
				ids = ids[1:]
			}
			return id
		}
	}
}

func withLots(repo domain.LotRepository) harnessOption {
	return func(o *Options) { o.Lots = repo }
}

func withSellers(repo domain.SellerRepository) harnessOption {
	return func(o *Options) { o.Sellers = repo }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		lots:    memory.NewLotStore(),
		sellers: memory.NewSellerStore(),
		states:  state.NewMemoryStore[Phase](),
		out:     &recorder{},
	}
	o := Options{
		Lots:            h.lots,
		Sellers:         h.sellers,
		States:          h.states,
		Notifier:        h.out,
		Admins:          NewAdminList(adminID, otherAdminID),
		ChannelID:       channelID,
		MiniAppURL:      miniAppURL,
		ContactUsername: "@market_contact",
		BotUsername:     "lot_bot",
	}
	for _, opt := range opts {
		opt(&o)
	}
	r, err := New(o)
	require.NoError(t, err)
	h.router = r
	return h
}

func (h *harness) text(from int64, text string) error {
	return h.router.Dispatch(context.Background(), NewTextEvent(from, from, text))
}

func (h *harness) say(from int64, text string) {
	h.t.Helper()
	require.NoError(h.t, h.text(from, text))
}

func (h *harness) photo(from int64, fileID string) {
	h.t.Helper()
	require.NoError(h.t, h.router.Dispatch(context.Background(), NewPhotoEvent(from, from, fileID, "")))
}

func (h *harness) phase(userID int64) Phase {
	h.t.Helper()
	p, ok, err := h.states.Get(context.Background(), userID)
	require.NoError(h.t, err)
	if !ok {
		return nil
	}
	return p
}

func (h *harness) seedSeller(app domain.SellerApplication) {
	h.t.Helper()
	require.NoError(h.t, h.sellers.Insert(context.Background(), app))
}

func (h *harness) seedLot(lot domain.Lot) {
	h.t.Helper()
	require.NoError(h.t, h.lots.Insert(context.Background(), lot))
}

func (h *harness) approvedSeller(id int64) {
	h.seedSeller(domain.SellerApplication{UserID: id, Phone: "1", Email: "e", Name: "n", Status: domain.SellerApproved})
}
