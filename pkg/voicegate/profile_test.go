package voicegate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/echoos/voicegate/pkg/feature"
	"github.com/echoos/voicegate/pkg/kv"
	"github.com/echoos/voicegate/pkg/voicegate"
)

func newProfileStore(clk *fakeClock, store kv.Store) *voicegate.ProfileStore {
	return voicegate.NewProfileStore(context.Background(), store, clk.Now)
}

func TestProfileRegisterAndGet(t *testing.T) {
	clk := newFakeClock()
	ps := newProfileStore(clk, kv.NewMemory())
	ctx := context.Background()

	samples := []feature.Vector{ones(256), ones(144), ones(100)}
	if err := ps.Register(ctx, "alice", samples); err != nil {
		t.Fatalf("Register: %v", err)
	}

	p, ok := ps.Get("alice")
	if !ok {
		t.Fatal("Get(alice) missing after Register")
	}
	if len(p.Embeddings) != 3 {
		t.Fatalf("Embeddings = %d, want 3", len(p.Embeddings))
	}
	if p.Family() != feature.FamilyEmbedding {
		t.Fatalf("Family = %v, want %v", p.Family(), feature.FamilyEmbedding)
	}
	if !p.CreatedAt.Equal(clk.Now()) {
		t.Fatalf("CreatedAt = %v, want %v", p.CreatedAt, clk.Now())
	}
}

func TestProfileRegisterDiscardsInvalidSamples(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	// Two usable vectors plus junk: registration succeeds with two.
	samples := []feature.Vector{
		ones(256),
		{}, // empty
		{Family: feature.FamilyEmbedding, Values: make([]float32, 7)}, // wrong length
		ones(144),
	}
	if err := ps.Register(ctx, "alice", samples); err != nil {
		t.Fatalf("Register: %v", err)
	}
	p, _ := ps.Get("alice")
	if len(p.Embeddings) != 2 {
		t.Fatalf("Embeddings = %d, want 2 (invalid samples kept)", len(p.Embeddings))
	}
}

func TestProfileRegisterNotEnoughSamples(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	err := ps.Register(ctx, "alice", []feature.Vector{ones(256)})
	if !errors.Is(err, voicegate.ErrNotEnoughSamples) {
		t.Fatalf("Register with one sample: err = %v, want ErrNotEnoughSamples", err)
	}
	if _, ok := ps.Get("alice"); ok {
		t.Fatal("partial profile persisted after failed registration")
	}
}

func TestProfileRegisterRejectsDuplicate(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)})
	if !errors.Is(err, voicegate.ErrUserExists) {
		t.Fatalf("duplicate Register: err = %v, want ErrUserExists", err)
	}
}

func TestProfileRegisterRejectsMixedFamilies(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	spectralVec := feature.Vector{Family: feature.FamilySpectral, Values: make([]float32, feature.SpectralDim)}
	spectralVec.Values[0] = 1
	err := ps.Register(ctx, "alice", []feature.Vector{ones(256), spectralVec})
	if !errors.Is(err, voicegate.ErrMixedFamilies) {
		t.Fatalf("mixed-family Register: err = %v, want ErrMixedFamilies", err)
	}
}

func TestProfileRegisterRejectsInvalidUsername(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	for _, name := range []string{"", "has\x1fseparator"} {
		err := ps.Register(ctx, name, []feature.Vector{ones(256), ones(144)})
		if !errors.Is(err, voicegate.ErrInvalidUsername) {
			t.Fatalf("Register(%q): err = %v, want ErrInvalidUsername", name, err)
		}
	}
}

func TestProfileRemove(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	if ps.Remove(ctx, "ghost") {
		t.Fatal("Remove of unknown user reported true")
	}
	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !ps.Remove(ctx, "alice") {
		t.Fatal("Remove of existing user reported false")
	}
	if _, ok := ps.Get("alice"); ok {
		t.Fatal("profile still present after Remove")
	}
	if !ps.Empty() {
		t.Fatal("store not empty after removing the only profile")
	}
}

func TestProfileListOrder(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		if err := ps.Register(ctx, name, []feature.Vector{ones(256), ones(144)}); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	got := ps.List()
	want := []string{"carol", "alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List = %v, want %v (enrollment order)", got, want)
		}
	}
}

func TestProfileTouchLastUsed(t *testing.T) {
	clk := newFakeClock()
	ps := newProfileStore(clk, kv.NewMemory())
	ctx := context.Background()

	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	created := clk.Now()
	clk.Advance(time.Hour)
	ps.TouchLastUsed(ctx, "alice")

	p, _ := ps.Get("alice")
	if !p.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt moved to %v", p.CreatedAt)
	}
	if !p.LastUsedAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("LastUsedAt = %v, want %v", p.LastUsedAt, created.Add(time.Hour))
	}
}

func TestProfilePersistenceReload(t *testing.T) {
	clk := newFakeClock()
	store := kv.NewMemory()
	ctx := context.Background()

	ps := newProfileStore(clk, store)
	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	reloaded := newProfileStore(clk, store)
	p, ok := reloaded.Get("alice")
	if !ok {
		t.Fatal("profile not reloaded from the store")
	}
	if len(p.Embeddings) != 2 {
		t.Fatalf("reloaded Embeddings = %d, want 2", len(p.Embeddings))
	}
	if p.Family() != feature.FamilyEmbedding {
		t.Fatalf("reloaded Family = %v, want %v", p.Family(), feature.FamilyEmbedding)
	}
	if p.Embeddings[0].Values[0] != 1 {
		t.Fatal("reloaded embedding values corrupted")
	}
}

func TestProfileCorruptRecordSkipped(t *testing.T) {
	clk := newFakeClock()
	store := kv.NewMemory()
	ctx := context.Background()

	ps := newProfileStore(clk, store)
	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.Set(ctx, kv.Key{"vp", "profile", "mallory"}, []byte("\xc1 not msgpack")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reloaded := newProfileStore(clk, store)
	if _, ok := reloaded.Get("alice"); !ok {
		t.Fatal("healthy profile lost to a corrupt neighbor")
	}
	if _, ok := reloaded.Get("mallory"); ok {
		t.Fatal("corrupt record surfaced as a profile")
	}
}

func TestProfileFlushFailureDoesNotBlockOperations(t *testing.T) {
	clk := newFakeClock()
	ps := voicegate.NewProfileStore(context.Background(), newFaultyStore(), clk.Now)
	ctx := context.Background()

	// Every store write fails; the operations still succeed in memory.
	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register with failing store: %v", err)
	}
	if _, ok := ps.Get("alice"); !ok {
		t.Fatal("profile missing despite successful Register")
	}

	clk.Advance(time.Minute)
	ps.TouchLastUsed(ctx, "alice")
	p, _ := ps.Get("alice")
	if !p.LastUsedAt.Equal(clk.Now()) {
		t.Fatalf("LastUsedAt = %v, want %v", p.LastUsedAt, clk.Now())
	}

	if !ps.Remove(ctx, "alice") {
		t.Fatal("Remove with failing store reported false")
	}
	if !ps.Empty() {
		t.Fatal("profile survived Remove")
	}
}

func TestProfileHasSpectral(t *testing.T) {
	ps := newProfileStore(newFakeClock(), kv.NewMemory())
	ctx := context.Background()

	if ps.HasSpectral() {
		t.Fatal("HasSpectral true on empty store")
	}
	if err := ps.Register(ctx, "alice", []feature.Vector{ones(256), ones(144)}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ps.HasSpectral() {
		t.Fatal("HasSpectral true with only embedding profiles")
	}

	sv := func() feature.Vector {
		v := feature.Vector{Family: feature.FamilySpectral, Values: make([]float32, feature.SpectralDim)}
		v.Values[0] = 1
		return v
	}
	if err := ps.Register(ctx, "legacy", []feature.Vector{sv(), sv()}); err != nil {
		t.Fatalf("Register(legacy): %v", err)
	}
	if !ps.HasSpectral() {
		t.Fatal("HasSpectral false with a spectral profile present")
	}
}
