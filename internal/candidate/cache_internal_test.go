package candidate

import (
	"reflect"
	"testing"
)

func TestIndexCacheRoundTrip(t *testing.T) {
	cache := IndexCache{Dir: t.TempDir()}
	key := IndexKey{
		Config:   ProducerConfig{Root: "/src/project", ExcludeTests: true, Excludes: []string{"gen/**"}},
		Grammars: []string{"Python\x00aa", "Go\x00bb"},
	}
	cands := makeFixtureCandidates(20)

	if _, ok, err := cache.Load(key); err != nil || ok {
		t.Fatalf("Load before save = ok %v, err %v", ok, err)
	}
	if err := cache.Save(key, cands); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := cache.Load(key)
	if err != nil || !ok {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
	if !reflect.DeepEqual(got, cands) {
		t.Fatalf("loaded candidates differ")
	}

	// grammar order does not matter
	key.Grammars = []string{"Go\x00bb", "Python\x00aa"}
	if _, ok, _ := cache.Load(key); !ok {
		t.Fatalf("expected a hit with reordered grammars")
	}
}

func TestIndexCacheMisses(t *testing.T) {
	cache := IndexCache{Dir: t.TempDir()}
	key := IndexKey{Config: ProducerConfig{Root: "/src/project"}, Grammars: []string{"Go\x00bb"}}
	if err := cache.Save(key, makeFixtureCandidates(3)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	changed := []IndexKey{
		{Config: ProducerConfig{Root: "/src/project"}, Grammars: []string{"Go\x00cc"}},
		{Config: ProducerConfig{Root: "/src/project", ExcludeTests: true}, Grammars: []string{"Go\x00bb"}},
		{Config: ProducerConfig{Root: "/src/project", Excludes: []string{"x"}}, Grammars: []string{"Go\x00bb"}},
	}
	for i, k := range changed {
		if _, ok, err := cache.Load(k); err != nil || ok {
			t.Fatalf("case %d: Load = ok %v, err %v", i, ok, err)
		}
	}
}
