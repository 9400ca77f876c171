package selector

import (
	"reflect"
	"testing"

	"github.com/minios-linux/mmdl10n/koji"
)

func TestReleaseKey(t *testing.T) {
	cases := map[string]string{
		"20180816151613.b8d7a6c0": "20180816151613",
		"1.0.2":                   "1.0",
		"nodots":                  "nodots",
		"":                        "",
	}
	for in, want := range cases {
		if got := ReleaseKey(in); got != want {
			t.Fatalf("ReleaseKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSelectLatestPicksHighestRelease(t *testing.T) {
	builds := []koji.Build{
		{ID: 1, Name: "m", Stream: "s", Release: "1.1.c1"},
		{ID: 2, Name: "m", Stream: "s", Release: "2.1.c1"},
		{ID: 3, Name: "m", Stream: "s", Release: "1.2.c1"},
	}
	got := SelectLatest(builds)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("SelectLatest = %#v, want only build 2", got)
	}
}

func TestSelectLatestKeepsAllContexts(t *testing.T) {
	builds := []koji.Build{
		{ID: 1, Name: "nodejs", Stream: "10", Release: "100.aaa"},
		{ID: 2, Name: "nodejs", Stream: "10", Release: "200.aaa"},
		{ID: 3, Name: "nodejs", Stream: "10", Release: "200.bbb"},
		{ID: 4, Name: "nodejs", Stream: "12", Release: "50.aaa"},
		{ID: 5, Name: "perl", Stream: "5.26", Release: "1.ccc"},
	}
	got := SelectLatest(builds)

	var ids []int
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	if want := []int{2, 3, 4, 5}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("SelectLatest ids = %v, want %v", ids, want)
	}
}

func TestSelectLatestEndToEndScenario(t *testing.T) {
	builds := []koji.Build{
		{ID: 10, Name: "foo", Stream: "s1", Release: "1.0.1"},
		{ID: 11, Name: "foo", Stream: "s1", Release: "1.0.2"},
	}
	// Both trim to "1.0": both contexts of the same version survive.
	got := SelectLatest(builds)
	if len(got) != 2 {
		t.Fatalf("SelectLatest = %#v, want both builds of version 1.0", got)
	}

	builds = []koji.Build{
		{ID: 10, Name: "foo", Stream: "s1", Release: "1.0.1.ctx"},
		{ID: 11, Name: "foo", Stream: "s1", Release: "1.0.2.ctx"},
	}
	got = SelectLatest(builds)
	if len(got) != 1 || got[0].Release != "1.0.2.ctx" {
		t.Fatalf("SelectLatest = %#v, want release 1.0.2", got)
	}
}

func TestSelectLatestEmptyAndIdempotent(t *testing.T) {
	if got := SelectLatest(nil); got == nil || len(got) != 0 {
		t.Fatalf("SelectLatest(nil) = %#v, want empty slice", got)
	}

	reduced := []koji.Build{
		{ID: 1, Name: "a", Stream: "1", Release: "5.x"},
		{ID: 2, Name: "b", Stream: "1", Release: "7.y"},
	}
	once := SelectLatest(reduced)
	twice := SelectLatest(once)
	if !reflect.DeepEqual(once, reduced) || !reflect.DeepEqual(twice, once) {
		t.Fatalf("SelectLatest not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestSelectLatestStableOrder(t *testing.T) {
	builds := []koji.Build{
		{ID: 3, Name: "z", Stream: "1", Release: "1.a"},
		{ID: 1, Name: "a", Stream: "2", Release: "1.a"},
		{ID: 2, Name: "a", Stream: "1", Release: "1.a"},
	}
	first := SelectLatest(builds)
	for i := 0; i < 5; i++ {
		if got := SelectLatest(builds); !reflect.DeepEqual(got, first) {
			t.Fatalf("SelectLatest not stable: %v vs %v", got, first)
		}
	}
	if first[0].ID != 2 || first[1].ID != 1 || first[2].ID != 3 {
		t.Fatalf("unexpected order: %v", first)
	}
}
