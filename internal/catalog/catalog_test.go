package catalog

import (
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
)

func vr(low, high int) *music.VocalRange {
	return &music.VocalRange{Low: low, High: high}
}

func titles(songs []models.Song) []string {
	out := make([]string, len(songs))
	for i, s := range songs {
		out[i] = s.Title
	}
	return out
}

func fixture() []models.Song {
	return []models.Song{
		{ID: "1", Title: "Wonderwall", Artist: "Oasis", Key: music.FSharp, Language: "en", Capo: 2, Range: vr(2, 14),
			DateAdded: models.DateAdded{Month: 5, Year: 2020}, Songbooks: []string{"campfire"}},
		{ID: "2", Title: "Bílá orchidej", Artist: "Olympic", Key: music.A, Language: "cs",
			DateAdded: models.DateAdded{Month: 1, Year: 2021}, Songbooks: []string{"czech", "rock"}},
		{ID: "3", Title: "Hallelujah", Artist: "Leonard Cohen", Key: music.C, Language: "en", Capo: 0, Range: vr(0, 12),
			DateAdded: models.DateAdded{Month: 12, Year: 2019}, Songbooks: []string{"campfire", "classics"}},
		{ID: "4", Title: "Holubí dům", Artist: "Jiří Schelinger", Key: music.G, Language: "cs", Capo: 5, Range: vr(5, 9),
			DateAdded: models.DateAdded{Month: 5, Year: 2020}},
		{ID: "5", Title: "Untitled", Artist: "Anon", Key: music.D, Range: vr(0, 20)},
	}
}

func TestCompute(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		agg := Compute(nil)
		if agg.MaxRangeSemitones != nil {
			t.Errorf("expected absent max range, got %d", *agg.MaxRangeSemitones)
		}
		if len(agg.Songbooks) != 0 || len(agg.LanguageCounts) != 0 {
			t.Errorf("expected empty songbooks and languages, got %v %v", agg.Songbooks, agg.LanguageCounts)
		}
	})

	t.Run("no ranged songs", func(t *testing.T) {
		agg := Compute([]models.Song{{Title: "a", Language: "en"}})
		if agg.MaxRangeSemitones != nil {
			t.Errorf("expected absent max range, got %d", *agg.MaxRangeSemitones)
		}
	})

	t.Run("zero width range is present", func(t *testing.T) {
		agg := Compute([]models.Song{{Title: "a", Range: vr(4, 4)}})
		if agg.MaxRangeSemitones == nil || *agg.MaxRangeSemitones != 0 {
			t.Errorf("expected max range 0, got %v", agg.MaxRangeSemitones)
		}
	})

	t.Run("empty language excluded", func(t *testing.T) {
		agg := Compute([]models.Song{{Language: "cs"}, {Language: "cs"}, {Language: ""}})
		if len(agg.LanguageCounts) != 1 || agg.LanguageCounts["cs"] != 2 {
			t.Errorf("expected {cs: 2}, got %v", agg.LanguageCounts)
		}
	})

	t.Run("fixture", func(t *testing.T) {
		agg := Compute(fixture())
		if agg.MaxRangeSemitones == nil || *agg.MaxRangeSemitones != 20 {
			t.Errorf("expected max range 20, got %v", agg.MaxRangeSemitones)
		}
		if !slices.Equal(agg.Songbooks, []string{"campfire", "classics", "czech", "rock"}) {
			t.Errorf("unexpected songbooks %v", agg.Songbooks)
		}
		if agg.LanguageCounts["en"] != 2 || agg.LanguageCounts["cs"] != 2 || len(agg.LanguageCounts) != 2 {
			t.Errorf("unexpected language counts %v", agg.LanguageCounts)
		}
		if agg.Total != 5 {
			t.Errorf("expected total 5, got %d", agg.Total)
		}
	})

	t.Run("order independent", func(t *testing.T) {
		songs := fixture()
		want := Compute(songs)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			rng.Shuffle(len(songs), func(a, b int) { songs[a], songs[b] = songs[b], songs[a] })
			if got := Compute(songs); !got.Equal(want) {
				t.Fatalf("aggregate changed after shuffle: %+v vs %+v", got, want)
			}
		}
	})

	t.Run("Languages", func(t *testing.T) {
		agg := Compute([]models.Song{{Language: "sk"}, {Language: "en"}, {Language: "cs"}, {Language: "cs"}})
		if got := agg.Languages(); !slices.Equal(got, []string{"cs", "en", "sk"}) {
			t.Errorf("Languages() = %v", got)
		}
	})
}

func TestFilter(t *testing.T) {
	songs := fixture()

	tc := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{name: "identity", spec: DefaultFilter(), want: titles(songs)},
		{name: "zero value is identity", spec: FilterSpec{}, want: titles(songs)},
		{name: "language", spec: FilterSpec{Language: "cs"}, want: []string{"Bílá orchidej", "Holubí dům"}},
		{name: "language is exact", spec: FilterSpec{Language: "CS"}, want: []string{}},
		{name: "capo required", spec: FilterSpec{CapoRequired: true}, want: []string{"Wonderwall", "Holubí dům"}},
		{name: "range containment", spec: FilterSpec{Range: vr(0, 12)}, want: []string{"Hallelujah", "Holubí dům"}},
		{name: "range overlap is not enough", spec: FilterSpec{Range: vr(3, 13)}, want: []string{"Holubí dům"}},
		{name: "wide window", spec: FilterSpec{Range: vr(0, 30)}, want: []string{"Wonderwall", "Hallelujah", "Holubí dům", "Untitled"}},
		{name: "combined", spec: FilterSpec{Language: "en", CapoRequired: true, Range: vr(0, 20)}, want: []string{"Wonderwall"}},
		{name: "songbook", spec: FilterSpec{Songbook: "campfire"}, want: []string{"Wonderwall", "Hallelujah"}},
		{name: "query", spec: FilterSpec{Query: "cohen"}, want: []string{"Hallelujah"}},
		{name: "query keeps input order", spec: FilterSpec{Query: "hu"}, want: []string{"Hallelujah", "Holubí dům"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Filter(songs, tt.spec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(titles(got), tt.want) {
				t.Errorf("Filter() = %v, want %v", titles(got), tt.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		for _, tt := range tc {
			once, _ := Filter(songs, tt.spec)
			twice, _ := Filter(once, tt.spec)
			if !slices.Equal(titles(once), titles(twice)) {
				t.Errorf("%s: filter not idempotent: %v vs %v", tt.name, titles(once), titles(twice))
			}
		}
	})

	t.Run("invalid window", func(t *testing.T) {
		for _, spec := range []FilterSpec{{Range: vr(10, 2)}, {Range: &music.VocalRange{Low: -1, High: -4}}} {
			if _, err := Filter(songs, spec); !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter for %v, got %v", *spec.Range, err)
			}
		}
	})

	t.Run("negative bounds", func(t *testing.T) {
		low := []models.Song{
			{Title: "Below", Range: &music.VocalRange{Low: -3, High: 4}},
			{Title: "Above", Range: vr(2, 9)},
		}
		got, err := Filter(low, FilterSpec{Range: &music.VocalRange{Low: -5, High: 5}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(titles(got), []string{"Below"}) {
			t.Errorf("Filter() = %v, want [Below]", titles(got))
		}

		got, _ = Filter(low, FilterSpec{Range: vr(0, 12)})
		if !slices.Equal(titles(got), []string{"Above"}) {
			t.Errorf("window starting at 0 should not contain a negative low bound, got %v", titles(got))
		}
	})

	t.Run("IsIdentity", func(t *testing.T) {
		if !DefaultFilter().IsIdentity() {
			t.Error("default filter should be identity")
		}
		if (FilterSpec{CapoRequired: true}).IsIdentity() {
			t.Error("capo filter is not identity")
		}
	})
}

func TestParseFilterSpec(t *testing.T) {
	spec, err := ParseFilterSpec(" cs ", "0-12", "all", "hu", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.Language != "cs" || spec.Range == nil || *spec.Range != *vr(0, 12) || !spec.CapoRequired || spec.Query != "hu" {
		t.Errorf("unexpected spec %+v", spec)
	}

	spec, err = ParseFilterSpec("", "", "", "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spec.IsIdentity() {
		t.Errorf("empty input should be identity, got %+v", spec)
	}

	for _, window := range []string{"12-3", "a-b", "-4"} {
		if _, err := ParseFilterSpec("", window, "", "", false); !errors.Is(err, ErrInvalidFilter) {
			t.Errorf("window %q: expected ErrInvalidFilter, got %v", window, err)
		}
	}
}

func TestSort(t *testing.T) {
	t.Run("title ascending", func(t *testing.T) {
		got, err := Sort(fixture(), SortSpec{Field: SortByTitle, Order: Ascending})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"Bílá orchidej", "Hallelujah", "Holubí dům", "Untitled", "Wonderwall"}
		if !slices.Equal(titles(got), want) {
			t.Errorf("got %v, want %v", titles(got), want)
		}
	})

	t.Run("artist descending", func(t *testing.T) {
		got, _ := Sort(fixture(), SortSpec{Field: SortByArtist, Order: Descending})
		want := []string{"Bílá orchidej", "Wonderwall", "Hallelujah", "Holubí dům", "Untitled"}
		if !slices.Equal(titles(got), want) {
			t.Errorf("got %v, want %v", titles(got), want)
		}
	})

	t.Run("date added is stable", func(t *testing.T) {
		got, _ := Sort(fixture(), SortSpec{Field: SortByDateAdded, Order: Ascending})
		want := []string{"Untitled", "Hallelujah", "Wonderwall", "Holubí dům", "Bílá orchidej"}
		if !slices.Equal(titles(got), want) {
			t.Errorf("got %v, want %v", titles(got), want)
		}

		got, _ = Sort(fixture(), SortSpec{Field: SortByDateAdded, Order: Descending})
		want = []string{"Bílá orchidej", "Wonderwall", "Holubí dům", "Hallelujah", "Untitled"}
		if !slices.Equal(titles(got), want) {
			t.Errorf("descending: got %v, want %v", titles(got), want)
		}
	})

	t.Run("absent range first ascending, last descending", func(t *testing.T) {
		asc, _ := Sort(fixture(), SortSpec{Field: SortByRange, Order: Ascending})
		if asc[0].Title != "Bílá orchidej" {
			t.Errorf("expected unranged song first, got %v", titles(asc))
		}
		want := []string{"Bílá orchidej", "Holubí dům", "Wonderwall", "Hallelujah", "Untitled"}
		if !slices.Equal(titles(asc), want) {
			t.Errorf("got %v, want %v", titles(asc), want)
		}

		desc, _ := Sort(fixture(), SortSpec{Field: SortByRange, Order: Descending})
		if desc[len(desc)-1].Title != "Bílá orchidej" {
			t.Errorf("expected unranged song last, got %v", titles(desc))
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		songs := fixture()
		before := titles(songs)
		if _, err := Sort(songs, SortSpec{Field: SortByTitle}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(titles(songs), before) {
			t.Error("input slice was reordered")
		}
	})

	t.Run("invalid spec", func(t *testing.T) {
		if _, err := Sort(fixture(), SortSpec{Field: SortField(9)}); !errors.Is(err, ErrInvalidSort) {
			t.Errorf("expected ErrInvalidSort, got %v", err)
		}
		if _, err := ParseSortField("tempo"); !errors.Is(err, ErrInvalidSort) {
			t.Errorf("expected ErrInvalidSort, got %v", err)
		}
		if _, err := ParseSortSpec("title", "sideways"); !errors.Is(err, ErrInvalidSort) {
			t.Errorf("expected ErrInvalidSort, got %v", err)
		}
	})

	t.Run("ParseSortSpec", func(t *testing.T) {
		spec, err := ParseSortSpec("date_added", "desc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spec.Field != SortByDateAdded || spec.Order != Descending {
			t.Errorf("unexpected spec %+v", spec)
		}
	})

	t.Run("JSON text encoding", func(t *testing.T) {
		in := SortSpec{Field: SortByRange, Order: Descending}
		data, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"field":"range","order":"descending"}` {
			t.Errorf("unexpected encoding %s", data)
		}

		var out SortSpec
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if out != in {
			t.Errorf("decoded %+v, want %+v", out, in)
		}

		if err := json.Unmarshal([]byte(`{"field":"tempo","order":"asc"}`), &out); !errors.Is(err, ErrInvalidSort) {
			t.Errorf("expected ErrInvalidSort for unknown field, got %v", err)
		}
	})
}

func TestEndToEnd(t *testing.T) {
	songs := []models.Song{
		{Title: "B", Key: music.C, Capo: 0, Range: vr(0, 5)},
		{Title: "A", Key: music.D, Capo: 2},
	}

	filtered, err := Filter(songs, FilterSpec{CapoRequired: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(titles(filtered), []string{"A"}) {
		t.Errorf("capo filter = %v, want [A]", titles(filtered))
	}

	sorted, err := Sort(songs, SortSpec{Field: SortByTitle, Order: Ascending})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(titles(sorted), []string{"A", "B"}) {
		t.Errorf("title sort = %v, want [A B]", titles(sorted))
	}
}

func TestCatalog(t *testing.T) {
	t.Run("caches aggregate and recomputes on replace", func(t *testing.T) {
		c := New(fixture())
		if c.Len() != 5 {
			t.Fatalf("expected 5 songs, got %d", c.Len())
		}
		if agg := c.Aggregate(); *agg.MaxRangeSemitones != 20 {
			t.Errorf("expected max range 20, got %d", *agg.MaxRangeSemitones)
		}

		c.Replace(nil)
		if agg := c.Aggregate(); agg.MaxRangeSemitones != nil || agg.Total != 0 {
			t.Errorf("expected empty aggregate after replace, got %+v", agg)
		}
	})

	t.Run("aggregate copies are independent", func(t *testing.T) {
		c := New(fixture())
		agg := c.Aggregate()
		agg.LanguageCounts["en"] = 100
		agg.Songbooks[0] = "mutated"
		if again := c.Aggregate(); again.LanguageCounts["en"] != 2 || again.Songbooks[0] != "campfire" {
			t.Errorf("cached aggregate was mutated through a returned copy: %+v", again)
		}
	})

	t.Run("Get", func(t *testing.T) {
		c := New(fixture())
		song, ok := c.Get("3")
		if !ok || song.Title != "Hallelujah" {
			t.Errorf("Get(3) = %v, %v", song.Title, ok)
		}
		if _, ok := c.Get("missing"); ok {
			t.Error("expected missing song")
		}
	})

	t.Run("Query", func(t *testing.T) {
		c := New(fixture())
		got, err := c.Query(FilterSpec{Language: "en"}, SortSpec{Field: SortByTitle})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(titles(got), []string{"Hallelujah", "Wonderwall"}) {
			t.Errorf("Query() = %v", titles(got))
		}
	})

	t.Run("concurrent readers", func(t *testing.T) {
		c := New(fixture())
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%4 == 0 {
					c.Replace(fixture())
					return
				}
				if _, err := c.Query(DefaultFilter(), DefaultSort()); err != nil {
					t.Errorf("query failed: %v", err)
				}
				_ = c.Aggregate()
			}(i)
		}
		wg.Wait()
	})
}
