package search_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/JaimeStill/flipbook/internal/pdftest"
	"github.com/JaimeStill/flipbook/internal/search"
)

func TestIndex_Find(t *testing.T) {
	doc := pdftest.Document(
		"Quarterly revenue grew in every region",
		"Costs were flat",
		"Revenue forecast: REVENUE up again",
	)

	ix, err := search.NewIndex(doc)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	if ix.Pages() != 3 {
		t.Fatalf("Pages() = %d, want 3", ix.Pages())
	}

	hits, err := ix.Find([]string{"Revenue", "costs", "missing"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	want := []search.Hit{
		{Term: "revenue", Page: 1, Count: 1},
		{Term: "costs", Page: 2, Count: 1},
		{Term: "revenue", Page: 3, Count: 2},
	}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("Find() = %+v, want %+v", hits, want)
	}
}

func TestIndex_Find_NoTerms(t *testing.T) {
	ix, err := search.NewIndex(pdftest.Document("text"))
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}

	hits, err := ix.Find([]string{" ", ""})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("Find() = %v, want empty", hits)
	}
}

func TestNewIndex_Unreadable(t *testing.T) {
	if _, err := search.NewIndex([]byte("plain text")); !errors.Is(err, search.ErrUnreadable) {
		t.Errorf("NewIndex() error = %v, want ErrUnreadable", err)
	}
}

func TestNormalize(t *testing.T) {
	got := search.Normalize([]string{" Flip  Book ", "flip book", "", "PDF"})
	want := []string{"flip book", "pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
}
