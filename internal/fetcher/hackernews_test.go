package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"newsbot/internal/model"
)

func newHNServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v0/topstories.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[1, 2, 3]`)
	})
	mux.HandleFunc("/v0/item/1.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":1,"title":"Kernel 6.9 released","url":"https://a.example/x","type":"story","time":1717200000}`)
	})
	mux.HandleFunc("/v0/item/2.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":2,"title":"Ask HN: favorite editor?","type":"story","time":1717200100}`)
	})
	mux.HandleFunc("/v0/item/3.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":3,"title":"a job posting","url":"https://jobs.example","type":"job","time":1717200200}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHackerNewsFetch(t *testing.T) {
	srv := newHNServer(t)
	src := model.Source{Name: "hackernews", URL: srv.URL, Type: model.TypeAggregator, Tag: "HN"}

	f := NewHackerNews(srv.Client())
	items, err := f.Fetch(context.Background(), src)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := []model.CandidateItem{
		{SourceName: "hackernews", Title: "Kernel 6.9 released", URL: "https://a.example/x"},
		{SourceName: "hackernews", Title: "Ask HN: favorite editor?", URL: "https://news.ycombinator.com/item?id=2"},
	}
	if diff := cmp.Diff(want, items, ignoreDiscoveredAt); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestHackerNewsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	f := NewHackerNews(srv.Client())
	src := model.Source{Name: "hackernews", URL: srv.URL, Type: model.TypeAggregator}
	if _, err := f.Fetch(context.Background(), src); err == nil {
		t.Fatal("expected error")
	}
}
