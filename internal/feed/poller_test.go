package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSourcePoll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[
			{"id":"tw1","text":"John Smith has been traded","author":"shams","timestamp":1700000000},
			{"id":"tw2","text":"talks have stalled","author":"woj","timestamp":1700000100}
		]}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	events, err := src.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("событий %d, want 2", len(events))
	}
	if events[0].ID != "tw1" || events[0].Author != "shams" {
		t.Fatalf("events[0] = %+v", events[0])
	}
	if events[1].At.Unix() != 1700000100 {
		t.Fatalf("timestamp не распарсился: %+v", events[1])
	}
}

func TestHTTPSourcePollBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPSource(srv.URL).Poll(context.Background()); err == nil {
		t.Fatalf("ошибка статуса проглочена")
	}
}

func TestDrainNilSource(t *testing.T) {
	p := NewPoller(nil, nil)
	events, err := p.Drain(context.Background())
	if err != nil || events != nil {
		t.Fatalf("Drain без источника: (%+v, %v)", events, err)
	}
}
