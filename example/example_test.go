package main

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/evtag"
	"github.com/broady/evtag/evtaggen"
)

func TestEventNames(t *testing.T) {
	tests := []struct {
		event MyEvents
		want  string
	}{
		{VariantA{Text: "x"}, "event_a"},
		{&VariantB{}, "abcVariantB"},
		{VariantC{Foo: 1}, "abcVariantC"},
		{&VariantA{Text: "x"}, "event_a"},
		{&VariantC{Foo: 1}, "abcVariantC"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := MyEventsEventName(tt.event); got != tt.want {
			t.Errorf("MyEventsEventName(%#v) = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestPublish(t *testing.T) {
	var r evtag.Recorder
	PublishMyEvents(&r, VariantC{Foo: 42})

	want := []evtag.Message{{EventName: "abcVariantC", Data: VariantC{Foo: 42}}}
	if diff := cmp.Diff(want, r.Messages()); diff != "" {
		t.Errorf("published (-want +got):\n%s", diff)
	}
}

func TestPublish_ExactlyOnce(t *testing.T) {
	calls := 0
	PublishMyEvents(evtag.SinkFunc(func(name string, payload any) {
		calls++
		if name != "event_a" {
			t.Errorf("name = %q", name)
		}
		if _, ok := payload.(VariantA); !ok {
			t.Errorf("payload = %T", payload)
		}
	}), VariantA{Text: "hi"})
	if calls != 1 {
		t.Errorf("sink called %d times, want 1", calls)
	}
}

func TestDowncast(t *testing.T) {
	tests := []struct {
		name   string
		holder evtag.Holder
		want   MyEvents
		wantOK bool
	}{
		{"matching name", evtag.NewMessage("abcVariantC", VariantC{Foo: 3}), VariantC{Foo: 3}, true},
		{"renamed variant", evtag.NewMessage("event_a", VariantA{Text: "a"}), VariantA{Text: "a"}, true},
		{"pointer to value variant", evtag.NewMessage("abcVariantC", &VariantC{Foo: 3}), &VariantC{Foo: 3}, true},
		{"other name", evtag.NewMessage("abcVariantB", VariantC{Foo: 3}), nil, false},
		{"bare variant name", evtag.NewMessage("VariantC", VariantC{Foo: 3}), nil, false},
		{"foreign payload", evtag.NewMessage("abcVariantC", "not an event"), nil, false},
		{"nil payload", evtag.NewMessage("abcVariantC", nil), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MyEventsFrom(tt.holder)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("event (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	bus := evtag.NewBus()
	var got []MyEvents
	bus.Subscribe(func(h evtag.Holder) {
		if ev, ok := MyEventsFrom(h); ok {
			got = append(got, ev)
		}
	})

	b := &VariantB{}
	PublishMyEvents(bus, VariantA{Text: "hello"})
	PublishMyEvents(bus, b)
	PublishMyEvents(bus, VariantC{Foo: 42})

	if len(got) != 3 || got[1] != MyEvents(b) {
		t.Fatalf("got %#v", got)
	}
}

func TestGeneratedFileUpToDate(t *testing.T) {
	res, err := evtaggen.FromDir(".").Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != evtaggen.DefaultOutput {
		t.Fatalf("unexpected files: %+v", res.Files)
	}

	committed, err := os.ReadFile(evtaggen.DefaultOutput)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(committed), string(res.Files[0].Content)); diff != "" {
		t.Errorf("%s is stale, run go generate (-committed +generated):\n%s", evtaggen.DefaultOutput, diff)
	}
}
