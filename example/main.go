// Command example publishes a few MyEvents on an in-process bus and reads
// them back with the generated downcast.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/broady/evtag"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	bus := evtag.NewBus()
	bus.Subscribe(func(h evtag.Holder) {
		ev, ok := MyEventsFrom(h)
		if !ok {
			fmt.Printf("%s: not a MyEvents\n", h.Name())
			return
		}
		fmt.Printf("%s: %s\n", h.Name(), describe(ev))
	})

	sink := evtag.LoggingSink(logger, bus)
	PublishMyEvents(sink, VariantA{Text: "hello"})
	PublishMyEvents(sink, &VariantB{})
	PublishMyEvents(sink, VariantC{Foo: 42})

	// Same payload type, wrong name: the downcast refuses it.
	bus.Publish("abcVariantB", VariantC{Foo: 7})
}

func describe(ev MyEvents) string {
	switch ev := ev.(type) {
	case VariantA:
		return fmt.Sprintf("VariantA{Text: %q}", ev.Text)
	case *VariantB:
		return "VariantB{}"
	case VariantC:
		return fmt.Sprintf("VariantC{Foo: %d}", ev.Foo)
	}
	return "unknown"
}
