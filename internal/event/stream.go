package event

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
)

// StreamHandler relays every bus notification to the client as Server-Sent
// Events until the client leaves or the bus is closed.
func StreamHandler(bus *Bus, heartbeat time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			pending := make(chan Notification, 32)
			unsubscribe := bus.SubscribeAll(func(n Notification) {
				select {
				case pending <- n:
				default:
				}
			})
			defer unsubscribe()

			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()

			for {
				select {
				case <-bus.Done():
					drain(w, pending)
					return
				case n := <-pending:
					if err := writeEvent(w, n); err != nil {
						return
					}
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				}
				// a failed flush means the client went away
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	}
}

// drain writes the notifications already queued for a closing stream.
func drain(w *bufio.Writer, pending <-chan Notification) {
	for {
		select {
		case n := <-pending:
			if err := writeEvent(w, n); err != nil {
				return
			}
		default:
			_ = w.Flush()
			return
		}
	}
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeEvent(w io.Writer, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Topic, payload)
	return err
}
