package fetch

import (
	"github.com/google/uuid"

	"github.com/jask/bahaterm/internal/mailbox"
)

// Client is the UI side of the dispatcher. Send never blocks and Poll never
// waits.
type Client struct {
	requests  *mailbox.Mailbox[Request]
	responses *mailbox.Mailbox[Response]
}

// Send queues req and returns its id. It fails with mailbox.ErrClosed once
// the dispatcher has shut down.
func (c *Client) Send(req Request) (uuid.UUID, error) {
	if err := c.requests.Put(req); err != nil {
		return uuid.Nil, err
	}
	return req.RequestID(), nil
}

// Poll returns the oldest undelivered response, if any.
func (c *Client) Poll() (Response, bool) {
	return c.responses.TryGet()
}

// Shutdown asks the dispatcher to stop after the requests already queued.
func (c *Client) Shutdown() error {
	_, err := c.Send(Stop())
	return err
}

// Close stops accepting responses. The dispatcher keeps running and drops
// whatever it produces afterwards.
func (c *Client) Close() {
	c.responses.Close()
}
