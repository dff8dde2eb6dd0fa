package sse

import (
	"sync"
	"sync/atomic"
)

const clientBufferSize = 256

// Client is one change-feed subscriber connection.
type Client struct {
	ID   string
	Ch   chan Event
	Done chan struct{}

	fullStreak atomic.Int32
	closeOnce  sync.Once
}

func NewClient(id string) *Client {
	return &Client{
		ID:   id,
		Ch:   make(chan Event, clientBufferSize),
		Done: make(chan struct{}),
	}
}

func (c *Client) Close() {
	if c == nil {
		return
	}

	c.closeOnce.Do(func() {
		close(c.Done)
	})
}

func (c *Client) markDispatched() {
	if c != nil {
		c.fullStreak.Store(0)
	}
}

func (c *Client) markFull() int32 {
	if c == nil {
		return 0
	}
	return c.fullStreak.Add(1)
}
