package main

// Collector funnels items produced by many goroutines to a single consumer
// goroutine, so the consuming function needs no locking of its own.
type Collector[Item any] struct {
	items chan<- Item
	done  <-chan struct{}
	count int
}

// NewCollector starts a goroutine applying fn to each item queued with Add,
// until Close is called. Up to capacity items may be queued before Add
// blocks.
func NewCollector[Item any](capacity int, fn func(Item)) *Collector[Item] {
	items := make(chan Item, capacity)
	done := make(chan struct{})
	c := &Collector[Item]{items: items, done: done}

	go func() {
		defer close(done)
		for item := range items {
			fn(item)
			c.count++
		}
	}()

	return c
}

// Add queues an item for the consumer. It must not be called after Close.
func (c *Collector[Item]) Add(item Item) {
	c.items <- item
}

// Close signals that the last item has been queued.
func (c *Collector[Item]) Close() {
	close(c.items)
}

// Wait blocks until every queued item has been consumed. It returns the
// number of items seen.
func (c *Collector[Item]) Wait() int {
	<-c.done
	return c.count
}

// CloseWait calls Close and then Wait.
func (c *Collector[Item]) CloseWait() int {
	c.Close()
	return c.Wait()
}
