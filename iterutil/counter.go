package iterutil

// Counter hands out successive ints above its starting value.
type Counter struct {
	n int
}

func Count(from int) Counter {
	return Counter{n: from}
}

func (c *Counter) Next() int {
	c.n++
	return c.n
}
