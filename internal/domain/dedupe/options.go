package dedupe

const defaultMaxSize = 50_000

// Option applies a configuration option to the ring deduper.
type Option func(*ringDeduper)

// WithMaxSize bounds the number of request ids kept in memory. Values below
// one fall back to the default.
func WithMaxSize(n int) Option {
	return func(d *ringDeduper) {
		if n > 0 {
			d.size = n
		}
	}
}
