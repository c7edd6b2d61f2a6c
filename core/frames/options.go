package frames

const (
	// DefaultPrefix marks a line as carrying a frame payload.
	DefaultPrefix = "data: "
	// DefaultReadSize is the size of a single read from the underlying stream.
	DefaultReadSize = 4096
)

type options struct {
	prefix   string
	readSize int
}

func defaultOptions() options {
	return options{prefix: DefaultPrefix, readSize: DefaultReadSize}
}

type Option func(*options)

// WithPrefix overrides the line prefix that identifies frame payloads.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithReadSize sets how many bytes are requested per read. Values below 1 are
// ignored.
func WithReadSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.readSize = size
		}
	}
}
