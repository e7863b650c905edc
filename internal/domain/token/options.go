package token

// Option applies a configuration option to the Issuer.
type Option func(*Issuer)

// WithSalt sets the server-side secret mixed into the hash input on a
// collision retry.
func WithSalt(salt string) Option {
	return func(i *Issuer) {
		i.salt = salt
	}
}

// WithMaxRetries caps salted regeneration attempts before Issue fails
// with ErrRetryExhausted.
func WithMaxRetries(n int) Option {
	return func(i *Issuer) {
		if n > 0 {
			i.maxRetries = n
		}
	}
}
