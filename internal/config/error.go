package config

// InitError marks a config that exists but cannot drive the application
// yet, so the CLI can print setup guidance instead of a bare failure.
type InitError struct {
	msg string
}

func (e *InitError) Error() string {
	return e.msg
}
