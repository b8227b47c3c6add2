package netutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return false }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"timeout", timeoutErr{}, true},
		{"wrapped timeout", fmt.Errorf("telebot: %w", timeoutErr{}), true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"url dial", &url.Error{Op: "Post", URL: "https://api", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}, true},
		{"api 5xx", &tele.Error{Code: 502, Description: "Bad Gateway"}, true},
		{"api 4xx", &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"}, false},
		{"flood", tele.FloodError{RetryAfter: 3}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}

type wrapped struct{ err error }

func (w wrapped) Error() string { return "send failed" }
func (w wrapped) Unwrap() error { return w.err }

func TestRetryAfter(t *testing.T) {
	d, ok := RetryAfter(wrapped{tele.FloodError{RetryAfter: 7}})
	assert.True(t, ok)
	assert.Equal(t, 7*time.Second, d)

	_, ok = RetryAfter(errors.New("nope"))
	assert.False(t, ok)
}
