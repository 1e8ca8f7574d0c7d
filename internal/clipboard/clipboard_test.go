package clipboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSC52_WritesSequence(t *testing.T) {
	var buf bytes.Buffer
	err := OSC52(&buf, "xterm-256color").Write("d41d8cd9")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\x1b]52;")
	assert.Contains(t, buf.String(), base64.StdEncoding.EncodeToString([]byte("d41d8cd9")))
}

func TestOSC52_TmuxPassthrough(t *testing.T) {
	var buf bytes.Buffer
	_ = OSC52(&buf, "tmux-256color").Write("x")

	assert.Contains(t, buf.String(), "\x1bPtmux;")
}

func TestCopy(t *testing.T) {
	boom := errors.New("no clipboard")
	var got string

	tests := []struct {
		name    string
		w       Writer
		wantErr error
	}{
		{"writes", WriterFunc(func(s string) error { got = s; return nil }), nil},
		{"returns write failure", WriterFunc(func(string) error { return boom }), boom},
		{"no writer", nil, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Copy(tt.w, "abc")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "abc", got)
		})
	}
}
