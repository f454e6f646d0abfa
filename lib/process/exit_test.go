// Copyright 2026 The Splinterfs Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type codedError struct{ code int }

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{"plain", errors.New("boom"), 1, "error: boom\n"},
		{"usage", Usage("usage: %s <a> <b>", "tool"), 2, "usage: tool <a> <b>\n"},
		{"wrapped usage", fmt.Errorf("parsing: %w", Usage("bad flag")), 2, "bad flag\n"},
		{"exit coder", fmt.Errorf("mount: %w", codedError{code: 3}), 3, "error: mount: coded\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buffer bytes.Buffer
			code := Report(&buffer, test.err)
			if code != test.wantCode {
				t.Errorf("Report code = %d, want %d", code, test.wantCode)
			}
			if buffer.String() != test.wantOutput {
				t.Errorf("Report wrote %q, want %q", buffer.String(), test.wantOutput)
			}
		})
	}
}
