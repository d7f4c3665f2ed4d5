/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{in: "web-1", want: Target{Host: "web-1"}},
		{in: "admin@web-1", want: Target{Host: "web-1", User: "admin"}},
		{in: "admin@web-1:2222", want: Target{Host: "web-1", User: "admin", Port: 2222}},
		{in: "web-1:22", want: Target{Host: "web-1", Port: 22}},
		{in: "", wantErr: true},
		{in: "admin@", wantErr: true},
		{in: "web-1:notaport", wantErr: true},
		{in: "web-1:99999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTarget(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTargetIsLocal(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"", true},
		{"localhost", true},
		{"127.0.0.1", true},
		{"web-1.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := (Target{Host: tt.host}).IsLocal(); got != tt.want {
				t.Errorf("IsLocal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetAddr(t *testing.T) {
	if got := (Target{Host: "web-1"}).Addr(); got != "web-1:22" {
		t.Errorf("Addr() = %q, want web-1:22", got)
	}
	if got := (Target{Host: "web-1", Port: 2200}).Addr(); got != "web-1:2200" {
		t.Errorf("Addr() = %q, want web-1:2200", got)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"/etc/ssh/sshd_config", "/etc/ssh/sshd_config"},
		{"", "''"},
		{"with space", "'with space'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := shellQuote(tt.in); got != tt.want {
				t.Errorf("shellQuote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
