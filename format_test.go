package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 1536, "1.5 KB"},
		{"megabytes", 5242880, "5.0 MB"},
		{"gigabytes", 1610612736, "1.5 GB"},
		{"terabytes", 1099511627776, "1.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSize(tt.bytes))
		})
	}
}

func TestFormatTime(t *testing.T) {
	sameYear := time.Date(time.Now().Year(), time.March, 15, 10, 30, 0, 0, time.Local)
	assert.Equal(t, "Mar 15 10:30", formatTime(sameYear))

	diffYear := time.Date(2020, time.December, 25, 8, 0, 0, 0, time.Local)
	assert.Equal(t, "Dec 25  2020", formatTime(diffYear))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"NAME", "SIZE"}, [][]string{
		{"a-long-name", "1 B"},
		{"b", "10.0 KB"},
	})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"NAME         SIZE",
		"a-long-name  1 B",
		"b            10.0 KB",
	}, lines)
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := newProgressPrinter(&buf, 2048)
	p.nowFunc = func() time.Time { return now }

	p.update(512)
	p.update(1024) // throttled: same instant, not complete
	p.update(2048) // completion always prints
	p.done()

	assert.Equal(t, "\rUploading: 512 B / 2.0 KB\rUploading: 2.0 KB / 2.0 KB\n", buf.String())
}

func TestProgressPrinter_NilIsSafe(t *testing.T) {
	var p *progressPrinter
	p.done()
}
