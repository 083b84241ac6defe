package application

import "time"

// Clock abstraksi time.Now supaya timestamp lifecycle bisa ditest deterministik
type Clock interface {
	Now() time.Time
}

// SystemClock dipakai di wiring produksi; semua timestamp persisten dalam UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
