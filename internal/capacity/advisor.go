// Package capacity classifies payload sizes against what a QR code can
// practically hold and still scan reliably.
package capacity

import (
	"fmt"
	"unicode/utf16"
)

// Level is the advisory state for a payload length.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarn     Level = "warn"
	LevelCritical Level = "critical"
)

// Thresholds in UTF-16 code units. Lengths above WarnAbove degrade scanning,
// lengths above CriticalAbove approach the symbol's hard capacity.
const (
	WarnAbove     = 1500
	CriticalAbove = 2000
)

// Classify maps a payload length to its level. It never blocks anything;
// callers decide what to do with a warning.
func Classify(length int) Level {
	switch {
	case length > CriticalAbove:
		return LevelCritical
	case length > WarnAbove:
		return LevelWarn
	default:
		return LevelOK
	}
}

// Report is the advisory attached to generated payloads.
type Report struct {
	Length  int    `json:"length"`
	Level   Level  `json:"level"`
	Message string `json:"message,omitempty"`
}

// Assess builds the report for payload. Length counts UTF-16 code units,
// the unit browser builders report, so characters outside the BMP count
// twice and the thresholds line up with codes made elsewhere.
func Assess(payload string) Report {
	n := Length(payload)
	level := Classify(n)
	return Report{Length: n, Level: level, Message: message(level, n)}
}

// Length is the UTF-16 length of s.
func Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func message(level Level, n int) string {
	switch level {
	case LevelCritical:
		return fmt.Sprintf("Payload is %d characters; the code may be too dense to scan. Shorten the content or host it elsewhere.", n)
	case LevelWarn:
		return fmt.Sprintf("Payload is %d characters; dense codes scan poorly on some phones.", n)
	}
	return ""
}
