// This file is part of Mapsurface.
//
// Mapsurface is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mapsurface is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mapsurface.  If not, see <https://www.gnu.org/licenses/>.

// Package logger is the central log for the application. There is no
// requirement for the host embedding the bridge to ever look at the log but
// because GPU failures are deliberately absorbed rather than propagated, the
// log is often the only record of what went wrong.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry represents a single line/entry in the log
type Entry struct {
	Timestamp time.Time
	tag       string
	detail    string
	repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.tag, e.detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is the type used to log and to store log entries. Safe for
// concurrent use. Log entries can be made from the render thread and from
// whatever thread the host calls in on, so the critical section here is not
// optional.
type Logger struct {
	crit struct {
		section sync.Mutex

		entries []Entry
		echo    io.Writer
	}

	maxEntries int
}

// NewLogger is the preferred method of initialisation for the Logger type
func NewLogger(maxEntries int) *Logger {
	l := &Logger{
		maxEntries: maxEntries,
	}
	l.crit.entries = make([]Entry, 0, maxEntries)
	return l
}

// Log adds an entry to the logger
func (l *Logger) Log(tag, detail string) {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()

	// remove all newline characters from tag and detail string
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	e := &Entry{}
	if len(l.crit.entries) > 0 {
		e = &l.crit.entries[len(l.crit.entries)-1]
	}

	// repeated entries are compressed rather than appended. a failing copy
	// bridge would otherwise flood the log once per frame
	if detail != e.detail || tag != e.tag {
		l.crit.entries = append(l.crit.entries, Entry{Timestamp: time.Now(), tag: tag, detail: detail})
		e = &l.crit.entries[len(l.crit.entries)-1]
	} else {
		e.repeated++
		e.Timestamp = time.Now()
	}

	// maintain maximum length
	if len(l.crit.entries) > l.maxEntries {
		l.crit.entries = l.crit.entries[len(l.crit.entries)-l.maxEntries:]
	}

	if l.crit.echo != nil {
		io.WriteString(l.crit.echo, e.String())
	}
}

// Logf adds a formatted entry to the logger
func (l *Logger) Logf(tag, detail string, args ...interface{}) {
	l.Log(tag, fmt.Sprintf(detail, args...))
}

// Clear all entries from the logger
func (l *Logger) Clear() {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()
	l.crit.entries = l.crit.entries[:0]
}

// Write contents of the logger to io.Writer
func (l *Logger) Write(output io.Writer) {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()
	for i := range l.crit.entries {
		io.WriteString(output, l.crit.entries[i].String())
	}
}

// Tail writes the last N entries to io.Writer
func (l *Logger) Tail(output io.Writer, number int) {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()

	// cap number to the number of entries
	if number > len(l.crit.entries) {
		number = len(l.crit.entries)
	}
	if number < 0 {
		number = 0
	}

	for _, e := range l.crit.entries[len(l.crit.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho to print new log entries to io.Writer as they arrive. A nil writer
// stops the echoing
func (l *Logger) SetEcho(output io.Writer) {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()
	l.crit.echo = output
}

// BorrowLog gives the provided function the critical section and access to
// the list of log entries
func (l *Logger) BorrowLog(f func([]Entry)) {
	l.crit.section.Lock()
	defer l.crit.section.Unlock()
	f(l.crit.entries)
}
