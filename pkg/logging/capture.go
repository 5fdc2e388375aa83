package logging

import "sync"

// CapturedEntry is one message recorded by a CaptureLogger.
type CapturedEntry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// CaptureLogger keeps entries in memory. Tests use it to assert on what the
// generator reported.
type CaptureLogger struct {
	level   Level
	fields  []Field
	entries *[]CapturedEntry
	mu      *sync.Mutex
}

// NewCaptureLogger creates a CaptureLogger recording at DebugLevel and above.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{
		level:   DebugLevel,
		entries: &[]CapturedEntry{},
		mu:      &sync.Mutex{},
	}
}

func (c *CaptureLogger) record(level Level, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < c.level {
		return
	}
	m := make(map[string]any, len(c.fields)+len(fields))
	for _, f := range c.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	*c.entries = append(*c.entries, CapturedEntry{Level: level, Message: msg, Fields: m})
}

func (c *CaptureLogger) Debug(msg string, fields ...Field) { c.record(DebugLevel, msg, fields) }
func (c *CaptureLogger) Info(msg string, fields ...Field)  { c.record(InfoLevel, msg, fields) }
func (c *CaptureLogger) Warn(msg string, fields ...Field)  { c.record(WarnLevel, msg, fields) }
func (c *CaptureLogger) Error(msg string, fields ...Field) { c.record(ErrorLevel, msg, fields) }

// With returns a child that records into the same entry list.
func (c *CaptureLogger) With(fields ...Field) Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &CaptureLogger{
		level:   c.level,
		fields:  append(append([]Field{}, c.fields...), fields...),
		entries: c.entries,
		mu:      c.mu,
	}
}

func (c *CaptureLogger) SetLevel(level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = level
}

func (c *CaptureLogger) GetLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Entries returns a copy of everything recorded so far.
func (c *CaptureLogger) Entries() []CapturedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CapturedEntry(nil), (*c.entries)...)
}

// Messages returns the recorded messages at the given level.
func (c *CaptureLogger) Messages(level Level) []string {
	var out []string
	for _, e := range c.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
