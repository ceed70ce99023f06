package logger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest palette (soft, low contrast)
var palette = struct {
	dim    string
	fg     string
	aqua   string
	purple string
	yellow string
	red    string
	redBg  string
	warnBg string
}{
	dim:    "\x1b[38;5;245m",
	fg:     "\x1b[38;5;223m",
	aqua:   "\x1b[38;5;109m",
	purple: "\x1b[38;5;175m",
	yellow: "\x1b[38;5;214m",
	red:    "\x1b[38;5;167m",
	redBg:  "\x1b[48;5;52m",
	warnBg: "\x1b[48;5;58m",
}

var bufferPool = buffer.NewPool()

// minimalEncoder writes one calm line per entry:
//
//	13:04:35  WARN  manifest  Skipping invalid manifest  file=broken.json error=...
//
// Fields attached with Logger.With come first, sorted by key, followed by
// the entry's own fields in call order. No field is ever dropped.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newMinimalEncoder(color bool) *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := newMinimalEncoder(enc.color)
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(enc.paint(palette.dim, ent.Time.Format("15:04:05")))

	if label := enc.levelLabel(ent.Level); label != "" {
		line.AppendString("  ")
		line.AppendString(label)
	}

	if ent.LoggerName != "" {
		line.AppendString("  ")
		line.AppendString(enc.paint(palette.aqua, abbreviateName(ent.LoggerName)))
	}

	line.AppendString("  ")
	line.AppendString(enc.paint(palette.fg, ent.Message))

	enc.appendMap(line, enc.Fields)
	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		enc.appendMap(line, m.Fields)
	}

	line.AppendString("\n")
	return line, nil
}

func (enc *minimalEncoder) appendMap(line *buffer.Buffer, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		// zap adds errorVerbose for errors that format with %+v; it carries stacks
		if strings.HasSuffix(k, "Verbose") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		line.AppendString("  ")
		line.AppendString(enc.paint(palette.dim, k+"="))
		line.AppendString(enc.paint(valueColor(k, fields[k]), formatValue(fields[k])))
	}
}

// levelLabel is empty for INFO; other levels get a bold badge.
func (enc *minimalEncoder) levelLabel(level zapcore.Level) string {
	switch level {
	case zapcore.InfoLevel:
		return ""
	case zapcore.DebugLevel:
		return enc.paint(palette.dim, "DEBUG")
	case zapcore.WarnLevel:
		return enc.paint(colorBold+palette.warnBg+palette.yellow, "WARN")
	default:
		return enc.paint(colorBold+palette.redBg+palette.red, level.CapitalString())
	}
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color {
		return s
	}
	return color + s + colorReset
}

func valueColor(key string, v interface{}) string {
	if key == FieldError {
		return palette.red
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, time.Duration:
		return palette.purple
	}
	return palette.fg
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

// abbreviateName shortens nested component names: launcher.watch -> l.watch
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}
