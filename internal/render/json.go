package render

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/buger/jsonparser"
	"github.com/fatih/color"

	"github.com/tahoe/rnvtop/internal/telemetry"
)

const jsonIndent = "  "

type jsonPalette struct {
	key, str, num, boolean, null paint
}

func newJSONPalette(colorize bool) jsonPalette {
	return jsonPalette{
		key:     painter(colorize, color.FgBlue, color.Bold),
		str:     painter(colorize, color.FgGreen),
		num:     painter(colorize, color.FgCyan),
		boolean: painter(colorize, color.FgYellow),
		null:    painter(colorize, color.FgMagenta),
	}
}

func renderJSON(w io.Writer, s telemetry.Snapshot, opts Options) error {
	doc, err := json.MarshalIndent(s, "", jsonIndent)
	if err != nil {
		return err
	}

	if opts.Colorize {
		doc, err = highlightJSON(doc, newJSONPalette(true))
		if err != nil {
			return err
		}
	}

	_, err = w.Write(append(doc, '\n'))
	return err
}

// highlightJSON re-emits doc with the layout of json.MarshalIndent, wrapping
// keys and scalar values with p.
func highlightJSON(doc []byte, p jsonPalette) ([]byte, error) {
	value, typ, _, err := jsonparser.Get(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeJSONValue(&buf, value, typ, 0, p); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, value []byte, typ jsonparser.ValueType, depth int, p jsonPalette) error {
	switch typ {
	case jsonparser.Object:
		return writeJSONObject(buf, value, depth, p)
	case jsonparser.Array:
		return writeJSONArray(buf, value, depth, p)
	case jsonparser.String:
		buf.WriteString(p.str(`"` + string(value) + `"`))
	case jsonparser.Number:
		buf.WriteString(p.num(string(value)))
	case jsonparser.Boolean:
		buf.WriteString(p.boolean(string(value)))
	default:
		buf.WriteString(p.null("null"))
	}

	return nil
}

func writeJSONObject(buf *bytes.Buffer, value []byte, depth int, p jsonPalette) error {
	buf.WriteByte('{')
	empty := true

	err := jsonparser.ObjectEach(value, func(key, val []byte, typ jsonparser.ValueType, _ int) error {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false

		newline(buf, depth+1)
		buf.WriteString(p.key(`"` + string(key) + `"`))
		buf.WriteString(": ")

		return writeJSONValue(buf, val, typ, depth+1, p)
	})
	if err != nil {
		return err
	}

	if !empty {
		newline(buf, depth)
	}
	buf.WriteByte('}')

	return nil
}

func writeJSONArray(buf *bytes.Buffer, value []byte, depth int, p jsonPalette) error {
	buf.WriteByte('[')
	empty := true

	var walkErr error
	_, err := jsonparser.ArrayEach(value, func(val []byte, typ jsonparser.ValueType, _ int, _ error) {
		if walkErr != nil {
			return
		}
		if !empty {
			buf.WriteByte(',')
		}
		empty = false

		newline(buf, depth+1)
		walkErr = writeJSONValue(buf, val, typ, depth+1, p)
	})
	if err != nil {
		return err
	}
	if walkErr != nil {
		return walkErr
	}

	if !empty {
		newline(buf, depth)
	}
	buf.WriteByte(']')

	return nil
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString(jsonIndent)
	}
}
