package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/miwok/internal/catalog"
	"github.com/jmylchreest/miwok/internal/model"
)

func testEntries() []model.Entry {
	return []model.Entry{
		model.NewEntryWithImage("one", "lutti", "①", "number_one.mp3"),
		model.NewEntryWithImage("two", "otiiko", "②", "number_two.mp3"),
		model.NewEntry("Where are you going?", "minto wuksus", "phrase_where_are_you_going.mp3"),
	}
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	formatter := NewDmenuFormatter(DefaultFormatterOptions())
	err := formatter.Format(&buf, testEntries())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "1 | ① lutti | one", lines[0])
	assert.Equal(t, "2 | ② otiiko | two", lines[1])
	assert.Equal(t, "3 | minto wuksus | Where are you going?", lines[2])
}

func TestDmenuFormatter_NoIndex(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.ShowImage = false
	opts.Separator = "\t"

	err := NewDmenuFormatter(opts).Format(&buf, testEntries()[:1])
	require.NoError(t, err)

	assert.Equal(t, "lutti\tone\n", buf.String())
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{upper .Entry.Target}} ({{.Entry.Native}})"

	err := NewDmenuFormatter(opts).Format(&buf, testEntries()[:2])
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "1: LUTTI (one)", lines[0])
	assert.Equal(t, "2: OTIIKO (two)", lines[1])
}

func TestDmenuFormatter_InvalidTemplateFallsBack(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index"

	err := NewDmenuFormatter(opts).Format(&buf, testEntries()[:1])
	require.NoError(t, err)
	assert.Equal(t, "1 | ① lutti | one\n", buf.String())
}

func TestDmenuFormatter_TruncateLabel(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = false
	opts.LabelMaxLen = 10

	err := NewDmenuFormatter(opts).Format(&buf, testEntries()[2:])
	require.NoError(t, err)

	assert.Equal(t, "minto w... | Where a...\n", buf.String())
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	err := NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, testEntries())
	require.NoError(t, err)

	var decoded []model.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testEntries(), decoded)
	assert.NotContains(t, buf.String(), `"image": ""`, "absent image is omitted")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer

	err := NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONFormatter_FormatSingle(t *testing.T) {
	var buf bytes.Buffer

	err := NewJSONFormatter(DefaultFormatterOptions()).FormatSingle(&buf, testEntries()[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "lutti", decoded["target"])
	assert.Equal(t, "one", decoded["native"])
	assert.Equal(t, "number_one.mp3", decoded["audio"])
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	err := NewPlainFormatter(DefaultFormatterOptions()).Format(&buf, testEntries())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "[1] ① lutti         one", lines[0])
	assert.Equal(t, "[2] ② otiiko        two", lines[1])
	assert.Equal(t, "[3] minto wuksus  Where are you going?", lines[2])
}

func TestRefsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	err := NewRefsFormatter().Format(&buf, testEntries())
	require.NoError(t, err)
	assert.Equal(t, "number_one.mp3\nnumber_two.mp3\nphrase_where_are_you_going.mp3\n", buf.String())
}

func TestFormatField(t *testing.T) {
	e := testEntries()[0]

	tests := []struct {
		field    string
		expected string
	}{
		{"target", "lutti"},
		{"native", "one"},
		{"english", "one"},
		{"audio", "number_one.mp3"},
		{"ref", "number_one.mp3"},
		{"image", "①"},
		{"all", "lutti\none"},
		{"unknown", "lutti"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatField(e, tt.field))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	tests := []struct {
		format FormatType
		check  func(Formatter) bool
	}{
		{FormatDmenu, func(f Formatter) bool { _, ok := f.(*DmenuFormatter); return ok }},
		{FormatJSON, func(f Formatter) bool { _, ok := f.(*JSONFormatter); return ok }},
		{FormatPlain, func(f Formatter) bool { _, ok := f.(*PlainFormatter); return ok }},
		{FormatRefs, func(f Formatter) bool { _, ok := f.(*RefsFormatter); return ok }},
		{"unknown", func(f Formatter) bool { _, ok := f.(*PlainFormatter); return ok }},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.True(t, tt.check(NewFormatter(tt.format, opts)))
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		maxLen   int
		expected string
	}{
		{"simple", "hello world", 0, "hello world"},
		{"with newlines", "hello\nworld", 0, "hello world"},
		{"carriage return", "hello\r\nworld", 0, "hello world"},
		{"truncate", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"multiple spaces", "hello   world", 0, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeLabel(tt.label, tt.maxLen))
		})
	}
}

func TestFormatCatalogs(t *testing.T) {
	summaries := []Summary{
		Summarize(&catalog.Catalog{Name: "numbers", Title: "Numbers", Entries: testEntries()[:2]}),
		Summarize(&catalog.Catalog{Name: "phrases", Title: "Phrases", Entries: testEntries()[2:], Source: "/tmp/phrases.yaml"}),
	}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatCatalogs(&buf, FormatPlain, summaries))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, []string{"numbers", "Numbers", "2", "bundled"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"phrases", "Phrases", "1", "/tmp/phrases.yaml"}, strings.Fields(lines[1]))
	})

	t.Run("dmenu", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatCatalogs(&buf, FormatDmenu, summaries))
		assert.Equal(t, "numbers\nphrases\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatCatalogs(&buf, FormatJSON, summaries))

		var decoded []Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, summaries, decoded)
	})
}
