package plistparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapoio/confstack"
)

const doc = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>server</key>
	<dict>
		<key>host</key>
		<string>localhost</string>
		<key>port</key>
		<integer>8080</integer>
	</dict>
	<key>debug</key>
	<true/>
	<key>tags</key>
	<array>
		<string>a</string>
		<string>b</string>
	</array>
</dict>
</plist>`

func TestParser_FlattensNestedDicts(t *testing.T) {
	p := New("config.plist")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("server", "host"), confstack.TypeString)
	require.NoError(t, err)
	require.True(t, r.Found())
	s, _ := r.Value.Content.String()
	assert.Equal(t, "localhost", s)

	r, err = snap.Value(confstack.NewAbsoluteConfigKey("server", "port"), confstack.TypeInt)
	require.NoError(t, err)
	n, _ := r.Value.Content.Int()
	assert.Equal(t, int64(8080), n)
}

func TestParser_BooleanElements(t *testing.T) {
	p := New("config.plist")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("debug"), confstack.TypeBool)
	require.NoError(t, err)
	b, _ := r.Value.Content.Bool()
	assert.True(t, b)
}

func TestParser_ArrayElement(t *testing.T) {
	p := New("config.plist")
	snap, err := p.Parse([]byte(doc), confstack.DefaultParserOptions())
	require.NoError(t, err)

	r, err := snap.Value(confstack.NewAbsoluteConfigKey("tags"), confstack.TypeStringArray)
	require.NoError(t, err)
	arr, _ := r.Value.Content.StringArray()
	assert.Equal(t, []string{"a", "b"}, arr)
}

func TestParser_NonDictRootErrors(t *testing.T) {
	p := New("config.plist")
	_, err := p.Parse([]byte(`<plist version="1.0"><array/></plist>`), confstack.DefaultParserOptions())
	require.Error(t, err)
	var target *confstack.ErrTopLevelNotMapping
	assert.ErrorAs(t, err, &target)
}
