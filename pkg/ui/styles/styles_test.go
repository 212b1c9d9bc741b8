package styles_test

import (
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/ui/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedStylesLoaded(t *testing.T) {
	for _, name := range []string{"Header", "Success", "Error", "Sample", "Dataset", "Attrs", "Note"} {
		_, ok := styles.StyleRegistry[name]
		assert.True(t, ok, "style %s missing", name)
	}
	assert.True(t, styles.GetStyle("Sample").GetBold())
	assert.True(t, styles.GetStyle("Attrs").GetItalic())
}

func TestGetStyle_Unknown(t *testing.T) {
	s := styles.GetStyle("DoesNotExist")
	assert.False(t, s.GetBold())
}

func TestLoadStylesFromData(t *testing.T) {
	saved := styles.StyleRegistry
	t.Cleanup(func() { styles.StyleRegistry = saved })

	require.NoError(t, styles.LoadStylesFromData([]byte(`
colors:
  red: {light: "#AA0000", dark: "#FF0000"}
styles:
  Alarm: {bold: true, underline: true, foreground: red}
`)))
	assert.Len(t, styles.StyleRegistry, 1)
	assert.True(t, styles.GetStyle("Alarm").GetUnderline())

	assert.Error(t, styles.LoadStylesFromData([]byte("styles: [unclosed")))
}
