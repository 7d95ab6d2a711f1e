package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImages(t *testing.T) {
	md := "Here is your invoice:\n\n![Invoice #42](https://cdn.example.com/inv42.png \"invoice\")\n\nand a chart ![*sales* chart](/charts/q1.png)"
	imgs := Images(md)
	require.Len(t, imgs, 2)
	assert.Equal(t, Image{Alt: "Invoice #42", URL: "https://cdn.example.com/inv42.png", Title: "invoice"}, imgs[0])
	assert.Equal(t, "sales chart", imgs[1].Alt)
	assert.Equal(t, "/charts/q1.png", imgs[1].URL)
}

func TestImages_NoneOrPartial(t *testing.T) {
	assert.Empty(t, Images("plain text with a [link](https://example.com)"))
	assert.Empty(t, Images("streaming ![half an im"))
}

func TestRender_FallsBackOnBlank(t *testing.T) {
	assert.Equal(t, "", Render(""))
	assert.Equal(t, "   ", Render("   "))
}

func TestRender_ProducesText(t *testing.T) {
	Configure("notty", 80)
	t.Cleanup(func() { Configure("", defaultWrap) })
	out := Render("**bold** words")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "words")
}
