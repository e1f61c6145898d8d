package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareTextForLLM(t *testing.T) {
	t.Run("plain text passes through", func(t *testing.T) {
		assert.Equal(t, "простой текст", PrepareTextForLLM("простой текст"))
	})

	t.Run("empty text becomes placeholder", func(t *testing.T) {
		assert.Equal(t, "empty", PrepareTextForLLM(""))
	})

	t.Run("html is stripped to body text", func(t *testing.T) {
		html := `<html><head><style>p{color:red}</style></head>
<body><script>alert(1)</script><p>Не   работает  приложение</p></body></html>`

		got := PrepareTextForLLM(html)

		assert.NotContains(t, got, "<p>")
		assert.NotContains(t, got, "alert")
		assert.NotContains(t, got, "color:red")
		assert.Contains(t, got, "Не работает приложение")
	})

	t.Run("long text is truncated", func(t *testing.T) {
		long := strings.Repeat("a", 5000)
		got := PrepareTextForLLM(long)
		assert.LessOrEqual(t, len(got), maxContentSizeForLLM+3)
	})
}

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("не работает приложение", "screen.png")

	assert.Contains(t, got, "Ticket text:")
	assert.Contains(t, got, "не работает приложение")
	assert.Contains(t, got, "Attachments: screen.png")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 10))
	assert.Equal(t, "abcde...", TruncateString("abcdefgh", 5))
}

func TestEncodeImageAttachmentsMissingDir(t *testing.T) {
	assert.Nil(t, EncodeImageAttachments("", "a.png"))
	assert.Empty(t, EncodeImageAttachments(t.TempDir(), "missing.png"))
}
